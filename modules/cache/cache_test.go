// Copyright 2021 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTwoQueueCache(t *testing.T) {
	c, err := NewCache(Options{Adapter: "twoqueue", Conn: "100"})
	require.NoError(t, err)

	require.NoError(t, c.Put("key", []byte{1, 2, 3}, 0))
	assert.True(t, c.IsExist("key"))
	assert.Equal(t, []byte{1, 2, 3}, c.Get("key"))
	assert.Nil(t, c.Get("missing"))

	require.NoError(t, c.Delete("key"))
	assert.False(t, c.IsExist("key"))
}

func TestNewTwoQueueCacheJSONConfig(t *testing.T) {
	c, err := NewCache(Options{Adapter: "twoqueue", Conn: `{"size":10,"recent_ratio":0.25,"ghost_ratio":0.5}`})
	require.NoError(t, err)

	require.NoError(t, c.Put("key", "value", 0))
	assert.Equal(t, "value", c.Get("key"))
}

func TestGetWithFallback(t *testing.T) {
	c, err := NewCache(Options{Adapter: "twoqueue", Conn: "10"})
	require.NoError(t, err)

	calls := 0
	getFunc := func() (string, error) {
		calls++
		return "computed", nil
	}

	v, err := Get(c, "key", getFunc)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)

	v, err = Get(c, "key", getFunc)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)
}
