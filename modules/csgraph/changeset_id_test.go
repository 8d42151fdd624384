// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"testing"

	"code.gitea.io/csgraph/modules/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFromString(t *testing.T) {
	hexID := "4ec4d0dd795fa9b99cad79b7c4936bc2ef1d8951e3e11cd34ab843eb3c40a1a1"
	id, err := NewIDFromString(hexID)
	require.NoError(t, err)
	assert.Equal(t, hexID, id.String())
	assert.False(t, id.IsZero())
	assert.True(t, EmptyID.IsZero())

	for _, bad := range []string{"", "4ec4", hexID + "ff", "zz" + hexID[2:]} {
		_, err := NewIDFromString(bad)
		assert.ErrorIs(t, err, util.ErrInvalidArgument, bad)
	}
}

func TestNewIDPrefix(t *testing.T) {
	p, err := NewIDPrefix("4EC4d0")
	require.NoError(t, err)
	assert.EqualValues(t, "4ec4d0", p)
	assert.True(t, p.Matches(MustIDFromString("4ec4d0dd795fa9b99cad79b7c4936bc2ef1d8951e3e11cd34ab843eb3c40a1a1")))
	assert.False(t, p.Matches(EmptyID))

	for _, bad := range []string{"", "4ec", "xyzw", "4ec4d0dd795fa9b99cad79b7c4936bc2ef1d8951e3e11cd34ab843eb3c40a1a1ff"} {
		_, err := NewIDPrefix(bad)
		assert.Error(t, err, bad)
	}
}

func TestIDPrefixByteRange(t *testing.T) {
	p, _ := NewIDPrefix("4ec4")
	start, end, err := p.ByteRange()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4e, 0xc4}, start)
	assert.Equal(t, []byte{0x4e, 0xc5}, end)

	// odd-length prefixes cover half of the final byte
	p, _ = NewIDPrefix("4ec4d")
	start, end, err = p.ByteRange()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4e, 0xc4, 0xd0}, start)
	assert.Equal(t, []byte{0x4e, 0xc4, 0xe0}, end)

	p, _ = NewIDPrefix("4ec4dd5")
	start, end, err = p.ByteRange()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4e, 0xc4, 0xdd, 0x50}, start)
	assert.Equal(t, []byte{0x4e, 0xc4, 0xdd, 0x60}, end)

	// a prefix of all ff bytes scans to the end of the keyspace
	p, _ = NewIDPrefix("ffff")
	start, end, err = p.ByteRange()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff}, start)
	assert.Nil(t, end)

	// prefixes not built through NewIDPrefix are rejected
	_, _, err = IDPrefix("4ezz").ByteRange()
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}
