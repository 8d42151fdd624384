// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf strings.Builder
	logger := NewLogger(&buf, INFO)

	logger.Trace("quiet %d", 1)
	logger.Debug("quiet %d", 2)
	logger.Info("loud %d", 3)
	logger.Error("loud %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "[I] loud 3")
	assert.Contains(t, out, "[E] loud 4")

	assert.False(t, logger.LevelEnabled(DEBUG))
	logger.SetLevel(TRACE)
	assert.True(t, logger.LevelEnabled(DEBUG))
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, TRACE, LevelFromString("trace"))
	assert.Equal(t, WARN, LevelFromString("Warning"))
	assert.Equal(t, INFO, LevelFromString("unknown"))
}

func TestLevelJSONRoundTrip(t *testing.T) {
	data, err := WARN.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"warn"`, string(data))

	var level Level
	assert.NoError(t, level.UnmarshalJSON([]byte(`"error"`)))
	assert.Equal(t, ERROR, level)
}
