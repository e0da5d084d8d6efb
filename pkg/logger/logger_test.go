package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestLogger_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, zerolog.WarnLevel)

	log.Info().Msg("dropped")
	log.Component("requests").Actor(7, "MANAGER").Warn().Uint("request_id", 3).Msg("Decision denied")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "hr-portal", e["service"])
	assert.Equal(t, "requests", e["component"])
	assert.Equal(t, float64(7), e["actor_id"])
	assert.Equal(t, "MANAGER", e["actor_role"])
	assert.Equal(t, "Decision denied", e["message"])
	assert.Equal(t, zerolog.WarnLevel, log.Component("x").Level(), "children keep the level")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.log")
	log, err := New("debug", "json", path)
	require.NoError(t, err)

	log.Debug().Msg("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written"`)
	assert.Equal(t, zerolog.DebugLevel, log.Level())
}

func TestNew_BadOutput(t *testing.T) {
	_, err := New("info", "json", filepath.Join(t.TempDir(), "missing", "dir", "hr.log"))
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.Equal(t, zerolog.Disabled, log.Level())
	log.Error().Msg("nothing happens")
}

func TestNewGormLogger_FollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, gormlogger.Info, NewGormLogger(newLogger(&buf, zerolog.DebugLevel)).level)
	assert.Equal(t, gormlogger.Warn, NewGormLogger(newLogger(&buf, zerolog.InfoLevel)).level)
}
