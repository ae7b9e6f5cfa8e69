package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestComponentLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	l := Component("export")
	l.Warn().Str("file", "users_export.txt").Msg("export failed")
	Debug().Msg("dropped below level")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "export", entry["component"])
	assert.Equal(t, "users_export.txt", entry["file"])
}
