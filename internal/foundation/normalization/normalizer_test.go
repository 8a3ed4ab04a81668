package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level string

var levels = New("log level", map[string]level{
	"debug":   "debug",
	"info":    "info",
	"warn":    "warn",
	"warning": "warn",
}, "info")

func TestNormalize(t *testing.T) {
	assert.Equal(t, level("debug"), levels.Normalize(" DEBUG "))
	assert.Equal(t, level("warn"), levels.Normalize("Warning"))
	assert.Equal(t, level("info"), levels.Normalize("verbose"))

	_, ok := levels.Lookup("verbose")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	v, err := levels.Parse("Info")
	require.NoError(t, err)
	assert.Equal(t, level("info"), v)

	_, err = levels.Parse("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
	assert.Contains(t, err.Error(), "debug, info, warn, warning")
}

func TestFix(t *testing.T) {
	tests := []struct {
		raw     string
		want    level
		warning string
	}{
		{"", "", ""},
		{"info", "info", ""},
		{"INFO", "info", "normalized logging.level from 'INFO' to 'info'"},
		{"warning", "warn", "normalized logging.level from 'warning' to 'warn'"},
		{"loud", "info", "unknown logging.level 'loud', defaulting to info"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, warning := levels.Fix("logging.level", tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warning, warning)
		})
	}
}

func TestKeysIsACopy(t *testing.T) {
	keys := levels.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "debug", levels.Keys()[0])
}
