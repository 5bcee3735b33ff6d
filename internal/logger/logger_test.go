package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IncludesServiceAndStack(t *testing.T) {
	var buf bytes.Buffer
	l := New("hierovision-test", &buf)
	l.Error().Stack().Err(errors.New("boom")).Msg("failure")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "hierovision-test", m["service"])
	assert.Equal(t, "boom", m["error"])
	assert.NotNil(t, m["stack"])
}

func TestConsole_FiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := Console(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
}
