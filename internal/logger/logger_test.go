package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"idkit/internal/logger"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	} {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("loud")
	require.Error(t, err)
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "warn", logger.JSON)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("request_id", "abc").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "abc", line["request_id"])
	require.Contains(t, line, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "debug", logger.Console)
	require.NoError(t, err)

	log.Debug().Str("k", "v").Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "k=v")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logger.New(&bytes.Buffer{}, "loud", logger.JSON)
	require.Error(t, err)
}
