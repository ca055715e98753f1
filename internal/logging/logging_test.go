package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupTo(&buf, "warn", "production")

	logger.Info().Msg("hidden")
	logger.Warn().Str("vet", "7").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "vet-scheduler", entry["service"])
}

func TestSetupUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupTo(&buf, "loud", "production")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
