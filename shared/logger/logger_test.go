package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"hotel/shared/constant"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{name: "debug", want: zerolog.DebugLevel},
		{name: "warn", want: zerolog.WarnLevel},
		{name: "", want: zerolog.InfoLevel},
		{name: "verbose", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, level(tt.name))
		})
	}
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer

	lg := zerolog.New(output(constant.ServerEnvProduction, &buf))
	lg.Info().Str("booking_id", "b-1").Msg("booking created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "b-1", line["booking_id"])
	assert.Equal(t, "booking created", line["message"])

	_, console := output(constant.ServerEnvDevelopment, &buf).(zerolog.ConsoleWriter)
	assert.True(t, console)
}
