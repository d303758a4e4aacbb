package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		level         string
		expectedLevel slog.Level
	}{
		{"local environment", config.EnvLocal, "", slog.LevelDebug},
		{"dev environment", config.EnvDev, "", slog.LevelDebug},
		{"prod environment", config.EnvProd, "", slog.LevelInfo},
		{"prod with debug override", config.EnvProd, "debug", slog.LevelDebug},
		{"dev with warn override", config.EnvDev, "warn", slog.LevelWarn},
		{"unknown environment", "staging", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.env, tt.level)
			require.NotNil(t, log)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.expectedLevel <= slog.LevelInfo, log.Enabled(ctx, slog.LevelInfo))
			assert.True(t, log.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With(slog.String("component", "router"))

	log.Warn("reuse detected", slog.String("url", "https://phish.example"), Err(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "reuse detected")
	assert.Contains(t, out, `"component": "router"`)
	assert.Contains(t, out, `"url": "https://phish.example"`)
	assert.Contains(t, out, `"error": "boom"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
