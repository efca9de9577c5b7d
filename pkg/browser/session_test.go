package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchOrder(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		want      []string
	}{
		{
			name:      "preferred engine goes first",
			preferred: "firefox",
			want:      []string{"firefox", "msedge", "chrome", "chromium", "webkit"},
		},
		{
			name:      "default order for the default engine",
			preferred: "msedge",
			want:      []string{"msedge", "chrome", "chromium", "firefox", "webkit"},
		},
		{
			name:      "unknown engine falls back to the full order",
			preferred: "opera",
			want:      []string{"msedge", "chrome", "chromium", "firefox", "webkit"},
		},
		{
			name:      "empty preference",
			preferred: "",
			want:      []string{"msedge", "chrome", "chromium", "firefox", "webkit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, launchOrder(tt.preferred))
		})
	}
}

func TestEngineSpecs(t *testing.T) {
	for _, key := range fallbackOrder {
		spec, ok := engines[key]
		require.True(t, ok, "every fallback entry needs a spec: %s", key)
		assert.NotEmpty(t, spec.name)
		assert.NotEmpty(t, spec.kind)
	}

	assert.Equal(t, "msedge", engines["msedge"].channel)
	assert.Equal(t, "chrome", engines["chrome"].channel)
	assert.Empty(t, engines["chromium"].channel, "bundled chromium has no release channel")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "msedge", cfg.Engine)
	assert.False(t, cfg.Headless, "the operator must be able to complete the login gate")
	assert.Equal(t, 1920, cfg.ViewportWidth)
	assert.Equal(t, 1080, cfg.ViewportHeight)
}
