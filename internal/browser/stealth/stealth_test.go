package stealth

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvasionsScriptEmbedded(t *testing.T) {
	require.NotEmpty(t, evasionsScript)
	// The script masks the canonical automation markers.
	assert.Contains(t, evasionsScript, "navigator, 'webdriver'")
	assert.Contains(t, evasionsScript, "navigator, 'languages'")
	assert.Contains(t, evasionsScript, "navigator, 'plugins'")
	assert.Contains(t, evasionsScript, "window.chrome")
	assert.Contains(t, evasionsScript, "navigator, 'permissions'")
}

func TestApply_TaskCount(t *testing.T) {
	tasks := Apply(DefaultPersona, zap.NewNop())
	// UA override, script injection, timezone, locale, headers.
	assert.Len(t, tasks, 5)
}

func TestAllocatorOptions(t *testing.T) {
	opts := AllocatorOptions(true, 1024, 768, []string{"--disable-gpu"})
	// Defaults plus the fixed anti-automation flags and the extra arg.
	assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions))
}

func TestAcceptLanguage(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		expected  string
	}{
		{"empty falls back", nil, "en-US"},
		{"single language", []string{"en-US"}, "en-US"},
		{"weighted secondary", []string{"en-US", "en"}, "en-US,en;q=0.9"},
		{"three languages", []string{"de-DE", "de", "en"}, "de-DE,de;q=0.9,en;q=0.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, acceptLanguage(tt.languages))
		})
	}
}
