// Package stealth masks automation fingerprints on a freshly created browser
// connection. The configuration is fixed policy applied once at connection
// creation, not re-derived per call.
package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate.
type Persona struct {
	UserAgent string
	Platform  string
	Languages []string
	Timezone  string
	Locale    string
}

// DefaultPersona provides a realistic default browser profile.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"en-US", "en"},
	Timezone:  "America/Los_Angeles",
	Locale:    "en-US",
}

// AllocatorOptions returns the Chrome launch flags that suppress the obvious
// automation markers, on top of chromedp's defaults.
func AllocatorOptions(headless bool, width, height int, extra []string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(width, height),
	)
	for _, arg := range extra {
		opts = append(opts, chromedp.Flag(strings.TrimLeft(arg, "-"), true))
	}
	return opts
}

// Apply constructs a sequence of Chrome DevTools Protocol actions to make the
// headless browser appear more like a standard, user-operated browser.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	logger.Debug("Applying browser stealth persona",
		zap.String("userAgent", p.UserAgent),
		zap.String("platform", p.Platform),
	)

	return chromedp.Tasks{
		// 1. Set the User-Agent override.
		emulation.SetUserAgentOverride(p.UserAgent),

		// 2. Inject the evasions script so it runs before any page script on
		// every new document. Wrapped in an ActionFunc because its Do()
		// returns two values.
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}),

		// 3. Timezone and locale overrides.
		emulation.SetTimezoneOverride(p.Timezone),
		emulation.SetLocaleOverride().WithLocale(p.Locale),

		// 4. Consistent HTTP headers to match the persona's language settings.
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": acceptLanguage(p.Languages),
		}),
	}
}

// acceptLanguage renders an Accept-Language header value with descending
// quality weights.
func acceptLanguage(languages []string) string {
	if len(languages) == 0 {
		return "en-US"
	}
	parts := make([]string, 0, len(languages))
	for i, lang := range languages {
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s;q=0.%d", lang, 10-i))
	}
	return strings.Join(parts, ",")
}
