// internal/browser/cdp.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sbenkov/aviator/internal/browser/stealth"
	"github.com/sbenkov/aviator/internal/config"
)

// cdpDriver implements Driver over a dedicated Chrome instance driven
// through CDP. One driver owns one browser process; Close ends it.
type cdpDriver struct {
	logger      *zap.Logger
	ctx         context.Context // master chromedp context, lives until Close
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	poll        time.Duration
}

var _ Driver = (*cdpDriver)(nil)

// newCDPDriver launches a browser with the stealth allocator flags, applies
// the fingerprint evasions and returns a connected driver. ctx bounds the
// launch and becomes the ancestor of the browser's lifetime.
func newCDPDriver(ctx context.Context, cfg config.BrowserConfig, pollInterval time.Duration, persona stealth.Persona, logger *zap.Logger) (Driver, error) {
	opts := stealth.AllocatorOptions(cfg.Headless, cfg.WindowWidth, cfg.WindowHeight, cfg.Args)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	d := &cdpDriver{
		logger:      logger.Named("cdp"),
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		poll:        pollInterval,
	}

	// The first Run starts the browser process; applying the persona here
	// guarantees the evasions land before any page script executes.
	if err := chromedp.Run(browserCtx, stealth.Apply(persona, logger)); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	return d, nil
}

// run executes chromedp actions under both the browser lifetime and the
// caller's deadline.
func (d *cdpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := combineContext(d.ctx, ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// evaluate runs script in the page and decodes its JSON result into out.
func (d *cdpDriver) evaluate(ctx context.Context, script string, out interface{}) error {
	var raw []byte
	err := d.run(ctx, chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
	}))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := jsoniter.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding evaluate result %q: %w", raw, err)
	}
	return nil
}

func (d *cdpDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *cdpDriver) NavigateBack(ctx context.Context) error {
	return d.run(ctx, chromedp.NavigateBack())
}

func (d *cdpDriver) Reload(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

func (d *cdpDriver) Location(ctx context.Context) (string, string, error) {
	var url, title string
	err := d.run(ctx, chromedp.Location(&url), chromedp.Title(&title))
	return url, title, err
}

func (d *cdpDriver) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := d.evaluate(ctx, `document.readyState`, &state); err != nil {
		return "", err
	}
	return state, nil
}

func (d *cdpDriver) HTML(ctx context.Context) (string, error) {
	var html string
	err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (d *cdpDriver) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 90)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := d.run(ctx, action); err != nil {
		return nil, err
	}
	return buf, nil
}

// WaitClickable polls the element's state until it is present, visible and
// enabled, or the timeout lapses.
func (d *cdpDriver) WaitClickable(ctx context.Context, locator string, timeout time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	var last ElementState
	for {
		state, err := d.probe(opCtx, locator)
		if err == nil {
			last = state
			if state.Found && state.Visible && state.Enabled {
				return nil
			}
		}

		select {
		case <-opCtx.Done():
			return fmt.Errorf("element %q not clickable after %v (found=%t visible=%t enabled=%t): %w",
				locator, timeout, last.Found, last.Visible, last.Enabled, opCtx.Err())
		case <-ticker.C:
		}
	}
}

func (d *cdpDriver) probe(ctx context.Context, locator string) (ElementState, error) {
	var state ElementState
	err := d.evaluate(ctx, fmt.Sprintf(xpathProbeScript, jsonEncode(locator)), &state)
	return state, err
}

func (d *cdpDriver) Click(ctx context.Context, locator string) error {
	return d.clickScript(ctx, fmt.Sprintf(xpathClickScript, jsonEncode(locator)), locator)
}

func (d *cdpDriver) ElementStateByID(ctx context.Context, id string) (ElementState, error) {
	var state ElementState
	err := d.evaluate(ctx, fmt.Sprintf(idProbeScript, jsonEncode(id)), &state)
	return state, err
}

func (d *cdpDriver) ClickByID(ctx context.Context, id string) error {
	return d.clickScript(ctx, fmt.Sprintf(idClickScript, jsonEncode(id)), "id="+id)
}

func (d *cdpDriver) ForceClick(ctx context.Context, locator string) error {
	return d.clickScript(ctx, fmt.Sprintf(forceClickScript, jsonEncode(locator)), locator)
}

// clickScript runs a script that returns true when it located and clicked
// its target.
func (d *cdpDriver) clickScript(ctx context.Context, script, target string) error {
	var clicked bool
	if err := d.evaluate(ctx, script, &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("element %q not present in page", target)
	}
	return nil
}

func (d *cdpDriver) ScrollIntoView(ctx context.Context, locator string) error {
	var ok bool
	if err := d.evaluate(ctx, fmt.Sprintf(scrollScript, jsonEncode(locator)), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element %q not present in page", locator)
	}
	return nil
}

// ClearValue resets the element's value through the DOM property, the same
// way a framework-controlled input expects, before fresh keys are sent.
func (d *cdpDriver) ClearValue(ctx context.Context, locator string) error {
	var ok bool
	if err := d.evaluate(ctx, fmt.Sprintf(clearValueScript, jsonEncode(locator)), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element %q not present in page", locator)
	}
	return nil
}

func (d *cdpDriver) SendKeys(ctx context.Context, locator, text string) error {
	return d.run(ctx, chromedp.SendKeys(locator, text, chromedp.BySearch))
}

// Close shuts the browser down gracefully and releases the allocator. The
// driver must not be used afterwards.
func (d *cdpDriver) Close(ctx context.Context) error {
	err := chromedp.Cancel(d.ctx)
	d.allocCancel()
	if err != nil {
		d.logger.Warn("Browser shutdown reported an error.", zap.Error(err))
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// jsonEncode safely embeds a Go value into a JS source string.
func jsonEncode(v interface{}) string {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}

// The interaction scripts resolve their target inside the page so a single
// round trip both locates and acts. Each script reports whether the target
// existed; state checks happen Go-side from the probe scripts.
const (
	xpathProbeScript = `
(function(expr) {
    const node = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    if (!node) return { found: false, visible: false, enabled: false };
    const rect = node.getBoundingClientRect();
    const style = window.getComputedStyle(node);
    const visible = rect.width > 0 && rect.height > 0 && style.display !== 'none' && style.visibility !== 'hidden';
    return { found: true, visible: visible, enabled: !node.disabled };
})(%s);`

	idProbeScript = `
(function(id) {
    const node = document.getElementById(id);
    if (!node) return { found: false, visible: false, enabled: false };
    const rect = node.getBoundingClientRect();
    const style = window.getComputedStyle(node);
    const visible = rect.width > 0 && rect.height > 0 && style.display !== 'none' && style.visibility !== 'hidden';
    return { found: true, visible: visible, enabled: !node.disabled };
})(%s);`

	xpathClickScript = `
(function(expr) {
    const node = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    if (!node) return false;
    node.click();
    return true;
})(%s);`

	idClickScript = `
(function(id) {
    const node = document.getElementById(id);
    if (!node) return false;
    node.click();
    return true;
})(%s);`

	forceClickScript = `
(function(expr) {
    const node = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    if (!node) return false;
    node.scrollIntoView({ block: 'center', inline: 'center' });
    node.click();
    return true;
})(%s);`

	scrollScript = `
(function(expr) {
    const node = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    if (!node) return false;
    node.scrollIntoView({ block: 'center', inline: 'center' });
    return true;
})(%s);`

	clearValueScript = `
(function(expr) {
    const node = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    if (!node) return false;
    node.value = '';
    node.dispatchEvent(new Event('input', { bubbles: true }));
    return true;
})(%s);`
)
