// internal/browser/actions.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// errNoIDFragment marks a locator the id-lookup strategy cannot serve. It
// never leaves the executor; the next strategy absorbs it.
var errNoIDFragment = errors.New("locator carries no id fragment")

// executor runs the layered interaction strategies against a Driver. It is
// bound to one connection; the session rebuilds it when the connection is
// re-created.
type executor struct {
	driver        Driver
	sync          *Synchronizer
	logger        *zap.Logger
	actionTimeout time.Duration
}

func newExecutor(driver Driver, sync *Synchronizer, actionTimeout time.Duration, logger *zap.Logger) *executor {
	return &executor{
		driver:        driver,
		sync:          sync,
		logger:        logger.Named("actions"),
		actionTimeout: actionTimeout,
	}
}

// clickStrategy is one rung of the click fallback ladder.
type clickStrategy struct {
	name string
	run  func(ctx context.Context, locator string) error
}

// ClickByIndex resolves the index against the snapshot and runs the click
// strategies in order until one succeeds. A successful click synchronizes
// with the page before returning, because clicks routinely trigger
// navigations or DOM mutations. When all strategies fail the returned
// *ActionFailedError carries the locator and the last underlying cause.
func (e *executor) ClickByIndex(ctx context.Context, state *State, index int) error {
	locator, err := state.Locator(index)
	if err != nil {
		return err
	}

	log := e.logger.With(zap.Int("index", index), zap.String("locator", locator))

	strategies := []clickStrategy{
		{name: "wait-clickable", run: e.clickWhenClickable},
		{name: "lookup-by-id", run: e.clickByIDFragment},
		{name: "force-click", run: e.forceClick},
	}

	var lastErr error
	var lastStage string
	for _, strat := range strategies {
		err := strat.run(ctx, locator)
		if err == nil {
			log.Debug("Click succeeded.", zap.String("strategy", strat.name))
			e.sync.WaitForPageLoad(ctx)
			return nil
		}
		if errors.Is(err, errNoIDFragment) {
			log.Debug("Click strategy not applicable.", zap.String("strategy", strat.name))
			continue
		}
		log.Debug("Click strategy failed.", zap.String("strategy", strat.name), zap.Error(err))
		lastErr = err
		lastStage = strat.name
	}

	return &ActionFailedError{Index: index, Locator: locator, Stage: lastStage, Err: lastErr}
}

// clickWhenClickable is the polite path: wait for the element to become
// visible and enabled, then click it.
func (e *executor) clickWhenClickable(ctx context.Context, locator string) error {
	if err := e.driver.WaitClickable(ctx, locator, e.actionTimeout); err != nil {
		return fmt.Errorf("element never became clickable: %w", err)
	}
	return e.driver.Click(ctx, locator)
}

// clickByIDFragment retries the lookup through the element's id when the
// XPath carries one. Recovers from pages that rewrite their structure
// between indexing and the click, as long as ids are stable.
func (e *executor) clickByIDFragment(ctx context.Context, locator string) error {
	id := extractIDFragment(locator)
	if id == "" {
		return errNoIDFragment
	}

	state, err := e.driver.ElementStateByID(ctx, id)
	if err != nil {
		return fmt.Errorf("id lookup %q: %w", id, err)
	}
	if !state.Found {
		return fmt.Errorf("no element with id %q", id)
	}
	if !state.Visible || !state.Enabled {
		return fmt.Errorf("element with id %q is not interactable (visible=%t enabled=%t)", id, state.Visible, state.Enabled)
	}
	return e.driver.ClickByID(ctx, id)
}

// forceClick is the last resort: scroll the element into view and click it
// without any visibility or enablement checks.
func (e *executor) forceClick(ctx context.Context, locator string) error {
	return e.driver.ForceClick(ctx, locator)
}

// InputTextByIndex resolves the index and runs the single input path: wait
// clickable, scroll into view, clear the current value, send keys. There is
// no fallback ladder for input; any step failing fails the call. Errors
// never carry the text, only its length.
func (e *executor) InputTextByIndex(ctx context.Context, state *State, index int, text string) error {
	locator, err := state.Locator(index)
	if err != nil {
		return err
	}

	fail := func(stage string, cause error) error {
		return &ActionFailedError{Index: index, Locator: locator, Stage: stage, Input: true, TextLen: len(text), Err: cause}
	}

	if err := e.driver.WaitClickable(ctx, locator, e.actionTimeout); err != nil {
		return fail("wait-clickable", err)
	}
	if err := e.driver.ScrollIntoView(ctx, locator); err != nil {
		return fail("scroll-into-view", err)
	}
	if err := e.driver.ClearValue(ctx, locator); err != nil {
		return fail("clear-value", err)
	}
	if err := e.driver.SendKeys(ctx, locator, text); err != nil {
		return fail("send-keys", err)
	}

	e.logger.Debug("Input succeeded.", zap.Int("index", index), zap.String("locator", locator), zap.Int("text_len", len(text)))
	e.sync.WaitForPageLoad(ctx)
	return nil
}

// extractIDFragment pulls an element id out of an XPath expression. It
// understands the @id predicates the indexer emits and falls back to a
// looser scan for any "id=" substring, trimming quotes and a trailing
// predicate bracket. The loose path is a known-brittle heuristic kept for
// locators from other producers; a locator without an id yields "".
func extractIDFragment(locator string) string {
	for _, quote := range []string{`'`, `"`} {
		marker := "@id=" + quote
		if i := strings.Index(locator, marker); i >= 0 {
			rest := locator[i+len(marker):]
			if j := strings.Index(rest, quote); j >= 0 {
				return rest[:j]
			}
		}
	}

	i := strings.LastIndex(locator, "id=")
	if i < 0 {
		return ""
	}
	fragment := locator[i+len("id="):]
	if j := strings.IndexByte(fragment, ']'); j >= 0 {
		fragment = fragment[:j]
	}
	return strings.Trim(fragment, `'"`)
}
