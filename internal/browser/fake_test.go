// internal/browser/fake_test.go
package browser

import (
	"context"
	"sync"
	"time"
)

// fakeDriver is an in-memory Driver for exercising the session, synchronizer
// and executor without a browser. Every method records itself so tests can
// assert exactly which primitives an operation touched.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string

	// ReadyState returns readyStates in order, repeating the final entry.
	// Empty means always "complete".
	readyStates []string
	readyIdx    int
	readyErr    error

	pageHTML string
	url      string
	title    string
	shot     []byte

	navErr           error
	backErr          error
	reloadErr        error
	htmlErr          error
	waitClickableErr error
	clickErr         error
	stateByID        map[string]ElementState
	stateByIDErr     error
	clickByIDErr     error
	forceClickErr    error
	scrollErr        error
	clearErr         error
	sendKeysErr      error
	sentText         string
	closeErr         error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		pageHTML: "<html><head></head><body></body></html>",
		url:      "https://example.com/",
		title:    "Example",
		shot:     []byte("png-bytes"),
	}
}

func (d *fakeDriver) record(name string) {
	d.mu.Lock()
	d.calls = append(d.calls, name)
	d.mu.Unlock()
}

// interactions returns the recorded calls minus the ReadyState polling
// noise the synchronizer generates.
func (d *fakeDriver) interactions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, c := range d.calls {
		if c != "ReadyState" {
			out = append(out, c)
		}
	}
	return out
}

func (d *fakeDriver) countCalls(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.record("Navigate")
	return d.navErr
}

func (d *fakeDriver) NavigateBack(ctx context.Context) error {
	d.record("NavigateBack")
	return d.backErr
}

func (d *fakeDriver) Reload(ctx context.Context) error {
	d.record("Reload")
	return d.reloadErr
}

func (d *fakeDriver) Location(ctx context.Context) (string, string, error) {
	d.record("Location")
	return d.url, d.title, nil
}

func (d *fakeDriver) ReadyState(ctx context.Context) (string, error) {
	d.record("ReadyState")
	if d.readyErr != nil {
		return "", d.readyErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.readyStates) == 0 {
		return "complete", nil
	}
	state := d.readyStates[d.readyIdx]
	if d.readyIdx < len(d.readyStates)-1 {
		d.readyIdx++
	}
	return state, nil
}

func (d *fakeDriver) HTML(ctx context.Context) (string, error) {
	d.record("HTML")
	if d.htmlErr != nil {
		return "", d.htmlErr
	}
	return d.pageHTML, nil
}

func (d *fakeDriver) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	d.record("Screenshot")
	return d.shot, nil
}

func (d *fakeDriver) WaitClickable(ctx context.Context, locator string, timeout time.Duration) error {
	d.record("WaitClickable")
	return d.waitClickableErr
}

func (d *fakeDriver) Click(ctx context.Context, locator string) error {
	d.record("Click")
	return d.clickErr
}

func (d *fakeDriver) ElementStateByID(ctx context.Context, id string) (ElementState, error) {
	d.record("ElementStateByID")
	if d.stateByIDErr != nil {
		return ElementState{}, d.stateByIDErr
	}
	return d.stateByID[id], nil
}

func (d *fakeDriver) ClickByID(ctx context.Context, id string) error {
	d.record("ClickByID")
	return d.clickByIDErr
}

func (d *fakeDriver) ForceClick(ctx context.Context, locator string) error {
	d.record("ForceClick")
	return d.forceClickErr
}

func (d *fakeDriver) ScrollIntoView(ctx context.Context, locator string) error {
	d.record("ScrollIntoView")
	return d.scrollErr
}

func (d *fakeDriver) ClearValue(ctx context.Context, locator string) error {
	d.record("ClearValue")
	return d.clearErr
}

func (d *fakeDriver) SendKeys(ctx context.Context, locator, text string) error {
	d.record("SendKeys")
	if d.sendKeysErr != nil {
		return d.sendKeysErr
	}
	d.mu.Lock()
	d.sentText = text
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.record("Close")
	return d.closeErr
}
