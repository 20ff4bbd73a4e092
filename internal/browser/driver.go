// internal/browser/driver.go
package browser

import (
	"context"
	"time"
)

// ElementState is what the page reports about a single element at lookup
// time. Found false means the lookup matched nothing; Visible and Enabled
// are only meaningful when Found is true.
type ElementState struct {
	Found   bool `json:"found"`
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

// Driver is the low-level browser connection. It exposes exactly the
// primitives the session, synchronizer and action executor compose; the
// production implementation speaks CDP, tests substitute an in-memory fake.
//
// All locators are XPath expressions unless the method name says otherwise.
// Every call honors context cancellation.
type Driver interface {
	// Navigation.
	Navigate(ctx context.Context, url string) error
	NavigateBack(ctx context.Context) error
	Reload(ctx context.Context) error

	// Page observation.
	Location(ctx context.Context) (url, title string, err error)
	ReadyState(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	// Element interaction.
	WaitClickable(ctx context.Context, locator string, timeout time.Duration) error
	Click(ctx context.Context, locator string) error
	ElementStateByID(ctx context.Context, id string) (ElementState, error)
	ClickByID(ctx context.Context, id string) error
	ForceClick(ctx context.Context, locator string) error
	ScrollIntoView(ctx context.Context, locator string) error
	ClearValue(ctx context.Context, locator string) error
	SendKeys(ctx context.Context, locator, text string) error

	// Close tears down the underlying browser. The driver is unusable
	// afterwards.
	Close(ctx context.Context) error
}
