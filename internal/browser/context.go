// internal/browser/context.go
package browser

import "context"

// combineContext derives a context from parentCtx that is additionally
// canceled when secondaryCtx is canceled. Browser calls must respect both
// the connection lifetime (parent) and the per-call deadline (secondary);
// the parent is used as the base so chromedp's context values survive.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
