package browser

import (
	"context"
	"time"
)

// Element is a snapshot of an element matched by Page.QuerySelector.
type Element struct {
	InnerText string
}

// Page is a single browser tab. it is not safe for concurrent use, the
// caller owns it from NewPage until Close.
type Page interface {
	Goto(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	// Evaluate runs a script in the page, discarding its result.
	Evaluate(ctx context.Context, script string) error
	// Click dispatches a click on selector. when the click loads a new
	// document, a following WaitForNetworkIdle waits for that document.
	Click(ctx context.Context, selector string) error
	// WaitForNetworkIdle blocks until the page stops making requests.
	// a timeout <= 0 uses the page's default.
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	// QuerySelector returns nil (and no error) when nothing matches.
	QuerySelector(ctx context.Context, selector string) (*Element, error)
	Content(ctx context.Context) (string, error)
	Close() error
}

// Launcher opens a fresh Page backed by resources that are released
// once the page is closed.
type Launcher interface {
	NewPage(ctx context.Context) (Page, error)
}
