// Package browsertest provides a scripted in-memory browser.Page for tests.
package browsertest

import (
	"attendance-backend/lib/browser"
	"context"
	"fmt"
	"sync"
	"time"
)

// Page serves canned documents and elements. failures are injected through
// Errors, keyed by "<operation> <argument>", ex. "goto https://x/Default.aspx",
// "click #submit", "idle" or "content".
type Page struct {
	// Documents maps a url to the html returned by Content after navigating to it.
	Documents map[string]string
	// Elements are the selectors QuerySelector finds, regardless of the current url.
	Elements map[string]browser.Element
	Errors   map[string]error

	mu     sync.Mutex
	url    string
	log    []string
	filled map[string]string
	closed int
}

func (p *Page) record(op, arg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := op
	if arg != "" {
		key = op + " " + arg
	}
	p.log = append(p.log, key)
	if p.closed > 0 {
		return fmt.Errorf("%s: page is closed", key)
	}
	return p.Errors[key]
}

func (p *Page) Goto(ctx context.Context, url string) error {
	err := p.record("goto", url)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	err := p.record("fill", selector)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.filled == nil {
		p.filled = map[string]string{}
	}
	p.filled[selector] = value
	return nil
}

func (p *Page) Evaluate(ctx context.Context, script string) error {
	return p.record("evaluate", script)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.record("click", selector)
}

func (p *Page) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	return p.record("idle", "")
}

func (p *Page) QuerySelector(ctx context.Context, selector string) (*browser.Element, error) {
	err := p.record("query", selector)
	if err != nil {
		return nil, err
	}
	el, ok := p.Elements[selector]
	if !ok {
		return nil, nil
	}
	return &el, nil
}

func (p *Page) Content(ctx context.Context) (string, error) {
	err := p.record("content", "")
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Documents[p.url], nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// Log returns every operation performed on the page, in order.
func (p *Page) Log() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.log...)
}

// Filled returns the value last filled into selector.
func (p *Page) Filled(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filled[selector]
}

// Closed reports how many times Close was called.
func (p *Page) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Launcher hands out pages built by NewPageFunc and remembers them.
type Launcher struct {
	NewPageFunc func() *Page
	// returned by NewPage instead of a page when set
	Err error

	mu    sync.Mutex
	pages []*Page
}

func (l *Launcher) NewPage(ctx context.Context) (browser.Page, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	p := l.NewPageFunc()

	l.mu.Lock()
	l.pages = append(l.pages, p)
	l.mu.Unlock()
	return p, nil
}

func (l *Launcher) Pages() []*Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Page(nil), l.pages...)
}
