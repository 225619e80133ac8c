package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultIdleTimeout = 30 * time.Second

type ChromeOptions struct {
	// when false the browser window is shown, useful for debugging selectors
	Headless  bool   `json:"headless"`
	ExecPath  string `json:"exec_path"`
	UserAgent string `json:"user_agent"`
	NoSandbox bool   `json:"no_sandbox"`
}

type ChromeLauncher struct {
	opts ChromeOptions
}

func NewChromeLauncher(opts ChromeOptions) ChromeLauncher {
	return ChromeLauncher{opts: opts}
}

func (l ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !l.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if l.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	return opts
}

// NewPage starts a dedicated browser process with a single tab, closing
// the page shuts the process down.
func (l ChromeLauncher) NewPage(ctx context.Context) (Page, error) {
	ctx, span := tracer.Start(ctx, "ChromeLauncher:NewPage")
	defer span.End()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), l.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	p := &chromePage{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		idle:        make(chan struct{}),
	}
	chromedp.ListenTarget(tabCtx, p.onEvent)

	// the first Run allocates the browser and the tab
	var mainFrame cdp.FrameID
	err := chromedp.Run(
		tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			mainFrame = tree.Frame.ID
			return nil
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start browser")
		p.Close()
		return nil, err
	}

	p.mu.Lock()
	p.mainFrame = mainFrame
	p.mu.Unlock()
	return p, nil
}

type chromePage struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	mu         sync.Mutex
	mainFrame  cdp.FrameID
	idle       chan struct{}
	idleClosed bool

	// set by expectNavigation, networkIdle is ignored until the next
	// document of the main frame starts loading
	awaitingInit bool
	closeOnce    sync.Once
}

// expectNavigation must be called before an action that loads a new
// document, so a following WaitForNetworkIdle waits for that document
// instead of returning on the idle state of the current one.
func (p *chromePage) expectNavigation() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.idleClosed {
		p.idle = make(chan struct{})
		p.idleClosed = false
	}
	p.awaitingInit = true
}

func (p *chromePage) onEvent(ev any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		if e.Frame != nil && e.Frame.ParentID == "" {
			p.mainFrame = e.Frame.ID
		}
	case *page.EventLifecycleEvent:
		// iframes report their own lifecycle
		if e.FrameID != p.mainFrame {
			return
		}
		switch e.Name {
		case "init":
			p.awaitingInit = false
			if p.idleClosed {
				p.idle = make(chan struct{})
				p.idleClosed = false
			}
		case "networkIdle":
			if !p.awaitingInit && !p.idleClosed {
				close(p.idle)
				p.idleClosed = true
			}
		}
	}
}

// run executes actions on the tab, aborting them (but not the tab) when
// ctx is done.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Goto(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Page:Goto")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	p.expectNavigation()
	err := p.run(ctx, chromedp.Navigate(url))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) Fill(ctx context.Context, selector, value string) error {
	err := p.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) Evaluate(ctx context.Context, script string) error {
	// wrapped so scripts that evaluate to undefined still produce a value
	var ok bool
	err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf("(() => { %s; return true; })()", script), &ok))
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", script, err)
	}
	return nil
}

// Click may submit a form, the page is treated as navigating until the
// main frame loads a new document.
func (p *chromePage) Click(ctx context.Context, selector string) error {
	p.expectNavigation()
	err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultIdleTimeout
	}

	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout %s exceeded while waiting for network idle", timeout)
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

type querySelectorResult struct {
	Found bool   `json:"found"`
	Text  string `json:"text"`
}

func (p *chromePage) QuerySelector(ctx context.Context, selector string) (*Element, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%s); return el ? { found: true, text: el.innerText } : { found: false, text: "" }; })()`,
		quoted,
	)

	var res querySelectorResult
	err = p.run(ctx, chromedp.Evaluate(script, &res))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if !res.Found {
		return nil, nil
	}
	return &Element{InnerText: res.Text}, nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var content string
	err := p.run(ctx, chromedp.OuterHTML("html", &content, chromedp.ByQuery))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return content, nil
}

func (p *chromePage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = chromedp.Cancel(p.ctx)
		p.cancelTab()
		p.cancelAlloc()
		if err != nil {
			slog.Debug("browser did not close cleanly", "err", err)
		}
	})
	return err
}
