// Package rod finds and reads webmail tabs in a Chrome browser driven over
// the DevTools protocol.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/mailscan"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/errgroup"
)

var _ mailscan.PageFinder = (*Browser)(nil)

// probeConcurrency caps concurrent tab probes.
const probeConcurrency = 8

// probeJS scores how likely a tab is to be the one the user is looking at:
// zero when hidden, one when visible, three when visible and focused.
const probeJS = `() => document.visibilityState === 'visible'
	? 1 + (document.hasFocus() ? 2 : 0)
	: 0`

// scoreOpened breaks ties in favour of the tab opened with Open.
const scoreOpened = 1

// Browser is a connection to a Chrome browser, either attached to one the
// user already runs or launched on demand.
//
// Browser is safe for concurrent use.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	controlURL string
	headless   bool

	locators  []mailscan.Locator
	registry  mailscan.LocatorRegistry
	fallbacks []mailscan.Strategy

	mu     sync.Mutex
	opened proto.TargetTargetID
	closed atomic.Bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithControlURL attaches to a running browser instead of launching one.
// Both DevTools websocket URLs and http://host:port addresses are accepted.
func WithControlURL(u string) Option {
	return func(b *Browser) {
		b.controlURL = u
	}
}

// WithHeadless sets whether a launched browser runs headless. Defaults to true.
func WithHeadless(headless bool) Option {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithLocators sets the locators used on every tab. Defaults to
// mailscan.DefaultLocators.
func WithLocators(locators []mailscan.Locator) Option {
	return func(b *Browser) {
		b.locators = locators
	}
}

// WithRegistry picks locators per tab from the webmail client its address
// belongs to. It takes precedence over WithLocators.
func WithRegistry(registry mailscan.LocatorRegistry) Option {
	return func(b *Browser) {
		b.registry = registry
	}
}

// WithFallbacks appends extraction strategies tried after the locators.
func WithFallbacks(fallbacks ...mailscan.Strategy) Option {
	return func(b *Browser) {
		b.fallbacks = fallbacks
	}
}

// NewBrowser connects to a browser. Close must be called when the Browser is
// no longer needed.
func NewBrowser(opts ...Option) (*Browser, error) {
	b := &Browser{
		headless: true,
		locators: mailscan.DefaultLocators,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.controlURL != "" {
		if err := b.attach(); err != nil {
			return nil, err
		}
		return b, nil
	}

	if err := b.launch(); err != nil {
		return nil, err
	}
	return b, nil
}

// ActivePage returns the tab the user is looking at: a visible tab,
// preferring the focused one, then the one most recently opened with Open.
// It returns ENOPAGE when no tab is visible.
func (b *Browser) ActivePage(ctx context.Context) (mailscan.Page, error) {
	if b.closed.Load() {
		return nil, mailscan.Errorf(mailscan.EINVALID, "browser is closed")
	}

	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	scores := make([]int, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, p := range pages {
		g.Go(func() error {
			obj, err := p.Context(gctx).Eval(probeJS)
			if err != nil {
				// Tabs that cannot run scripts (crashed, devtools) are never active.
				return nil
			}
			scores[i] = obj.Value.Int()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	opened := b.opened
	b.mu.Unlock()

	best, bestScore := -1, 0
	for i, p := range pages {
		score := scores[i]
		if score == 0 {
			continue
		}
		if p.TargetID == opened {
			score += scoreOpened
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil, mailscan.Errorf(mailscan.ENOPAGE, "no tab is visible")
	}

	return b.wrap(ctx, pages[best])
}

// Open navigates a new tab to pageURL, brings it to the front and makes it
// the preferred active page.
func (b *Browser) Open(ctx context.Context, pageURL string) (*Page, error) {
	if b.closed.Load() {
		return nil, mailscan.Errorf(mailscan.EINVALID, "browser is closed")
	}

	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", pageURL, err)
	}
	if _, err := p.Activate(); err != nil {
		return nil, fmt.Errorf("activating %s: %w", pageURL, err)
	}

	b.mu.Lock()
	b.opened = p.TargetID
	b.mu.Unlock()

	return b.wrap(ctx, p)
}

// Close releases browser resources. A launched browser is shut down; an
// attached one is left running. Close is safe to call multiple times.
func (b *Browser) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.launcher == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher = nil
	return err
}

// LauncherPID returns the process ID of a launched browser, or zero when
// attached. This method exists for testing purposes to verify proper cleanup.
func (b *Browser) LauncherPID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

func (b *Browser) wrap(ctx context.Context, p *rod.Page) (*Page, error) {
	info, err := p.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("reading tab info: %w", err)
	}

	locators := b.locators
	if b.registry != nil {
		locators = b.registry.LocatorsFor(info.URL, "")
	}
	return newPage(p, info.URL, locators, b.fallbacks), nil
}

func (b *Browser) attach() error {
	u, err := launcher.ResolveURL(b.controlURL)
	if err != nil {
		return fmt.Errorf("resolving control URL %s: %w", b.controlURL, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("attaching to browser: %w", err)
	}

	b.browser = browser
	return nil
}

// launch starts a new browser instance with stability flags.
func (b *Browser) launch() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(b.headless)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.browser = browser
	b.launcher = lnchr
	return nil
}
