package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type Opts struct {
	UserDataDir    string // "" => <user config dir>/wasend/profile
	ExecPath       string // "" => auto-discover
	Headless       bool
	WindowWidth    int
	WindowHeight   int
	ActionTimeout  time.Duration
	StartupTimeout time.Duration
}

// Session is the single browser session a run owns exclusively. The profile
// directory is persistent so the QR login survives restarts.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	actionTimeout time.Duration
}

// NewSession launches Chrome and verifies it answers. This is the one
// failure that aborts a session instead of degrading to a status string.
func NewSession(o Opts) (*Session, error) {
	dir := o.UserDataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve profile dir: %w", err)
		}
		dir = filepath.Join(base, "wasend", "profile")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	execPath := o.ExecPath
	if execPath == "" {
		p, err := findChrome()
		if err != nil {
			return nil, err
		}
		execPath = p
	}

	if o.WindowWidth <= 0 || o.WindowHeight <= 0 {
		o.WindowWidth, o.WindowHeight = 1920, 1080
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 15 * time.Second
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.UserDataDir(dir),
		chromedp.Flag("headless", o.Headless),
		chromedp.WindowSize(o.WindowWidth, o.WindowHeight),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		ctx:           ctx,
		cancel:        cancel,
		actionTimeout: o.ActionTimeout,
	}

	// startup probe
	if err := s.run(o.StartupTimeout,
		chromedp.Navigate("about:blank"),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return s, nil
}

func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(tctx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.run(s.actionTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(timeout, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (s *Session) Click(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(timeout, chromedp.Click(sel, chromedp.ByQuery))
}

func (s *Session) PressEnter(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(timeout, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
}

func (s *Session) Eval(ctx context.Context, js string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(s.actionTimeout, chromedp.Evaluate(js, out))
}

func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}
