package dispatcher

import (
	"context"
	"fmt"
	"time"
)

// Surface is the slice of the browser session the sequencer drives. The
// external web client is uncontrolled and versioned; everything here is a
// best-effort DOM probe.
type Surface interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	Click(ctx context.Context, sel string, timeout time.Duration) error
	PressEnter(ctx context.Context, sel string, timeout time.Duration) error
	Eval(ctx context.Context, js string, out any) error
}

// Strategy is one way of committing a pre-filled message in the external UI.
// Strategies are interchangeable; the sequencer tries them in priority order.
type Strategy interface {
	Name() string
	Ready() bool
	Acquire() bool
	Commit(ctx context.Context, ui Surface) error
}

// Selector families for the external client. These rot whenever the client
// ships a new DOM; keep old variants around, probing extras is cheap.
var (
	ComposeSelectors = []string{
		`[data-testid='conversation-compose-box-input']`,
		`[contenteditable='true'][data-tab='10']`,
		`div[contenteditable='true']`,
		`.selectable-text[contenteditable='true']`,
	}

	sendButtonSelectors = []string{
		`[data-testid='send']`,
		`button[aria-label*='Send']`,
		`span[data-icon='send']`,
	}
)

const sendButtonScript = `(function() {
	var el = document.querySelector("[data-testid='send']") ||
		document.querySelector("button[aria-label*='Send']") ||
		document.querySelector("span[data-icon='send']");
	if (!el) return false;
	if (el.tagName === 'SPAN' && el.closest('button')) el = el.closest('button');
	el.click();
	return true;
})()`

// ClickStrategy clicks the first send button it can find.
type ClickStrategy struct {
	selectors []string
	timeout   time.Duration
	br        *Breaker
}

func NewClickStrategy(timeoutMs, failThreshold, openForMs int) *ClickStrategy {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &ClickStrategy{
		selectors: sendButtonSelectors,
		timeout:   time.Duration(timeoutMs) * time.Millisecond,
		br:        NewBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (s *ClickStrategy) Name() string  { return "click" }
func (s *ClickStrategy) Ready() bool   { return s.br.Ready() }
func (s *ClickStrategy) Acquire() bool { return s.br.TryAcquire() }

func (s *ClickStrategy) Commit(ctx context.Context, ui Surface) error {
	var last error
	for _, sel := range s.selectors {
		if err := ui.Click(ctx, sel, s.timeout); err != nil {
			last = err
			continue
		}
		s.br.OnSuccess()
		return nil
	}

	s.br.OnFailure()
	if last == nil {
		last = fmt.Errorf("no send button selector matched")
	}
	return last
}

// KeystrokeStrategy presses Enter inside the compose box.
type KeystrokeStrategy struct {
	selectors []string
	timeout   time.Duration
	br        *Breaker
}

func NewKeystrokeStrategy(timeoutMs, failThreshold, openForMs int) *KeystrokeStrategy {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}
	return &KeystrokeStrategy{
		selectors: ComposeSelectors,
		timeout:   time.Duration(timeoutMs) * time.Millisecond,
		br:        NewBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (s *KeystrokeStrategy) Name() string  { return "keystroke" }
func (s *KeystrokeStrategy) Ready() bool   { return s.br.Ready() }
func (s *KeystrokeStrategy) Acquire() bool { return s.br.TryAcquire() }

func (s *KeystrokeStrategy) Commit(ctx context.Context, ui Surface) error {
	var last error
	for _, sel := range s.selectors {
		if err := ui.PressEnter(ctx, sel, s.timeout); err != nil {
			last = err
			continue
		}
		s.br.OnSuccess()
		return nil
	}

	s.br.OnFailure()
	if last == nil {
		last = fmt.Errorf("no compose box selector matched")
	}
	return last
}

// ScriptStrategy injects JS that locates and clicks the send affordance,
// bypassing visibility/clickability checks the driver enforces.
type ScriptStrategy struct {
	js string
	br *Breaker
}

func NewScriptStrategy(failThreshold, openForMs int) *ScriptStrategy {
	return &ScriptStrategy{
		js: sendButtonScript,
		br: NewBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (s *ScriptStrategy) Name() string  { return "script" }
func (s *ScriptStrategy) Ready() bool   { return s.br.Ready() }
func (s *ScriptStrategy) Acquire() bool { return s.br.TryAcquire() }

func (s *ScriptStrategy) Commit(ctx context.Context, ui Surface) error {
	var clicked bool
	if err := ui.Eval(ctx, s.js, &clicked); err != nil {
		s.br.OnFailure()
		return err
	}
	if !clicked {
		s.br.OnFailure()
		return fmt.Errorf("script found no send affordance")
	}

	s.br.OnSuccess()
	return nil
}
