package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wasend/internal/metrics"
	"github.com/jmehdipour/wasend/internal/model"
	"github.com/jmehdipour/wasend/internal/util"
	"go.uber.org/zap"
)

// ProgressFunc receives a human-readable status string, tagged with the
// phase it belongs to, at each phase transition of a delivery attempt.
type ProgressFunc func(stage model.AttemptStatus, msg string)

type Config struct {
	BaseURL    string        // e.g. https://web.whatsapp.com
	RenderWait time.Duration // window for the compose box to appear
	SettleWait time.Duration // extra settle after the compose box is there
}

// Sequencer runs one delivery attempt per contact: navigate to the deep
// link, wait for the chat surface to render, then walk the commit strategies
// in priority order until one succeeds. It never returns an error to the
// caller; every failure degrades to a progress string and a false result.
type Sequencer struct {
	ui         Surface
	strategies []Strategy
	baseURL    string
	renderWait time.Duration
	settleWait time.Duration
	log        *zap.Logger

	sleep func(time.Duration) // test hook
}

func NewSequencer(ui Surface, strategies []Strategy, cfg Config, log *zap.Logger) *Sequencer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://web.whatsapp.com"
	}
	if cfg.RenderWait <= 0 {
		cfg.RenderWait = 15 * time.Second
	}
	if cfg.SettleWait < 0 {
		cfg.SettleWait = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Sequencer{
		ui:         ui,
		strategies: strategies,
		baseURL:    cfg.BaseURL,
		renderWait: cfg.RenderWait,
		settleWait: cfg.SettleWait,
		log:        log,
		sleep:      time.Sleep,
	}
}

// Deliver attempts one contact. Exactly one navigation; the only fallback
// chain is across commit strategies. True iff some strategy reported success.
func (s *Sequencer) Deliver(ctx context.Context, contact model.Contact, onProgress ProgressFunc) bool {
	if onProgress == nil {
		onProgress = func(model.AttemptStatus, string) {}
	}

	if err := contact.Validate(); err != nil {
		s.fail(onProgress, strings.TrimSpace(contact.Number), err.Error())
		return false
	}

	number := util.SanitizeNumber(contact.Number)
	text := strings.TrimSpace(contact.Message)
	if number == "" {
		s.fail(onProgress, strings.TrimSpace(contact.Number), "number has no digits")
		return false
	}

	link := DeepLink(s.baseURL, number, text)

	onProgress(model.StatusOpening, "opening chat for "+number)
	if err := s.guard(func() error { return s.ui.Navigate(ctx, link) }); err != nil {
		s.log.Warn("navigate failed", zap.String("number", number), zap.Error(err))
		s.fail(onProgress, number, "could not open chat")
		return false
	}

	if !s.waitForCompose(ctx) {
		s.fail(onProgress, number, "chat interface did not load")
		return false
	}

	// the surface keeps re-rendering briefly after the compose box appears
	s.sleep(s.settleWait)

	onProgress(model.StatusSending, "sending message to "+number)
	for _, st := range s.strategies {
		if !st.Ready() || !st.Acquire() {
			metrics.StrategyAttemptsTotal.WithLabelValues(st.Name(), "skipped").Inc()
			continue
		}

		if err := s.guard(func() error { return st.Commit(ctx, s.ui) }); err != nil {
			metrics.StrategyAttemptsTotal.WithLabelValues(st.Name(), "error").Inc()
			s.log.Debug("strategy failed",
				zap.String("strategy", st.Name()),
				zap.String("number", number),
				zap.Error(err),
			)
			continue
		}

		metrics.StrategyAttemptsTotal.WithLabelValues(st.Name(), "ok").Inc()
		metrics.MessagesTotal.WithLabelValues("sent").Inc()
		onProgress(model.StatusSent, "message sent to "+number)
		return true
	}

	s.fail(onProgress, number, "all send strategies exhausted")
	return false
}

func (s *Sequencer) fail(onProgress ProgressFunc, number, reason string) {
	metrics.MessagesTotal.WithLabelValues("failed").Inc()
	onProgress(model.StatusFailed, "failed to send to "+number+": "+reason)
}

// waitForCompose probes the compose box selector family, splitting the
// render window across the variants.
func (s *Sequencer) waitForCompose(ctx context.Context) bool {
	per := s.renderWait / time.Duration(len(ComposeSelectors))
	if per < time.Second {
		per = time.Second
	}

	for _, sel := range ComposeSelectors {
		err := s.guard(func() error { return s.ui.WaitVisible(ctx, sel, per) })
		if err == nil {
			return true
		}
	}
	return false
}

// guard converts a panic inside a driver call into a plain error; a
// misbehaving strategy must never take the whole run down.
func (s *Sequencer) guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}
