package sendrun

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmehdipour/wasend/internal/browser"
	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/dispatcher"
	"github.com/jmehdipour/wasend/internal/model"
	"github.com/jmehdipour/wasend/internal/runner"
	"go.uber.org/zap"
)

var (
	ErrRunActive         = errors.New("a run is already active")
	ErrLoginNotConfirmed = errors.New("login not confirmed")
	ErrNoContacts        = errors.New("no contacts to send")
	ErrSessionBusy       = errors.New("browser session is busy")
)

// Service owns the single browser session and at most one active run. The
// session starts lazily on first use and survives across runs so the QR
// login is done once.
type Service struct {
	cfg config.Config
	log *zap.Logger

	mu        sync.Mutex
	session   *browser.Session
	seq       *dispatcher.Sequencer
	current   *runner.Runner
	running   bool
	probing   bool
	confirmed bool
}

func New(cfg config.Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, log: log}
}

// ensureSession starts the browser and builds the sequencer on first use.
// Caller must hold s.mu.
func (s *Service) ensureSession() error {
	if s.session != nil {
		return nil
	}

	b := s.cfg.Browser
	sess, err := browser.NewSession(browser.Opts{
		UserDataDir:    b.UserDataDir,
		ExecPath:       b.ExecPath,
		Headless:       b.Headless,
		WindowWidth:    b.WindowWidth,
		WindowHeight:   b.WindowHeight,
		ActionTimeout:  b.ActionTimeout,
		StartupTimeout: b.StartupTimeout,
	})
	if err != nil {
		return err
	}

	s.session = sess
	s.seq = dispatcher.NewSequencer(
		sess,
		StrategiesFromConfig(s.cfg.Strategies, s.log),
		dispatcher.Config{
			BaseURL:    s.cfg.Sender.BaseURL,
			RenderWait: s.cfg.Sender.RenderWait,
			SettleWait: s.cfg.Sender.SettleWait,
		},
		s.log,
	)

	return nil
}

// StrategiesFromConfig builds the commit strategy chain in config order.
// Unknown names are skipped with a warning so a stale config does not brick
// the sender.
func StrategiesFromConfig(cfgs []config.StrategyConfig, log *zap.Logger) []dispatcher.Strategy {
	out := make([]dispatcher.Strategy, 0, len(cfgs))
	for _, c := range cfgs {
		if !c.Enabled {
			continue
		}
		switch c.Name {
		case "click":
			out = append(out, dispatcher.NewClickStrategy(c.TimeoutMs, c.Breaker.FailThreshold, c.Breaker.OpenForMs))
		case "keystroke":
			out = append(out, dispatcher.NewKeystrokeStrategy(c.TimeoutMs, c.Breaker.FailThreshold, c.Breaker.OpenForMs))
		case "script":
			out = append(out, dispatcher.NewScriptStrategy(c.Breaker.FailThreshold, c.Breaker.OpenForMs))
		default:
			if log != nil {
				log.Warn("unknown strategy in config, skipping", zap.String("name", c.Name))
			}
		}
	}
	return out
}

// LoginState probes the client's login state. Best-effort: the result
// informs the operator, it never gates a run by itself. The session is
// exclusively owned: probing navigates the browser, so it is refused while
// a run or another probe is driving it.
func (s *Service) LoginState(ctx context.Context) (browser.LoginState, error) {
	s.mu.Lock()
	if s.running || s.probing {
		s.mu.Unlock()
		return browser.StateUnknown, ErrSessionBusy
	}
	if err := s.ensureSession(); err != nil {
		s.mu.Unlock()
		return browser.StateUnknown, err
	}
	s.probing = true
	sess := s.session
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.probing = false
		s.mu.Unlock()
	}()

	return sess.CheckLogin(ctx, s.cfg.Sender.BaseURL, 10*time.Second), nil
}

// ConfirmLogin records the operator's explicit confirmation that the QR
// scan is done.
func (s *Service) ConfirmLogin() {
	s.mu.Lock()
	s.confirmed = true
	s.mu.Unlock()
}

func (s *Service) Confirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// Start begins a run in the background. delay <= 0 falls back to the
// configured per-message delay.
func (s *Service) Start(contacts []model.Contact, delay time.Duration) (string, error) {
	if len(contacts) == 0 {
		return "", ErrNoContacts
	}
	if delay <= 0 {
		delay = s.cfg.Sender.MessageDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return "", ErrRunActive
	}
	if s.probing {
		return "", ErrSessionBusy
	}
	if !s.confirmed {
		return "", ErrLoginNotConfirmed
	}
	if err := s.ensureSession(); err != nil {
		return "", err
	}

	r := runner.New(s.seq, delay, s.log)
	s.current = r
	s.running = true

	go func() {
		r.Run(context.Background(), contacts)
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return r.ID(), nil
}

// Current returns a snapshot of the latest run, if any.
func (s *Service) Current() (model.Summary, []model.Attempt, bool) {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil {
		return model.Summary{}, nil, false
	}
	summary, attempts := r.Snapshot()
	return summary, attempts, true
}

// Stop flags the active run to end after the in-flight contact.
func (s *Service) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.current == nil {
		return false
	}
	s.current.Stop()
	return true
}

// Close tears the browser session down.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.Close()
		s.session = nil
		s.seq = nil
	}
}
