// Package runner owns the outer sending loop: one contact at a time against
// the single browser session, blocking on the configured delay between
// contacts. There is deliberately no parallelism here.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmehdipour/wasend/internal/dispatcher"
	"github.com/jmehdipour/wasend/internal/model"
	"github.com/jmehdipour/wasend/internal/util"
	"go.uber.org/zap"
)

// Deliverer is satisfied by dispatcher.Sequencer.
type Deliverer interface {
	Deliver(ctx context.Context, contact model.Contact, onProgress dispatcher.ProgressFunc) bool
}

type Runner struct {
	seq   Deliverer
	delay time.Duration
	log   *zap.Logger

	id       string
	stopFlag atomic.Bool

	mu       sync.Mutex
	attempts []model.Attempt
	summary  model.Summary

	sleep func(time.Duration) // test hook
}

func New(seq Deliverer, delay time.Duration, log *zap.Logger) *Runner {
	if delay < 0 {
		delay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Runner{
		seq:   seq,
		delay: delay,
		log:   log,
		id:    util.NewID(),
		sleep: time.Sleep,
	}
}

func (r *Runner) ID() string { return r.id }

// Stop requests the loop to end. Consulted only between contacts; an
// in-flight delivery attempt is never interrupted.
func (r *Runner) Stop() { r.stopFlag.Store(true) }

// Run walks the contacts sequentially. Each contact is attempted exactly
// once; the delay applies between contacts, not after the last one.
func (r *Runner) Run(ctx context.Context, contacts []model.Contact) model.Summary {
	r.mu.Lock()
	r.summary = model.Summary{
		RunID:     r.id,
		Total:     len(contacts),
		StartedAt: time.Now(),
	}
	r.mu.Unlock()

	r.log.Info("run started", zap.String("run_id", r.id), zap.Int("contacts", len(contacts)))

	for i, c := range contacts {
		if r.stopFlag.Load() || ctx.Err() != nil {
			r.mu.Lock()
			r.summary.Stopped = true
			r.mu.Unlock()
			r.log.Info("run stopped", zap.String("run_id", r.id), zap.Int("done", i))
			break
		}

		number := c.Number
		ok := r.seq.Deliver(ctx, c, func(stage model.AttemptStatus, msg string) {
			r.append(number, stage, msg)
		})

		r.mu.Lock()
		r.summary.Done++
		if ok {
			r.summary.Sent++
		} else {
			r.summary.Failed++
		}
		r.mu.Unlock()

		if i < len(contacts)-1 && !r.stopFlag.Load() {
			r.sleep(r.delay)
		}
	}

	now := time.Now()
	r.mu.Lock()
	r.summary.FinishedAt = &now
	out := r.summary
	r.mu.Unlock()

	r.log.Info("run finished",
		zap.String("run_id", r.id),
		zap.Int("sent", out.Sent),
		zap.Int("failed", out.Failed),
	)

	return out
}

func (r *Runner) append(number string, stage model.AttemptStatus, msg string) {
	r.mu.Lock()
	r.attempts = append(r.attempts, model.Attempt{
		At:     time.Now(),
		Number: number,
		Status: stage,
		Detail: msg,
	})
	r.mu.Unlock()

	r.log.Debug("attempt progress",
		zap.String("number", number),
		zap.String("status", stage.String()),
		zap.String("detail", msg),
	)
}

// Snapshot returns a copy of the current summary and attempt log, safe to
// serve while the run is still in flight.
func (r *Runner) Snapshot() (model.Summary, []model.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempts := make([]model.Attempt, len(r.attempts))
	copy(attempts, r.attempts)

	return r.summary, attempts
}
