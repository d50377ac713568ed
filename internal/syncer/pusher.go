package syncer

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/remote"
)

// ErrPusherClosed is returned by Flush once the queue has been closed with
// work still outstanding.
var ErrPusherClosed = stderrors.New("push queue closed")

// Job is one snapshot waiting to be pushed.
type Job struct {
	UserID    string
	Tasks     domain.Collection
	Timestamp int64
}

// Status describes the push queue for a "sync pending" indicator.
type Status struct {
	Pending     bool      `json:"pending"`
	LastAttempt time.Time `json:"lastAttempt,omitempty"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	LastResult  string    `json:"lastResult,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// PusherOptions configures a Pusher.
type PusherOptions struct {
	// MaxRetries is the number of extra attempts after a retryable failure.
	MaxRetries int
	// BaseDelay is the first backoff; each retry doubles it.
	BaseDelay time.Duration
	Logger    *slog.Logger
}

// Pusher pushes snapshots in the background on a single worker. Enqueueing
// while a push is waiting replaces the waiting snapshot with the newer one.
type Pusher struct {
	engine     *Engine
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	pending  *Job
	inFlight bool
	idle     chan struct{}
	closed   bool
	status   Status
}

// NewPusher starts a push worker over engine.
func NewPusher(engine *Engine, opts PusherOptions) *Pusher {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	p := &Pusher{
		engine:     engine,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		logger:     logging.Component(logging.OrDiscard(opts.Logger), "pusher"),
		ctx:        ctx,
		cancel:     cancel,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		idle:       idle,
	}
	go p.run()
	return p
}

// Enqueue schedules job, superseding any job still waiting.
func (p *Pusher) Enqueue(job Job) {
	job.Tasks = job.Tasks.Clone()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("push dropped, queue closed", "user", job.UserID)
		return
	}
	if p.pending == nil && !p.inFlight {
		p.idle = make(chan struct{})
	}
	if p.pending != nil {
		p.logger.Debug("coalescing push", "user", job.UserID, "replaced", p.pending.Timestamp, "with", job.Timestamp)
	}
	p.pending = &job
	p.status.Pending = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a push is queued or running.
func (p *Pusher) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil || p.inFlight
}

// Status returns a copy of the queue status.
func (p *Pusher) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.status
	st.Pending = p.pending != nil || p.inFlight
	return st
}

// Flush blocks until the queue is empty or ctx is done.
func (p *Pusher) Flush(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.pending == nil && !p.inFlight {
			p.mu.Unlock()
			return nil
		}
		idle := p.idle
		p.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			if p.Pending() {
				return ErrPusherClosed
			}
			return nil
		}
	}
}

// Close stops the worker. The push in progress is abandoned and queued work
// is dropped; the local copy stays authoritative.
func (p *Pusher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	<-p.done
	return nil
}

func (p *Pusher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
		}
		for {
			job := p.take()
			if job == nil {
				break
			}
			p.push(job)
			p.finish()
			if p.ctx.Err() != nil {
				return
			}
		}
	}
}

func (p *Pusher) take() *Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	job := p.pending
	if job != nil {
		p.pending = nil
		p.inFlight = true
	}
	return job
}

func (p *Pusher) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if p.pending == nil {
		p.status.Pending = false
		close(p.idle)
	}
}

func (p *Pusher) superseded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

func (p *Pusher) push(job *Job) {
	delay := p.baseDelay
	for attempt := 0; ; attempt++ {
		res, err := p.engine.Push(p.ctx, job.UserID, job.Tasks, job.Timestamp)
		p.record(res, err)
		if err == nil {
			return
		}
		if p.ctx.Err() != nil {
			return
		}
		if !remote.IsRetryable(err) || attempt >= p.maxRetries {
			p.logger.Warn("push failed", "user", job.UserID, "attempts", attempt+1, "error", err)
			return
		}
		if p.superseded() {
			p.logger.Debug("push superseded, dropping retries", "user", job.UserID)
			return
		}

		p.logger.Debug("push retry scheduled", "user", job.UserID, "attempt", attempt+1, "delay", delay)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-p.ctx.Done():
			timer.Stop()
			return
		}
		delay *= 2
	}
}

func (p *Pusher) record(res PushResult, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.engine.clock.Now()
	p.status.LastAttempt = now
	if err != nil {
		p.status.LastError = err.Error()
		p.status.LastResult = "failed"
		return
	}
	p.status.LastError = ""
	p.status.LastResult = res.String()
	p.status.LastSuccess = now
}
