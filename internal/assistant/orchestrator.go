// Package assistant drives one learner query at a time through the
// Idle, Loading and Succeeded or Failed phases.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/logging"
	"github.com/csheth/edugenius/internal/markdown"
)

// DefaultInterstitialDelay is how long the interstitial stays up before the
// request is dispatched.
const DefaultInterstitialDelay = 3 * time.Second

var (
	// ErrEmptyQuery is returned when the trimmed query is empty. Nothing changes.
	ErrEmptyQuery = llm.ErrEmptyQuery
	// ErrBusy is returned while a previous submission is outstanding.
	ErrBusy = errors.New("a request is already in progress")
	// ErrNotPending is returned by Start and Resolve out of order.
	ErrNotPending = errors.New("no submission is pending")
)

// Recorder receives every successful answer.
type Recorder interface {
	Record(req llm.Request, resp llm.Response, took time.Duration) error
}

// Result is a successful answer with its rendered blocks.
type Result struct {
	Response llm.Response
	Blocks   markdown.Blocks
	Took     time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInterstitial makes every submission wait delay before Loading while
// enabled reports true. enabled is consulted once per submission.
func WithInterstitial(enabled func() bool, delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.interstitialOn = enabled
		o.delay = delay
	}
}

// WithRecorder stores successful answers.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger overrides the shared logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithRenderOptions changes how answers are split into blocks.
func WithRenderOptions(opts markdown.Options) Option {
	return func(o *Orchestrator) { o.render = opts }
}

// WithWait replaces the interstitial timer.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.wait = wait }
}

// WithClock replaces time.Now when measuring answers.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator owns the query state. It admits at most one outstanding
// submission and is safe for concurrent use.
type Orchestrator struct {
	client llm.Client

	interstitialOn func() bool
	delay          time.Duration
	recorder       Recorder
	render         markdown.Options
	log            *slog.Logger
	wait           func(ctx context.Context, d time.Duration) error
	now            func() time.Time

	mu        sync.Mutex
	state     State
	prev      State
	startedAt time.Time
	observers []func(from, to State)
}

// New returns an idle orchestrator backed by client.
func New(client llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		delay:  DefaultInterstitialDelay,
		wait:   sleep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logging.Logger()
	}
	return o
}

// OnTransition registers fn for every state change, in order.
func (o *Orchestrator) OnTransition(fn func(from, to State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Submit runs a full submission: interstitial wait, one collaborator call,
// and resolution. An empty query returns ErrEmptyQuery and a second call while
// one is outstanding returns ErrBusy; neither changes state. A collaborator
// failure moves to PhaseFailed and is returned.
func (o *Orchestrator) Submit(ctx context.Context, req llm.Request) (Result, error) {
	delay, err := o.Begin(req)
	if err != nil {
		return Result{}, err
	}
	if delay > 0 {
		if err := o.wait(ctx, delay); err != nil {
			o.Abandon()
			return Result{}, err
		}
	}
	req, err = o.Start()
	if err != nil {
		return Result{}, err
	}
	resp, callErr := o.client.Assist(ctx, req)
	return o.Resolve(resp, callErr)
}

// Begin accepts req and returns the interstitial delay the caller must await
// before Start. A zero delay means Start may follow immediately.
func (o *Orchestrator) Begin(req llm.Request) (time.Duration, error) {
	if strings.TrimSpace(req.Query) == "" {
		return 0, ErrEmptyQuery
	}
	showInterstitial := o.interstitialOn != nil && o.interstitialOn() && o.delay > 0

	o.mu.Lock()
	if o.state.Outstanding() {
		o.mu.Unlock()
		return 0, ErrBusy
	}
	from := o.state.clone()
	o.prev = from
	o.state.Request = req
	o.state.Pending = true
	o.state.Interstitial = showInterstitial
	to := o.state.clone()
	observers := o.observers
	o.mu.Unlock()

	o.log.Debug("assistant: accepted", "subject", req.Subject, "mode", req.Mode, "interstitial", showInterstitial)
	notify(observers, from, to)
	if !showInterstitial {
		return 0, nil
	}
	return o.delay, nil
}

// Abandon releases a submission that has not started loading and restores
// the state it replaced.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	if !o.state.Pending {
		o.mu.Unlock()
		return
	}
	from := o.state.clone()
	o.state = o.prev
	to := o.state.clone()
	observers := o.observers
	o.mu.Unlock()
	notify(observers, from, to)
}

// Start enters PhaseLoading with the accepted request and returns it.
func (o *Orchestrator) Start() (llm.Request, error) {
	o.mu.Lock()
	if !o.state.Pending {
		o.mu.Unlock()
		return llm.Request{}, ErrNotPending
	}
	from := o.state.clone()
	req := o.state.Request
	o.state = State{Phase: PhaseLoading, Request: req}
	o.startedAt = o.now()
	to := o.state.clone()
	observers := o.observers
	o.mu.Unlock()

	notify(observers, from, to)
	return req, nil
}

// Ask performs the single collaborator call for a started request.
func (o *Orchestrator) Ask(ctx context.Context, req llm.Request) (llm.Response, error) {
	return o.client.Assist(ctx, req)
}

// Resolve ends the loading submission with the collaborator's outcome.
func (o *Orchestrator) Resolve(resp llm.Response, callErr error) (Result, error) {
	o.mu.Lock()
	if o.state.Phase != PhaseLoading {
		o.mu.Unlock()
		return Result{}, ErrNotPending
	}
	from := o.state.clone()
	req := o.state.Request
	took := o.now().Sub(o.startedAt)
	if callErr != nil {
		o.state = State{Phase: PhaseFailed, Request: req, Message: failureMessage(callErr)}
	} else {
		o.state = State{
			Phase:    PhaseSucceeded,
			Request:  req,
			Response: resp,
			Blocks:   markdown.RenderWith(resp.Content, o.render),
		}
	}
	to := o.state.clone()
	observers := o.observers
	o.mu.Unlock()

	notify(observers, from, to)
	if callErr != nil {
		cause := callErr
		if inner := errors.Unwrap(callErr); inner != nil {
			cause = inner
		}
		o.log.Error("assistant: request failed", "subject", req.Subject, "mode", req.Mode, "err", cause)
		return Result{}, callErr
	}
	o.log.Info("assistant: answered", "subject", req.Subject, "mode", req.Mode, "took", took)
	if o.recorder != nil {
		if err := o.recorder.Record(req, resp, took); err != nil {
			o.log.Warn("assistant: record failed", "err", err)
		}
	}
	return Result{Response: resp, Blocks: to.Blocks, Took: took}, nil
}

func failureMessage(err error) string {
	var collab *llm.CollaboratorError
	if errors.As(err, &collab) {
		return collab.Error()
	}
	return llm.ConnectionErrorMessage
}

func notify(observers []func(from, to State), from, to State) {
	for _, fn := range observers {
		fn(from, to)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
