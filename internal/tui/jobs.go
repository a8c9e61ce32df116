package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/edugenius/internal/logging"
)

type jobKind string

type jobStatus string

const (
	jobKindAsk      jobKind = "ask"
	jobKindMaterial jobKind = "material"
	jobKindHistory  jobKind = "history"
	jobKindSettings jobKind = "settings"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries a finished job's payload back to Update.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs background work and reports its lifecycle. Every job gets its
// own cancelable context so quitting the program can stop in-flight calls.
type jobBus struct {
	counter int64
	ctx     context.Context
	cancel  context.CancelFunc
}

func newJobBus() *jobBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &jobBus{ctx: ctx, cancel: cancel}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Stop() {
	b.cancel()
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	running := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	signal := func() tea.Msg {
		return jobSignalMsg{Snapshot: running}
	}

	run := func() tea.Msg {
		payload, err := runner(b.ctx)
		done := running
		done.CompletedAt = time.Now()
		done.Duration = done.CompletedAt.Sub(started)
		done.Status = jobStatusSucceeded
		if err != nil {
			done.Status = jobStatusFailed
			done.Err = err.Error()
		}
		logging.Logger().Info("[jobs] finished",
			"job", id,
			"status", string(done.Status),
			"duration", done.Duration,
			"err", err,
		)
		return jobResultEnvelope{Snapshot: done, Payload: payload}
	}

	return tea.Sequence(signal, run)
}
