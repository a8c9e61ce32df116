package assistant

import (
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/markdown"
)

// Phase is the position of the single visible submission.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a submission.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// State is a snapshot of the orchestrator. Values are never shared with the
// orchestrator after they are returned.
type State struct {
	Phase Phase
	// Pending is set between acceptance and Loading. The phase is still the
	// previous one.
	Pending bool
	// Interstitial is set while a pending submission waits out the
	// interstitial delay.
	Interstitial bool
	Request      llm.Request
	Response     llm.Response
	Blocks       markdown.Blocks
	// Message holds the user-facing failure text in PhaseFailed.
	Message string
}

// Outstanding reports whether a submission is accepted and not yet resolved.
func (s State) Outstanding() bool {
	return s.Pending || s.Phase == PhaseLoading
}

func (s State) clone() State {
	out := s
	out.Blocks = append(markdown.Blocks(nil), s.Blocks...)
	if s.Response.References != nil {
		out.Response.References = append([]string(nil), s.Response.References...)
	}
	return out
}
