package swap

// State is a step of the pipeline lifecycle
type State string

const (
	StateIdle           State = "idle"
	StateQuoteRequested State = "quote_requested"
	StateQuoteReceived  State = "quote_received"
	StateNormalized     State = "normalized"
	StateBuilt          State = "built"
	StateSubmitted      State = "submitted"
	StateVerifying      State = "verifying"
	StateConfirmed      State = "confirmed"
	StateOnChainFailure State = "on_chain_failure"
	StateTimeout        State = "timeout"
	StateFailed         State = "failed"
)

// forward lists the single next state of the happy path
var forward = map[State]State{
	StateIdle:           StateQuoteRequested,
	StateQuoteRequested: StateQuoteReceived,
	StateQuoteReceived:  StateNormalized,
	StateNormalized:     StateBuilt,
	StateBuilt:          StateSubmitted,
	StateSubmitted:      StateVerifying,
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateOnChainFailure, StateTimeout, StateFailed:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Any non-terminal state may fail; Verifying ends in one of the three chain outcomes.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	if s == StateVerifying {
		return next == StateConfirmed || next == StateOnChainFailure || next == StateTimeout
	}
	return forward[s] == next
}
