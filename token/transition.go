package token

import (
	"github.com/kysee/ztoken/ledger"
	"github.com/kysee/ztoken/types"
)

// TransitionState tracks a transition through its lifecycle:
//
//	Pending -> Executed -> Finalized
//	                    -> Reverted
//
// Finalized and Reverted are terminal.
type TransitionState byte

const (
	StatePending TransitionState = iota
	StateExecuted
	StateFinalized
	StateReverted
)

func (s TransitionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuted:
		return "executed"
	case StateFinalized:
		return "finalized"
	case StateReverted:
		return "reverted"
	}
	return "unknown"
}

// Transition is the outcome of one executed token operation: the records
// it emitted, the nullifiers of the records it consumed, and the deferred
// public-map effects it scheduled. Nothing in it is visible to the ledger
// until the enclosing transaction finalizes.
type Transition struct {
	Op string

	state      TransitionState
	outputs    []*types.Record
	nullifiers []types.RecordNullifier
	effects    []ledger.Effect
}

func (t *Transition) State() TransitionState { return t.state }

// Outputs returns the emitted records. After a revert there are none.
func (t *Transition) Outputs() []*types.Record { return t.outputs }

func (t *Transition) Nullifiers() []types.RecordNullifier { return t.nullifiers }

func (t *Transition) Effects() []ledger.Effect { return t.effects }

func (t *Transition) markFinalized() {
	t.state = StateFinalized
}

// markReverted discards everything the transition emitted; an
// optimistically issued record must not exist after an abort.
func (t *Transition) markReverted() {
	t.state = StateReverted
	t.outputs = nil
	t.nullifiers = nil
	t.effects = nil
}
