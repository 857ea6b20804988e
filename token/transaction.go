package token

import (
	"errors"

	"github.com/kysee/ztoken/ledger"
	"github.com/kysee/ztoken/types"
)

var ErrTransactionClosed = errors.New("transaction already finalized or reverted")

// Transaction is an ordered sequence of transitions whose finalize
// mutations apply atomically: either every transition's records,
// nullifiers, and public-map effects land, or none do.
type Transaction struct {
	transitions []*Transition
	closed      bool
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (tx *Transaction) Add(t *Transition) error {
	if tx.closed {
		return ErrTransactionClosed
	}
	tx.transitions = append(tx.transitions, t)
	return nil
}

func (tx *Transaction) Transitions() []*Transition { return tx.transitions }

// Outputs returns every record emitted by the transaction, in transition
// order. Empty after a revert.
func (tx *Transaction) Outputs() []*types.Record {
	var ret []*types.Record
	for _, t := range tx.transitions {
		ret = append(ret, t.outputs...)
	}
	return ret
}

// Finalize commits the transaction to the ledger: nullifiers and output
// commitments of every transition, and the scheduled effects in
// transition-submission order (declaration order within a transition).
// The ledger applies the whole batch in one critical section; any
// failure reverts every transition and discards all emitted records,
// including optimistically issued ones.
func (tx *Transaction) Finalize(l *ledger.Ledger) error {
	if tx.closed {
		return ErrTransactionClosed
	}
	tx.closed = true

	var nullifiers []types.RecordNullifier
	var commitments []types.RecordCommitment
	var effects []ledger.Effect
	for _, t := range tx.transitions {
		nullifiers = append(nullifiers, t.nullifiers...)
		for _, rec := range t.outputs {
			commitments = append(commitments, rec.Commitment())
		}
		effects = append(effects, t.effects...)
	}

	if err := l.Commit(nullifiers, commitments, effects); err != nil {
		for _, t := range tx.transitions {
			t.markReverted()
		}
		return err
	}

	for _, t := range tx.transitions {
		t.markFinalized()
	}
	return nil
}
