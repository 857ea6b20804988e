package token

import (
	"bytes"
	"fmt"
	"math"

	"github.com/kysee/ztoken/ledger"
	"github.com/kysee/ztoken/types"
)

// MintPolicy decides whether a caller may create value. Mint is a trust
// boundary; the policy is supplied by the operator, not derived here.
type MintPolicy func(caller string, amount uint64) error

// Executor validates and executes single token operations against a
// ledger. Execution is purely local: records and nullifiers are computed,
// effects are scheduled, and nothing shared is touched until the
// enclosing transaction finalizes.
type Executor struct {
	ledger     *ledger.Ledger
	mintPolicy MintPolicy
}

func NewExecutor(l *ledger.Ledger, policy MintPolicy) *Executor {
	return &Executor{
		ledger:     l,
		mintPolicy: policy,
	}
}

// Mint creates a new record of amount owned by the caller. There is no
// sufficiency check; authorization is the policy's concern.
func (e *Executor) Mint(caller *types.Wallet, amount uint64) (*Transition, error) {
	if e.mintPolicy != nil {
		if err := e.mintPolicy(caller.Address, amount); err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrUnauthorized, err)
		}
	}

	rec := types.NewRecord(caller.PrivateKey.Public(), amount)
	return &Transition{
		Op:      "mint",
		state:   StateExecuted,
		outputs: []*types.Record{rec},
	}, nil
}

// TransferPrivate consumes input and emits two records: amount to the
// receiver and the remainder back to the caller. The change record is
// mandatory; without it the caller's excess balance would be destroyed.
func (e *Executor) TransferPrivate(caller *types.Wallet, toAddr string, amount uint64, input *types.Record) (*Transition, error) {
	toPub, err := types.Addr2Pub(toAddr)
	if err != nil {
		return nil, err
	}
	nf, err := e.consume(caller, input)
	if err != nil {
		return nil, err
	}
	if amount > input.Balance {
		return nil, fmt.Errorf("%w: need %d, record holds %d",
			ledger.ErrInsufficientBalance, amount, input.Balance)
	}
	remaining := input.Balance - amount

	newRec := types.NewRecord(toPub, amount)
	changeRec := types.NewRecord(caller.PrivateKey.Public(), remaining)

	return &Transition{
		Op:         "transfer_private",
		state:      StateExecuted,
		outputs:    []*types.Record{newRec, changeRec},
		nullifiers: []types.RecordNullifier{nf},
	}, nil
}

// PrivateToPublic consumes input, returns the remainder to the caller as
// a record, and schedules a finalize-stage credit of amount to the
// receiver's public balance.
func (e *Executor) PrivateToPublic(caller *types.Wallet, toAddr string, amount uint64, input *types.Record) (*Transition, error) {
	if _, err := types.DecodeAddress(toAddr); err != nil {
		return nil, err
	}
	nf, err := e.consume(caller, input)
	if err != nil {
		return nil, err
	}
	if amount > input.Balance {
		return nil, fmt.Errorf("%w: need %d, record holds %d",
			ledger.ErrInsufficientBalance, amount, input.Balance)
	}

	changeRec := types.NewRecord(caller.PrivateKey.Public(), input.Balance-amount)

	return &Transition{
		Op:         "private_to_public",
		state:      StateExecuted,
		outputs:    []*types.Record{changeRec},
		nullifiers: []types.RecordNullifier{nf},
		effects:    []ledger.Effect{ledger.Credit(toAddr, amount)},
	}, nil
}

// PublicToPrivate optimistically emits a record of amount to the receiver
// and schedules a finalize-stage debit of the caller's public balance.
// If the debit fails at finalize, the transaction reverts and the record
// is discarded.
func (e *Executor) PublicToPrivate(caller *types.Wallet, toAddr string, amount uint64) (*Transition, error) {
	toPub, err := types.Addr2Pub(toAddr)
	if err != nil {
		return nil, err
	}

	newRec := types.NewRecord(toPub, amount)

	return &Transition{
		Op:      "public_to_private",
		state:   StateExecuted,
		outputs: []*types.Record{newRec},
		effects: []ledger.Effect{ledger.Debit(caller.Address, amount)},
	}, nil
}

// Join consumes both inputs and emits a single record carrying their sum.
func (e *Executor) Join(caller *types.Wallet, input1, input2 *types.Record) (*Transition, error) {
	nf1, err := e.consume(caller, input1)
	if err != nil {
		return nil, err
	}
	nf2, err := e.consume(caller, input2)
	if err != nil {
		return nil, err
	}
	if input1.Balance > math.MaxUint64-input2.Balance {
		return nil, fmt.Errorf("%w: join %d + %d",
			ledger.ErrOverflow, input1.Balance, input2.Balance)
	}

	joined := types.NewRecord(caller.PrivateKey.Public(), input1.Balance+input2.Balance)

	return &Transition{
		Op:         "join",
		state:      StateExecuted,
		outputs:    []*types.Record{joined},
		nullifiers: []types.RecordNullifier{nf1, nf2},
	}, nil
}

// consume checks the caller owns the record and derives its nullifier.
// The derivation needs the owner's private scalar, so holding the key is
// what authorizes the spend. Uniqueness of the nullifier is enforced
// later, when the transaction commits.
func (e *Executor) consume(caller *types.Wallet, input *types.Record) (types.RecordNullifier, error) {
	if !bytes.Equal(input.Owner.Bytes(), caller.PrivateKey.Public().Bytes()) {
		return nil, fmt.Errorf("%w: record is not owned by %s", ledger.ErrUnauthorized, caller.Address)
	}
	prv0, prv1 := caller.PrvScalars()
	return input.Nullifier(prv0, prv1), nil
}
