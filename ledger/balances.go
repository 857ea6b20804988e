package ledger

import (
	"fmt"
	"math"
)

// BalanceMap is the account-keyed public side of the token. Entries are
// only ever written while an Effect batch commits; transition bodies read
// at most.
type BalanceMap struct {
	m map[string]uint64
}

func NewBalanceMap() *BalanceMap {
	return &BalanceMap{m: make(map[string]uint64)}
}

// GetOrDefault returns the stored balance, or 0 for an absent account.
func (b *BalanceMap) GetOrDefault(account string) uint64 {
	return b.m[account]
}

// Get returns the stored balance and fails with ErrMissingEntry if the
// account is absent. Used where absence is itself an error, e.g. debiting.
func (b *BalanceMap) Get(account string) (uint64, error) {
	v, ok := b.m[account]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingEntry, account)
	}
	return v, nil
}

// set overwrites unconditionally. Unexported: only the commit path may
// mutate the map.
func (b *BalanceMap) set(account string, value uint64) {
	b.m[account] = value
}

// apply validates and applies a single effect.
func (b *BalanceMap) apply(eff Effect) error {
	switch eff.Op {
	case EffectCredit:
		old := b.GetOrDefault(eff.Account)
		if eff.Amount > math.MaxUint64-old {
			return fmt.Errorf("%w: credit %d to %s", ErrOverflow, eff.Amount, eff.Account)
		}
		b.set(eff.Account, old+eff.Amount)
		return nil
	case EffectDebit:
		old, err := b.Get(eff.Account)
		if err != nil {
			return err
		}
		if old < eff.Amount {
			return fmt.Errorf("%w: debit %d from %s holding %d",
				ErrInsufficientBalance, eff.Amount, eff.Account, old)
		}
		b.set(eff.Account, old-eff.Amount)
		return nil
	default:
		return fmt.Errorf("unknown effect op: %d", eff.Op)
	}
}

// clone deep-copies the map, giving the commit path a scratch state to
// validate a whole batch against before anything becomes visible.
func (b *BalanceMap) clone() *BalanceMap {
	cp := NewBalanceMap()
	for k, v := range b.m {
		cp.m[k] = v
	}
	return cp
}
