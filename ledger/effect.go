package ledger

// EffectOp is the kind of a deferred public-map mutation.
type EffectOp byte

const (
	EffectCredit EffectOp = iota + 1
	EffectDebit
)

// Effect is one scheduled mutation of the public balance map. Transitions
// emit effects instead of touching the map; the effects are applied in
// order by Commit, all or nothing.
type Effect struct {
	Op      EffectOp
	Account string
	Amount  uint64
}

func Credit(account string, amount uint64) Effect {
	return Effect{Op: EffectCredit, Account: account, Amount: amount}
}

func Debit(account string, amount uint64) Effect {
	return Effect{Op: EffectDebit, Account: account, Amount: amount}
}
