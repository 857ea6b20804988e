package ledger

import "errors"

// Domain errors. All of them are transaction-fatal: the orderer discards
// the whole transaction's effects and never retries.
var (
	// ErrInsufficientBalance : a debit or private spend exceeds the
	// available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOverflow : a 64-bit balance sum would wrap.
	ErrOverflow = errors.New("balance overflow")

	// ErrDoubleSpend : the nullifier has already been emitted in this
	// ledger's history.
	ErrDoubleSpend = errors.New("double spend: nullifier already exists")

	// ErrMissingEntry : no public balance entry for the account, in a
	// context where absence is itself an error (debiting).
	ErrMissingEntry = errors.New("missing public balance entry")

	// ErrUnauthorized : the caller is not allowed to perform the
	// operation (mint gating, spending someone else's record).
	ErrUnauthorized = errors.New("unauthorized")
)
