package types

import (
	"encoding/binary"

	jubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark-crypto/signature"
	"github.com/kysee/ztoken/utils"
)

type RecordCommitment []byte
type RecordNullifier []byte

const (
	RecordVersion1 = byte(0x01)
	SaltSize       = 32
)

// Record is the private value container of the token. It is created by a
// transition, owned by whoever holds the matching private key, and consumed
// (nullified) exactly once. Only its commitment ever reaches the ledger.
type Record struct {
	Version byte
	Owner   signature.PublicKey
	Balance uint64
	Salt    []byte
}

// NewRecord creates a record for the given owner. The salt doubles as the
// nullifier seed; a fresh one is drawn for every record.
func NewRecord(owner signature.PublicKey, balance uint64) *Record {
	return &Record{
		Version: RecordVersion1,
		Owner:   owner,
		Balance: balance,
		Salt:    RandBytes(SaltSize),
	}
}

func (r *Record) OwnerAddress() string {
	return Pub2Addr(r.Owner)
}

// Bytes returns the fixed-width serialization of the record:
// version(1) | owner.A.X(32) | owner.A.Y(32) | balance(8, big-endian) | salt(32).
func (r *Record) Bytes() []byte {
	_pub := r.Owner.(*jubjub.PublicKey)
	ax := _pub.A.X.Bytes()
	ay := _pub.A.Y.Bytes()

	bz := make([]byte, 0, 1+32+32+8+SaltSize)
	bz = append(bz, r.Version)
	bz = append(bz, ax[:]...)
	bz = append(bz, ay[:]...)
	bz = binary.BigEndian.AppendUint64(bz, r.Balance)
	bz = append(bz, r.Salt...)
	return bz
}

// Commitment hashes the record fields as individual field elements. The
// field order must match the in-circuit recomputation exactly.
func (r *Record) Commitment() RecordCommitment {
	_pub := r.Owner.(*jubjub.PublicKey)
	ax := _pub.A.X.Bytes()
	ay := _pub.A.Y.Bytes()

	return utils.MiMCHash(
		utils.Bytes32([]byte{r.Version}),
		ax[:],
		ay[:],
		utils.Bytes32(binary.BigEndian.AppendUint64(nil, r.Balance)),
		r.Salt,
	)
}

// Nullifier derives the record's unique spend tag from the owner's private
// scalar halves:
//
//	nk = H(prv0, prv1)
//	nf = H(nk, commitment)
//
// The derivation is deterministic, so consuming the same record twice
// produces an identical nullifier and the second consumption is rejected
// by the ledger's nullifier set.
func (r *Record) Nullifier(prv0, prv1 []byte) RecordNullifier {
	nk := utils.MiMCHash(utils.Bytes32(prv0), utils.Bytes32(prv1))
	return utils.MiMCHash(nk, r.Commitment())
}

// ToSecretRecord strips the owner key, leaving the plaintext the receiver
// needs to reconstruct and later spend the record.
func (r *Record) ToSecretRecord() *SecretRecord {
	return &SecretRecord{
		Version: r.Version,
		Balance: r.Balance,
		Salt:    r.Salt,
	}
}
