package types

import (
	"bytes"

	"github.com/consensys/gnark-crypto/signature"
	"github.com/holiman/uint256"
	"github.com/kysee/ztoken/crypto"
)

type Wallet struct {
	Address       string
	PrivateKey    signature.Signer
	secretRecords []*SecretRecord
}

func NewWallet() *Wallet {
	prvk, _ := crypto.NewKey()
	return &Wallet{
		Address:    Pub2Addr(prvk.Public()),
		PrivateKey: prvk,
	}
}

func (w *Wallet) AddSecretRecord(sr *SecretRecord) {
	w.secretRecords = append(w.secretRecords, sr)
}

func (w *Wallet) GetSecretRecord(idx int) *SecretRecord {
	if idx < len(w.secretRecords) {
		return w.secretRecords[idx]
	}
	return nil
}

func (w *Wallet) GetSecretRecordsCount() int {
	return len(w.secretRecords)
}

func (w *Wallet) DelSecretRecord(sr *SecretRecord) {
	found := -1
	for i, n := range w.secretRecords {
		if bytes.Equal(n.Salt, sr.Salt) {
			found = i
			break
		}
	}
	if found >= 0 {
		w.secretRecords = append(w.secretRecords[:found], w.secretRecords[found+1:]...)
	}
}

// Receive decrypts an encrypted secret record addressed to this wallet and
// stores it.
func (w *Wallet) Receive(enc []byte) (*SecretRecord, error) {
	sr, err := DecryptSecretRecord(enc, w.PrivateKey)
	if err != nil {
		return nil, err
	}
	w.AddSecretRecord(sr)
	return sr, nil
}

// GetBalance sums the balances of all held records. The sum of many
// records may exceed 64 bits, so the aggregate is a uint256.
func (w *Wallet) GetBalance() *uint256.Int {
	ret := uint256.NewInt(0)
	for _, n := range w.secretRecords {
		ret = ret.Add(ret, uint256.NewInt(n.Balance))
	}
	return ret
}

// PrvScalars splits the wallet's private scalar into two 128-bit halves,
// the form consumed by the nullifier derivation and the spend circuit.
func (w *Wallet) PrvScalars() ([]byte, []byte) {
	s := w.PrivateKey.Bytes()[32:64]
	return s[:16], s[16:32]
}
