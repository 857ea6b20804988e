package types

import (
	"fmt"

	jubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark-crypto/signature"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/ztoken/crypto"
)

// SecretRecord is the plaintext a sender discloses to the receiver of a
// record: everything except the owner key, which the receiver already has.
// It is analogous to the Note Plaintext structure in Zcash Sapling.
type SecretRecord struct {
	// Version indicates the format version of the record.
	Version byte

	// Balance is the token amount carried by the record.
	Balance uint64

	// Salt is the random value used to generate the record commitment;
	// it doubles as the nullifier seed.
	Salt []byte

	// Memo is an arbitrary message field.
	Memo []byte
}

// Bytes returns the RLP-encoded representation of the SecretRecord.
// It panics if the encoding fails.
func (sr *SecretRecord) Bytes() []byte {
	b, err := rlp.EncodeToBytes(sr)
	if err != nil {
		// A Bytes() method does not return an error; treat this as a
		// critical internal error.
		panic(fmt.Sprintf("failed to RLP encode SecretRecord: %v", err))
	}
	return b
}

// DecodeSecretRecord decodes an RLP-encoded SecretRecord.
func DecodeSecretRecord(bz []byte) (*SecretRecord, error) {
	sr := &SecretRecord{}
	if err := rlp.DecodeBytes(bz, sr); err != nil {
		return nil, fmt.Errorf("failed to RLP decode SecretRecord: %w", err)
	}
	return sr, nil
}

// ToRecord rebuilds the full record for the given owner key.
func (sr *SecretRecord) ToRecord(owner signature.PublicKey) *Record {
	return &Record{
		Version: sr.Version,
		Owner:   owner,
		Balance: sr.Balance,
		Salt:    sr.Salt,
	}
}

// EncryptSecretRecord encrypts the SecretRecord for the holder of toPub.
// An ephemeral keypair is generated for the ECDHE exchange; the returned
// bytes are [ephemeral pubkey | ciphertext], with the ephemeral pubkey
// bound as AEAD associated data.
func EncryptSecretRecord(sr *SecretRecord, toPub signature.PublicKey) ([]byte, error) {
	ephKey, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	ephPrv := ephKey.(*jubjub.PrivateKey)
	ephPubBytes := ephKey.Public().Bytes()

	sharedSecret, err := crypto.ECDHEComputeSharedSecret(ephPrv, toPub.(*jubjub.PublicKey))
	if err != nil {
		return nil, err
	}
	keyStream, err := crypto.SaplingKDF(sharedSecret, 44)
	if err != nil {
		return nil, err
	}

	ciphertext, err := crypto.EncryptRecord(keyStream[:32], keyStream[32:44], sr.Bytes(), ephPubBytes)
	if err != nil {
		return nil, err
	}
	return append(ephPubBytes, ciphertext...), nil
}

// DecryptSecretRecord reverses EncryptSecretRecord using the receiver's
// private key.
func DecryptSecretRecord(enc []byte, prvKey signature.Signer) (*SecretRecord, error) {
	if len(enc) <= 32 {
		return nil, fmt.Errorf("encrypted record too short: %d bytes", len(enc))
	}
	ephPubBytes, ciphertext := enc[:32], enc[32:]

	ephPub := crypto.NewPub()
	if _, err := ephPub.SetBytes(ephPubBytes); err != nil {
		return nil, err
	}

	sharedSecret, err := crypto.ECDHEComputeSharedSecret(prvKey.(*jubjub.PrivateKey), ephPub.(*jubjub.PublicKey))
	if err != nil {
		return nil, err
	}
	keyStream, err := crypto.SaplingKDF(sharedSecret, 44)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.DecryptRecord(keyStream[:32], keyStream[32:44], ciphertext, ephPubBytes)
	if err != nil {
		return nil, err
	}
	return DecodeSecretRecord(plaintext)
}
