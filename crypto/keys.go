package crypto

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	jubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark-crypto/signature"
	"golang.org/x/crypto/blake2s"
)

// NewKey generates an eddsa keypair on the BN254 twisted Edwards curve.
// The same curve is used by the spend circuit, so a wallet key can be
// proven in-circuit without conversion.
func NewKey() (signature.Signer, error) {
	return jubjub.GenerateKey(crand.Reader)
}

func NewPub() signature.PublicKey {
	return new(jubjub.PublicKey)
}

// ECDHEComputeSharedSecret computes privateKey * otherPublicKey and hashes
// the X coordinate with BLAKE2s to produce a 32-byte shared secret.
func ECDHEComputeSharedSecret(privateKey *jubjub.PrivateKey, otherPublicKey *jubjub.PublicKey) ([]byte, error) {
	if !otherPublicKey.A.IsOnCurve() {
		return nil, errors.New("other public key is not on curve")
	}

	var sharedSecret tedwards.PointAffine

	scalarBytes := privateKey.Bytes()
	scalarBigInt := new(big.Int).SetBytes(scalarBytes[32:64])
	sharedSecret.ScalarMultiplication(&otherPublicKey.A, scalarBigInt)

	if !sharedSecret.IsOnCurve() {
		return nil, errors.New("computed shared secret is not on curve")
	}

	hasher, err := blake2s.New256(nil)
	if err != nil {
		return nil, err
	}
	ax := sharedSecret.X.Bytes()
	hasher.Write(ax[:])
	return hasher.Sum(nil), nil
}

// SaplingKDF derives a key stream of outputLen bytes from a 32-byte shared
// secret using BLAKE2s, following the PRF^expand construction of the Zcash
// Sapling specification (similar to HKDF-Expand, RFC 5869).
func SaplingKDF(sharedSecret []byte, outputLen int) ([]byte, error) {
	if len(sharedSecret) != 32 {
		return nil, fmt.Errorf("sharedSecret must be 32 bytes")
	}

	personalization := []byte("Zcash_ExpandSeed")

	var keyStream []byte
	var counter byte = 1 // the counter must start at 1
	for len(keyStream) < outputLen {
		h, err := blake2s.New256(personalization)
		if err != nil {
			return nil, fmt.Errorf("failed to create blake2s hash: %w", err)
		}
		h.Write(sharedSecret)
		h.Write([]byte{counter})

		keyStream = append(keyStream, h.Sum(nil)...)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}

	return keyStream[:outputLen], nil
}
