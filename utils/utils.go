package utils

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	_ "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/twistededwards"
	gnark_hash "github.com/consensys/gnark-crypto/hash"
)

var (
	CURVEID = twistededwards.BN254
)

func DefaultHasher() hash.Hash {
	return MiMCHasher()
}

func DefaultHashSum(ins ...[]byte) []byte {
	return MiMCHash(ins...)
}

func MiMCHasher() hash.Hash {
	return gnark_hash.MIMC_BN254.New()
}

// MiMCHash hashes the inputs as a sequence of BN254 field elements.
// Each input is split into 32-byte chunks; a short tail chunk is
// left-padded to 32 bytes. Chunks may exceed the Fr modulus and are
// reduced to canonical form before being written, since the MiMC
// hasher only accepts canonical field elements.
func MiMCHash(ins ...[]byte) []byte {
	hasher := MiMCHasher()

	blockSize := hasher.Size()

	hasher.Reset()
	for _, in := range ins {
		for i := 0; i < len(in); i += blockSize {
			end := i + blockSize
			if end > len(in) {
				end = len(in)
			}
			chunk := in[i:end]

			// reduction also left-pads short chunks
			var elem fr.Element
			elem.SetBytes(chunk)

			bz := elem.Marshal()
			if _, err := hasher.Write(bz); err != nil {
				panic(err)
			}
		}
	}
	return hasher.Sum(nil)
}

// Bytes32 left-pads bz to a 32-byte slice. It panics if bz is longer
// than 32 bytes.
func Bytes32(bz []byte) []byte {
	if len(bz) > 32 {
		panic("input longer than 32 bytes")
	}
	ret := make([]byte, 32)
	copy(ret[32-len(bz):], bz)
	return ret
}
