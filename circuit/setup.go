package circuit

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	ecc_tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"

	"github.com/kysee/ztoken/types"
)

// Compile builds the transfer circuit and runs the PLONK setup.
func Compile() (constraint.ConstraintSystem, plonk.ProvingKey, plonk.VerifyingKey) {
	var cc TransferCircuit
	cc.curveID = ecc_tedwards.BN254

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &cc)
	if err != nil {
		panic(err)
	}

	// todo: Use safe SRS generation
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		panic(err)
	}

	provingKey, verifyingKey, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		panic(err)
	}

	return ccs, provingKey, verifyingKey
}

// VerifyTransferProof checks a spend proof against its public inputs.
func VerifyTransferProof(
	bzProof []byte,
	recordCommitment types.RecordCommitment,
	nullifier types.RecordNullifier,
	newCommitments []types.RecordCommitment,
	verifyingKey plonk.VerifyingKey,
) error {
	if len(newCommitments) != 2 {
		return fmt.Errorf("expected 2 output commitments, got %d", len(newCommitments))
	}

	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewBuffer(bzProof)); err != nil {
		return err
	}

	tmpAssignment := TransferCircuit{
		RecordVer:              types.RecordVersion1,
		RecordCommitment:       []byte(recordCommitment),
		NewRecordCommitment:    []byte(newCommitments[0]),
		ChangeRecordCommitment: []byte(newCommitments[1]),
		Nullifier:              []byte(nullifier),
	}
	pubWtn, err := frontend.NewWitness(&tmpAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	return plonk.Verify(proof, verifyingKey, pubWtn)
}
