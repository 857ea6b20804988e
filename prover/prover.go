package prover

import (
	"bytes"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	ecc_tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/kysee/ztoken/circuit"
	"github.com/kysee/ztoken/types"
)

var gnarkLogger = zerolog.New(os.Stdout).Level(zerolog.WarnLevel).With().Timestamp().Logger()

// BuildShieldedTx spends usedRecord, producing a receiver record of amount
// and a change record of the remainder, and proves the spend. The returned
// records are handed back so the caller can track them locally; only their
// commitments and encrypted payloads appear in the ShieldedTx.
func BuildShieldedTx(
	w *types.Wallet,
	toAddr string, amount uint64,
	usedRecord *types.Record,
	rootHash []byte,
	provingKey plonk.ProvingKey, ccs constraint.ConstraintSystem,
) (*types.ShieldedTx, []*types.Record, error) {

	toPubKey, err := types.Addr2Pub(toAddr)
	if err != nil {
		return nil, nil, err
	}

	newRecord := types.NewRecord(toPubKey, amount)
	encNewRecord, err := types.EncryptSecretRecord(newRecord.ToSecretRecord(), toPubKey)
	if err != nil {
		return nil, nil, err
	}

	changeRecord := types.NewRecord(usedRecord.Owner, usedRecord.Balance-amount)
	encChangeRecord, err := types.EncryptSecretRecord(changeRecord.ToSecretRecord(), usedRecord.Owner)
	if err != nil {
		return nil, nil, err
	}

	prv0, prv1 := w.PrvScalars()

	// these are the public inputs
	spentC := usedRecord.Commitment()
	nullifier := usedRecord.Nullifier(prv0, prv1)
	newC := newRecord.Commitment()
	changeC := changeRecord.Commitment()

	var assignment circuit.TransferCircuit
	assignment.SetCurveId(ecc_tedwards.BN254)
	assignment.FromPrv0, assignment.FromPrv1 = prv0, prv1
	assignment.RecordVer = usedRecord.Version
	assignment.FromPub.Assign(assignment.GetCurveId(), usedRecord.Owner.Bytes())
	assignment.Balance = usedRecord.Balance
	assignment.Salt0 = usedRecord.Salt
	assignment.RecordCommitment = []byte(spentC)
	assignment.Amount = amount
	assignment.ToPub.Assign(assignment.GetCurveId(), toPubKey.Bytes())
	assignment.Salt1 = newRecord.Salt
	assignment.Salt2 = changeRecord.Salt
	assignment.NewRecordCommitment = []byte(newC)
	assignment.ChangeRecordCommitment = []byte(changeC)
	assignment.Nullifier = []byte(nullifier)

	wtn, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}

	proof, err := plonk.Prove(
		ccs,
		provingKey,
		wtn,
		backend.WithSolverOptions(
			solver.WithLogger(gnarkLogger),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	bufProof := bytes.NewBuffer(nil)
	if _, err := proof.WriteTo(bufProof); err != nil {
		return nil, nil, err
	}

	return &types.ShieldedTx{
		ProofBytes:            bufProof.Bytes(),
		MerkleRoot:            rootHash,
		SpentRecordCommitment: spentC,
		Nullifier:             nullifier,
		NewRecordCommitments:  []types.RecordCommitment{newC, changeC},
		EncryptedRecords:      [][]byte{encNewRecord, encChangeRecord},
	}, []*types.Record{newRecord, changeRecord}, nil
}
