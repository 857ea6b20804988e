package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	ecc_tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/kysee/ztoken/types"
)

// buildAssignment assembles a witness for spending `used` (owned by w),
// sending amount to `to`.
func buildAssignment(w *types.Wallet, to *types.Wallet, amount uint64, used *types.Record) (*TransferCircuit, *types.Record, *types.Record) {
	newRec := types.NewRecord(to.PrivateKey.Public(), amount)
	changeRec := types.NewRecord(w.PrivateKey.Public(), used.Balance-amount)

	prv0, prv1 := w.PrvScalars()

	var a TransferCircuit
	a.SetCurveId(ecc_tedwards.BN254)
	a.FromPrv0, a.FromPrv1 = prv0, prv1
	a.RecordVer = used.Version
	a.FromPub.Assign(a.GetCurveId(), used.Owner.Bytes())
	a.Balance = used.Balance
	a.Salt0 = used.Salt
	a.RecordCommitment = []byte(used.Commitment())
	a.Amount = amount
	a.ToPub.Assign(a.GetCurveId(), to.PrivateKey.Public().Bytes())
	a.Salt1 = newRec.Salt
	a.Salt2 = changeRec.Salt
	a.NewRecordCommitment = []byte(newRec.Commitment())
	a.ChangeRecordCommitment = []byte(changeRec.Commitment())
	a.Nullifier = []byte(used.Nullifier(prv0, prv1))

	return &a, newRec, changeRec
}

func circuitShell() *TransferCircuit {
	var cc TransferCircuit
	cc.curveID = ecc_tedwards.BN254
	return &cc
}

func TestTransferCircuitSolved(t *testing.T) {
	sender := types.NewWallet()
	receiver := types.NewWallet()

	used := types.NewRecord(sender.PrivateKey.Public(), 100)
	assignment, _, _ := buildAssignment(sender, receiver, 40, used)

	err := test.IsSolved(circuitShell(), assignment, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestTransferCircuitRejectsInconsistentAmount(t *testing.T) {
	sender := types.NewWallet()
	receiver := types.NewWallet()

	used := types.NewRecord(sender.PrivateKey.Public(), 100)
	assignment, _, _ := buildAssignment(sender, receiver, 40, used)

	// claim a different amount than the output records commit to; the
	// commitment recomputation must fail
	assignment.Amount = uint64(90)

	err := test.IsSolved(circuitShell(), assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestTransferCircuitRejectsWrongKey(t *testing.T) {
	sender := types.NewWallet()
	receiver := types.NewWallet()
	thief := types.NewWallet()

	used := types.NewRecord(sender.PrivateKey.Public(), 100)
	assignment, _, _ := buildAssignment(sender, receiver, 40, used)

	// substitute someone else's scalar halves; the derived public key no
	// longer matches the record owner
	p0, p1 := thief.PrvScalars()
	assignment.FromPrv0 = frontend.Variable(p0)
	assignment.FromPrv1 = frontend.Variable(p1)

	err := test.IsSolved(circuitShell(), assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}
