package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	std_tedwards "github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash"
	std_mimc "github.com/consensys/gnark/std/hash/mimc"
	std_eddsa "github.com/consensys/gnark/std/signature/eddsa"

	ecc_tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
)

var (
	E128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

// TransferCircuit proves one private spend: the prover owns the input
// record, the spent amount does not exceed its balance, and the published
// nullifier and output commitments were derived honestly. Every value
// check the executor performs at runtime is re-stated here as a
// constraint, so accepting the proof is accepting the checks.
type TransferCircuit struct {
	curveID ecc_tedwards.ID

	// owner's private scalar, split into two 128-bit halves
	FromPrv0 frontend.Variable
	FromPrv1 frontend.Variable

	RecordVer frontend.Variable `gnark:",public"`

	// input record
	FromPub          std_eddsa.PublicKey
	Balance          frontend.Variable
	Salt0            frontend.Variable
	RecordCommitment frontend.Variable `gnark:",public"`

	// outputs: receiver record and change record
	Amount frontend.Variable
	ToPub  std_eddsa.PublicKey
	Salt1  frontend.Variable
	Salt2  frontend.Variable

	NewRecordCommitment    frontend.Variable `gnark:",public"`
	ChangeRecordCommitment frontend.Variable `gnark:",public"`
	Nullifier              frontend.Variable `gnark:",public"`
}

func (cc *TransferCircuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, cc.curveID)
	if err != nil {
		return err
	}

	hasher, err := std_mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	cc.verifyKeys(api, curve)
	cc.verifySpend(api, &hasher)
	cc.verifyOutputs(api, &hasher)
	return nil
}

// verifyKeys proves knowledge of the private scalar behind FromPub:
// scalar = Prv1 * 2^128 + Prv0, pub = scalar * Base.
func (cc *TransferCircuit) verifyKeys(api frontend.API, curve std_tedwards.Curve) {
	// range check: each half fits in 128 bits
	_ = api.ToBinary(cc.FromPrv0, 128)
	_ = api.ToBinary(cc.FromPrv1, 128)

	base := std_tedwards.Point{}
	base.X = curve.Params().Base[0]
	base.Y = curve.Params().Base[1]

	c1 := curve.ScalarMul(base, cc.FromPrv0)
	c128 := curve.ScalarMul(c1, E128.Bytes())
	c2 := curve.ScalarMul(base, cc.FromPrv1)
	computedPubPt := curve.Add(c128, c2)

	curve.AssertIsOnCurve(computedPubPt)

	api.AssertIsEqual(cc.FromPub.A.X, computedPubPt.X)
	api.AssertIsEqual(cc.FromPub.A.Y, computedPubPt.Y)

	curve.AssertIsOnCurve(cc.ToPub.A)
}

// verifySpend checks amount sufficiency and recomputes the input record's
// commitment and nullifier.
func (cc *TransferCircuit) verifySpend(api frontend.API, hasher hash.FieldHasher) {
	api.AssertIsLessOrEqual(cc.Amount, cc.Balance)

	hasher.Reset()
	hasher.Write(
		cc.RecordVer,
		cc.FromPub.A.X,
		cc.FromPub.A.Y,
		cc.Balance,
		cc.Salt0,
	)
	api.AssertIsEqual(cc.RecordCommitment, hasher.Sum())

	// nk = H(prv0, prv1); nf = H(nk, commitment)
	hasher.Reset()
	hasher.Write(cc.FromPrv0, cc.FromPrv1)
	nk := hasher.Sum()

	hasher.Reset()
	hasher.Write(nk, cc.RecordCommitment)
	api.AssertIsEqual(cc.Nullifier, hasher.Sum())
}

// verifyOutputs recomputes the receiver and change record commitments.
// The change record is always emitted, even for a zero remainder, so the
// input balance is conserved: balance == amount + change.
func (cc *TransferCircuit) verifyOutputs(api frontend.API, hasher hash.FieldHasher) {
	hasher.Reset()
	hasher.Write(cc.RecordVer, cc.ToPub.A.X, cc.ToPub.A.Y, cc.Amount, cc.Salt1)
	api.AssertIsEqual(cc.NewRecordCommitment, hasher.Sum())

	change := api.Sub(cc.Balance, cc.Amount)

	hasher.Reset()
	hasher.Write(cc.RecordVer, cc.FromPub.A.X, cc.FromPub.A.Y, change, cc.Salt2)
	api.AssertIsEqual(cc.ChangeRecordCommitment, hasher.Sum())
}

func (cc *TransferCircuit) SetCurveId(curveID ecc_tedwards.ID) {
	cc.curveID = curveID
}

func (cc *TransferCircuit) GetCurveId() ecc_tedwards.ID {
	return cc.curveID
}
