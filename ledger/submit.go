package ledger

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark/backend/plonk"

	"github.com/kysee/ztoken/circuit"
	"github.com/kysee/ztoken/types"
)

// SubmitShieldedTx is the orderer-facing path for a proof-carrying private
// transfer: verify the spend proof against the ledger's own view of the
// public inputs, then commit the nullifier, the output commitments, and
// the encrypted payloads atomically.
func (l *Ledger) SubmitShieldedTx(zktx *types.ShieldedTx, verifyingKey plonk.VerifyingKey) error {
	l.mu.Lock()

	if l.findNullifier(zktx.Nullifier) != nil {
		l.mu.Unlock()
		return fmt.Errorf("%w: %x", ErrDoubleSpend, []byte(zktx.Nullifier))
	}

	// the proof was built against a specific accumulator state; a root the
	// ledger does not currently hold means commitments landed in between
	// and the submitter must rebuild
	if !bytes.Equal(zktx.MerkleRoot, l.commitmentsRoot) {
		l.mu.Unlock()
		return fmt.Errorf("stale merkle root: got %x, ledger at %x", zktx.MerkleRoot, l.commitmentsRoot)
	}

	// the spent commitment must be an accumulator member; the ledger's own
	// list is authoritative, not whatever root the submitter claims
	member := false
	for _, c := range l.commitments {
		if bytes.Equal(c, zktx.SpentRecordCommitment) {
			member = true
			break
		}
	}
	l.mu.Unlock()
	if !member {
		return fmt.Errorf("%w: unknown record commitment %x", ErrMissingEntry, []byte(zktx.SpentRecordCommitment))
	}

	if err := circuit.VerifyTransferProof(
		zktx.ProofBytes,
		zktx.SpentRecordCommitment,
		zktx.Nullifier,
		zktx.NewRecordCommitments,
		verifyingKey,
	); err != nil {
		return fmt.Errorf("spend proof rejected: %w", err)
	}

	if err := l.Commit(
		[]types.RecordNullifier{zktx.Nullifier},
		zktx.NewRecordCommitments,
		nil,
	); err != nil {
		return err
	}

	for _, enc := range zktx.EncryptedRecords {
		l.AddEncryptedRecord(enc)
	}
	return nil
}
