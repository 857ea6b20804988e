package ledger

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/kysee/ztoken/types"
	"github.com/kysee/ztoken/utils"
	"github.com/rs/zerolog"
)

// Merkle tree depth; must match the depth the spend circuit was compiled
// with. depth=32 supports 2^32 leaves.
const RecordMerkleDepth = 32

// Ledger holds the process-wide shared state of the token: the record
// commitment accumulator, the nullifier set, and the public balance map.
// All mutation goes through Commit, which runs as a single critical
// section, so no two transactions' finalize phases ever interleave.
type Ledger struct {
	mu sync.Mutex

	commitmentsTree *merkletree.Tree
	commitmentsRoot []byte
	commitments     []types.RecordCommitment
	nullifiers      []types.RecordNullifier
	balances        *BalanceMap

	// [ephemeral pubkey | ciphertext] payloads for receivers to scan
	encryptedRecords [][]byte

	logger zerolog.Logger
}

func NewLedger() *Ledger {
	return &Ledger{
		commitmentsTree: merkletree.New(utils.DefaultHasher()),
		balances:        NewBalanceMap(),
		logger:          zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Str("module", "ledger").Logger(),
	}
}

// Commit atomically applies one transaction's finalize batch: the
// nullifiers of every consumed record, the commitments of every emitted
// record, and the scheduled public-map effects, in order. If any check
// fails nothing is applied and the error names the first offending step.
func (l *Ledger) Commit(
	nullifiers []types.RecordNullifier,
	commitments []types.RecordCommitment,
	effects []Effect,
) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// nullifier uniqueness, against history and within the batch
	for i, nf := range nullifiers {
		if l.findNullifier(nf) != nil {
			l.logger.Warn().Hex("nullifier", nf).Msg("commit aborted")
			return fmt.Errorf("%w: %x", ErrDoubleSpend, []byte(nf))
		}
		for j := 0; j < i; j++ {
			if bytes.Equal(nullifiers[j], nf) {
				l.logger.Warn().Hex("nullifier", nf).Msg("commit aborted")
				return fmt.Errorf("%w: %x", ErrDoubleSpend, []byte(nf))
			}
		}
	}

	// validate the whole effect batch against a scratch copy first
	scratch := l.balances.clone()
	for _, eff := range effects {
		if err := scratch.apply(eff); err != nil {
			l.logger.Warn().Err(err).Msg("commit aborted")
			return err
		}
	}

	// all checks passed; make everything visible
	l.balances = scratch
	for _, nf := range nullifiers {
		l.nullifiers = append(l.nullifiers, nf)
	}
	for _, cm := range commitments {
		l.addRecordCommitment(cm)
	}

	l.logger.Debug().
		Int("nullifiers", len(nullifiers)).
		Int("commitments", len(commitments)).
		Int("effects", len(effects)).
		Msg("committed")
	return nil
}

// InitBalance seeds a public balance entry at genesis, before any
// transaction runs. It must not be used once transactions are flowing.
func (l *Ledger) InitBalance(account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances.set(account, amount)
}

// GetOrDefaultBalance returns the public balance of account, 0 if absent.
func (l *Ledger) GetOrDefaultBalance(account string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances.GetOrDefault(account)
}

// GetBalance returns the public balance of account, ErrMissingEntry if
// absent.
func (l *Ledger) GetBalance(account string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances.Get(account)
}

func (l *Ledger) addRecordCommitment(commitment types.RecordCommitment) int {
	l.commitments = append(l.commitments, commitment)
	l.commitmentsTree.Push(commitment)
	l.commitmentsRoot = l.commitmentsTree.Root()
	return len(l.commitments) - 1
}

// AddRecordCommitment appends a commitment outside a transaction commit
// (genesis records).
func (l *Ledger) AddRecordCommitment(commitment types.RecordCommitment) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addRecordCommitment(commitment)
}

func (l *Ledger) GetRecordCommitment(idx int) types.RecordCommitment {
	l.mu.Lock()
	defer l.mu.Unlock()
	ret := make([]byte, len(l.commitments[idx]))
	copy(ret, l.commitments[idx])
	return ret
}

func (l *Ledger) GetCommitmentsRoot() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	ret := make([]byte, len(l.commitmentsRoot))
	copy(ret, l.commitmentsRoot)
	return ret
}

// GetRecordCommitmentMerkle builds a membership proof for commitment over
// the current accumulator contents. A commitment that was never added
// yields ErrMissingEntry, not a proof for some other leaf.
func (l *Ledger) GetRecordCommitmentMerkle(commitment types.RecordCommitment) (root []byte, proofSet [][]byte, idx, depth, numLeaves uint64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	var buf bytes.Buffer
	for i, c := range l.commitments {
		if bytes.Equal(c, commitment) {
			idx = uint64(i)
			found = true
		}
		buf.Write(c)
	}
	if !found {
		err = fmt.Errorf("%w: unknown record commitment %x", ErrMissingEntry, []byte(commitment))
		return
	}
	root, proofSet, numLeaves, err = merkletree.BuildReaderProof(
		&buf,
		utils.DefaultHasher(),
		utils.DefaultHasher().Size(),
		idx,
	)
	depth = uint64(RecordMerkleDepth)
	return
}

// VerifyRecordCommitmentProof rebuilds the proof for the leaf at idx and
// checks it against root. The leaf at idx must be the claimed commitment;
// a root match alone says nothing about the argument.
func (l *Ledger) VerifyRecordCommitmentProof(commitment types.RecordCommitment, root []byte, idx uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idx >= uint64(len(l.commitments)) {
		return false
	}
	if !bytes.Equal(l.commitments[idx], commitment) {
		return false
	}

	var buf bytes.Buffer
	for _, c := range l.commitments {
		buf.Write(c)
	}
	vRoot, vProof, vNumLeaves, err := merkletree.BuildReaderProof(
		&buf,
		utils.DefaultHasher(),
		utils.DefaultHasher().Size(),
		idx,
	)
	if err != nil {
		return false
	}
	if !bytes.Equal(vRoot, root) {
		return false
	}
	return merkletree.VerifyProof(utils.DefaultHasher(), vRoot, vProof, idx, vNumLeaves)
}

func (l *Ledger) findNullifier(nullifier types.RecordNullifier) types.RecordNullifier {
	for _, n := range l.nullifiers {
		if bytes.Equal(n, nullifier) {
			ret := make([]byte, len(n))
			copy(ret, n)
			return ret
		}
	}
	return nil
}

// FindNullifier returns a copy of the nullifier if it has been emitted.
func (l *Ledger) FindNullifier(nullifier types.RecordNullifier) types.RecordNullifier {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findNullifier(nullifier)
}

func (l *Ledger) AddEncryptedRecord(enc []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.encryptedRecords = append(l.encryptedRecords, enc)
}

func (l *Ledger) GetEncryptedRecord(idx int) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < len(l.encryptedRecords) {
		return l.encryptedRecords[idx]
	}
	return nil
}
