package types

// ShieldedTx is the wire form of a private transfer handed to the ledger
// orderer: the spend proof plus its public inputs, and the encrypted
// record payloads for the receiver and the change owner.
type ShieldedTx struct {
	ProofBytes            []byte
	MerkleRoot            []byte
	SpentRecordCommitment RecordCommitment
	Nullifier             RecordNullifier
	NewRecordCommitments  []RecordCommitment
	EncryptedRecords      [][]byte // [ephemeral pubkey | ciphertext]
}
