package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/pow"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// ChainIntegrityError is returned when a block's stored hash doesn't match
// the hash recomputed from its fields or when the previous hash linkage is
// broken. The chain is considered corrupt and is never repaired.
type ChainIntegrityError struct {
	Index  uint64
	Reason string
}

// Error implements the error interface.
func (cie *ChainIntegrityError) Error() string {
	return fmt.Sprintf("chain integrity: block %d: %s", cie.Index, cie.Reason)
}

// IsChainIntegrityError checks if an error of type ChainIntegrityError exists.
func IsChainIntegrityError(err error) bool {
	var cie *ChainIntegrityError
	return errors.As(err, &cie)
}

// =============================================================================

// Block represents a group of transactions batched together. The hash is
// derived from the other fields when the block is constructed.
type Block struct {
	index     uint64
	timestamp int64
	txs       []Tx
	prevHash  string
	nonce     uint64
	hash      string
}

// NewBlock constructs a block and computes its hash. A zero timestamp means
// now, in Unix milliseconds.
func NewBlock(index uint64, txs []Tx, prevHash string, nonce uint64, timestamp int64) Block {
	return NewCandidate(index, timestamp, txs, prevHash).Seal(nonce)
}

// Index returns the position of the block in the chain.
func (b Block) Index() uint64 { return b.index }

// Timestamp returns the time the block was produced in Unix milliseconds.
func (b Block) Timestamp() int64 { return b.timestamp }

// PrevHash returns the hash of the parent block.
func (b Block) PrevHash() string { return b.prevHash }

// Nonce returns the value that solved the proof of work.
func (b Block) Nonce() uint64 { return b.nonce }

// Hash returns the hash computed when the block was constructed.
func (b Block) Hash() string { return b.hash }

// Transactions returns a copy of the transactions in the block.
func (b Block) Transactions() []Tx {
	txs := make([]Tx, len(b.txs))
	copy(txs, b.txs)
	return txs
}

// ComputeHash derives the hash from the current field values.
func (b Block) ComputeHash() string {
	ch := NewChallenge(b.index, b.timestamp, b.txs, b.prevHash)
	return pow.Hex(ch.Hash(b.nonce))
}

// IsSolved reports whether the recomputed hash equals the stored hash and
// has difficulty leading zeros.
func (b Block) IsSolved(difficulty uint) bool {
	hash := b.ComputeHash()
	return hash == b.hash && pow.IsHashSolved(difficulty, hash)
}

// IsGenesis reports whether the block has the shape of a genesis block.
func (b Block) IsGenesis() bool {
	return b.index == 0 && len(b.txs) == 0 && b.prevHash == GenesisPrevHash && b.nonce == 0
}

// ValidateNext takes a block and validates it can follow the parent block.
func (b Block) ValidateNext(parent Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateNext: validate: blk[%d]: check: block hash matches fields", b.index)

	if hash := b.ComputeHash(); hash != b.hash {
		return &ChainIntegrityError{Index: b.index, Reason: fmt.Sprintf("hash mismatch, got %s, exp %s", hash, b.hash)}
	}

	evHandler("database: ValidateNext: validate: blk[%d]: check: block number is the next number", b.index)

	if b.index != parent.index+1 {
		return &ChainIntegrityError{Index: b.index, Reason: fmt.Sprintf("not the next number, got %d, exp %d", b.index, parent.index+1)}
	}

	evHandler("database: ValidateNext: validate: blk[%d]: check: previous hash does match parent block", b.index)

	if parentHash := parent.ComputeHash(); b.prevHash != parentHash {
		return &ChainIntegrityError{Index: b.index, Reason: fmt.Sprintf("previous hash doesn't match parent, got %s, exp %s", b.prevHash, parentHash)}
	}

	return nil
}

// Data returns the form of the block used for storage and transport.
func (b Block) Data() BlockData {
	return BlockData{
		Hash:         b.hash,
		Index:        b.index,
		Nonce:        b.nonce,
		PrevHash:     b.prevHash,
		Timestamp:    b.timestamp,
		Transactions: b.Transactions(),
	}
}

// =============================================================================

// Candidate represents a block that is waiting for a nonce.
type Candidate struct {
	Index        uint64
	Timestamp    int64
	Transactions []Tx
	PrevHash     string
}

// NewCandidate constructs a candidate block. A zero timestamp means now, in
// Unix milliseconds.
func NewCandidate(index uint64, timestamp int64, txs []Tx, prevHash string) Candidate {
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	cp := make([]Tx, len(txs))
	copy(cp, txs)

	return Candidate{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: cp,
		PrevHash:     prevHash,
	}
}

// Challenge returns the proof of work challenge for the candidate.
func (c Candidate) Challenge() pow.Challenge {
	return NewChallenge(c.Index, c.Timestamp, c.Transactions, c.PrevHash)
}

// Seal produces the block for the specified nonce.
func (c Candidate) Seal(nonce uint64) Block {
	txs := make([]Tx, len(c.Transactions))
	copy(txs, c.Transactions)

	b := Block{
		index:     c.Index,
		timestamp: c.Timestamp,
		txs:       txs,
		prevHash:  c.PrevHash,
		nonce:     nonce,
	}
	b.hash = b.ComputeHash()

	return b
}

// =============================================================================

// BlockData represents what is written to storage and sent over the wire.
type BlockData struct {
	Hash         string `json:"hash"`
	Index        uint64 `json:"index"`
	Nonce        uint64 `json:"nonce"`
	PrevHash     string `json:"previous_hash"`
	Timestamp    int64  `json:"timestamp"`
	Transactions []Tx   `json:"transactions"`
}

// ToBlock converts the storage form back into a block. The hash is
// recomputed and must match the stored hash.
func ToBlock(blockData BlockData) (Block, error) {
	txs := blockData.Transactions
	if txs == nil {
		txs = []Tx{}
	}

	b := Block{
		index:     blockData.Index,
		timestamp: blockData.Timestamp,
		txs:       txs,
		prevHash:  blockData.PrevHash,
		nonce:     blockData.Nonce,
		hash:      blockData.Hash,
	}

	if hash := b.ComputeHash(); hash != blockData.Hash {
		return Block{}, &ChainIntegrityError{Index: blockData.Index, Reason: fmt.Sprintf("stored hash %s, computed %s", blockData.Hash, hash)}
	}

	return b, nil
}
