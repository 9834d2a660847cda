package ledger

import (
	"github.com/deadsgold/powledger/foundation/blockchain/database"
)

// VerifyProof reports whether the recomputed block hash equals the stored
// hash and has difficulty leading zeros.
func (l *Ledger) VerifyProof(block database.Block, difficulty uint) bool {
	return block.IsSolved(difficulty)
}

// VerifyChain recomputes every block hash and checks the previous hash
// linkage. A failure means the chain is corrupt and is reported as a
// ChainIntegrityError.
func (l *Ledger) VerifyChain() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return verifyBlocks(l.chain, l.evHandler)
}

// verifyBlocks validates the genesis block and the linkage of every block
// that follows it.
func verifyBlocks(blocks []database.Block, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return &database.ChainIntegrityError{Index: 0, Reason: "chain is empty"}
	}

	genesis := blocks[0]
	if !genesis.IsGenesis() {
		return &database.ChainIntegrityError{Index: genesis.Index(), Reason: "first block is not a genesis block"}
	}

	if hash := genesis.ComputeHash(); hash != genesis.Hash() {
		return &database.ChainIntegrityError{Index: 0, Reason: "genesis hash mismatch"}
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateNext(blocks[i-1], evHandler); err != nil {
			return err
		}
	}

	return nil
}
