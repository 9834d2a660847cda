package ledger

import (
	"fmt"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/difficulty"
)

// Snapshot is the full state of the ledger in an ordered form an external
// store can persist and restore.
type Snapshot struct {
	Difficulty uint                 `json:"difficulty"`
	Chain      []database.BlockData `json:"chain"`
	Pending    []database.Tx        `json:"pending"`
}

// Export returns a consistent copy of the full ledger state.
func (l *Ledger) Export() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := make([]database.BlockData, len(l.chain))
	for i, block := range l.chain {
		chain[i] = block.Data()
	}

	return Snapshot{
		Difficulty: l.difficulty,
		Chain:      chain,
		Pending:    l.mempool.Copy(),
	}
}

// Import validates the snapshot and replaces the ledger state with it. Block
// hashes, linkage and the pending transactions are checked before anything
// is replaced. If storage can't take the new chain the previous blocks are
// written back and the ledger keeps its state.
func (l *Ledger) Import(snap Snapshot) error {
	blocks := make([]database.Block, len(snap.Chain))
	for i, blockData := range snap.Chain {
		block, err := database.ToBlock(blockData)
		if err != nil {
			return err
		}
		blocks[i] = block
	}

	if err := verifyBlocks(blocks, l.evHandler); err != nil {
		return err
	}

	for i, tx := range snap.Pending {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("pending tx %d: %w", i, &RejectError{TxID: tx.ID(), Err: err})
		}
		if tx.Kind == database.Reward {
			continue
		}
		if !l.verify(string(tx.From), tx.Signature, database.EncodeForSigning(tx)) {
			return fmt.Errorf("pending tx %d: %w", i, &RejectError{TxID: tx.ID(), Err: ErrInvalidSignature})
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evHandler("ledger: Import: replace storage: blocks[%d]", len(blocks))

	if err := l.rewrite(blocks); err != nil {
		l.evHandler("ledger: Import: ERROR: %s: restoring blocks[%d]", err, len(l.chain))

		if rerr := l.rewrite(l.chain); rerr != nil {
			return fmt.Errorf("%w: restore: %v", err, rerr)
		}
		return err
	}

	// Storage only holds blocks. After a restart the difficulty is replayed
	// from the block timestamps and may differ from the imported value.
	l.chain = blocks
	l.difficulty = difficulty.Clamp(snap.Difficulty)
	l.mempool.Replace(snap.Pending)

	if l.Worker != nil {
		l.Worker.SignalCancelMining()
	}

	l.evHandler("viewer: imported: blocks[%d]: pending[%d]: difficulty[%d]", len(blocks), len(snap.Pending), l.difficulty)

	return nil
}

// rewrite replaces the contents of storage with the specified blocks.
func (l *Ledger) rewrite(blocks []database.Block) error {
	if err := l.storage.Reset(); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	for _, block := range blocks {
		if err := l.storage.Write(block.Data()); err != nil {
			return fmt.Errorf("write block %d: %w", block.Index(), err)
		}
	}

	return nil
}
