package ledger

import (
	"context"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
)

// CommitOption overrides a value Commit would otherwise derive.
type CommitOption func(opts *commitOptions)

type commitOptions struct {
	prevHash  string
	timestamp int64
}

// WithPreviousHash sets the previous hash instead of the hash of the latest
// block.
func WithPreviousHash(prevHash string) CommitOption {
	return func(opts *commitOptions) {
		opts.prevHash = prevHash
	}
}

// WithTimestamp sets the block time in Unix milliseconds instead of now.
func WithTimestamp(timestamp int64) CommitOption {
	return func(opts *commitOptions) {
		opts.timestamp = timestamp
	}
}

// Commit builds the next block from the whole pending pool with the
// specified nonce, appends it and clears the pool. The nonce is not checked
// against the difficulty, use Mine or CommitProof for a verified block.
func (l *Ledger) Commit(nonce uint64, options ...CommitOption) (database.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	opts := commitOptions{
		prevHash:  l.tail().Hash(),
		timestamp: l.now().UnixMilli(),
	}
	for _, option := range options {
		option(&opts)
	}

	block := database.NewBlock(uint64(len(l.chain)), l.mempool.Copy(), opts.prevHash, nonce, opts.timestamp)

	if err := l.appendBlock(block); err != nil {
		return database.Block{}, err
	}

	l.mempool.Truncate()

	// A search in flight is now building on a stale tail.
	if l.Worker != nil {
		l.Worker.SignalCancelMining()
	}

	return block, nil
}

// =============================================================================

// Work is a snapshot of the ledger a proof of work search runs against.
// Transactions admitted after the snapshot stay pending for the next block.
type Work struct {
	Candidate  database.Candidate
	Difficulty uint
	poolIDs    []string
}

// Prepare takes the snapshot for the next block: the pending pool, the
// latest block, the difficulty and a reward for the beneficiary when the
// genesis defines one.
func (l *Ledger) Prepare() (Work, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool := l.mempool.Copy()

	ids := make([]string, len(pool))
	for i, tx := range pool {
		ids[i] = tx.ID()
	}

	txs := pool
	if l.beneficiary != "" && l.genesis.MiningReward.IsPositive() {
		reward, err := database.NewReward(l.beneficiary, l.genesis.MiningReward)
		if err != nil {
			return Work{}, err
		}
		txs = append(txs, reward)
	}

	if len(txs) == 0 {
		return Work{}, ErrNoTransactions
	}

	tail := l.tail()
	work := Work{
		Candidate:  database.NewCandidate(tail.Index()+1, l.now().UnixMilli(), txs, tail.Hash()),
		Difficulty: l.difficulty,
		poolIDs:    ids,
	}

	return work, nil
}

// CommitProof seals the snapshotted candidate with the nonce and appends it.
// The chain must not have moved since the snapshot and the nonce must solve
// the block at the snapshotted difficulty. Only the snapshotted transactions
// leave the pool.
func (l *Ledger) CommitProof(work Work, nonce uint64) (database.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tail := l.tail()
	if work.Candidate.PrevHash != tail.Hash() || work.Candidate.Index != tail.Index()+1 {
		return database.Block{}, ErrStaleProof
	}

	pool := l.mempool.Copy()
	if len(pool) < len(work.poolIDs) {
		return database.Block{}, ErrStaleProof
	}
	for i, id := range work.poolIDs {
		if pool[i].ID() != id {
			return database.Block{}, ErrStaleProof
		}
	}

	block := work.Candidate.Seal(nonce)
	if !block.IsSolved(work.Difficulty) {
		return database.Block{}, ErrInvalidProof
	}

	if err := l.appendBlock(block); err != nil {
		return database.Block{}, err
	}

	l.mempool.DrainPrefix(len(work.poolIDs))

	return block, nil
}

// =============================================================================

// MineResult is the outcome of a mining attempt. An interrupted search is
// not an error, the caller may retry with a fresh snapshot.
type MineResult struct {
	Status   pow.Status
	Block    database.Block
	Rounds   int
	Duration time.Duration
}

// Mine snapshots the ledger, searches for a nonce with no lock held and
// commits the solved block.
func (l *Ledger) Mine(ctx context.Context) (MineResult, error) {
	l.evHandler("ledger: Mine: MINING: prepare candidate")

	work, err := l.Prepare()
	if err != nil {
		return MineResult{}, err
	}

	l.evHandler("ledger: Mine: MINING: perform POW: blk[%d]: txs[%d]: difficulty[%d]", work.Candidate.Index, len(work.Candidate.Transactions), work.Difficulty)

	t := time.Now()
	res := l.engine.Run(ctx, work.Candidate.Challenge(), work.Difficulty)
	duration := time.Since(t)

	if res.Status != pow.Found {
		l.evHandler("ledger: Mine: MINING: interrupted: duration[%v]", duration)
		return MineResult{Status: res.Status, Rounds: res.Rounds, Duration: duration}, nil
	}

	l.evHandler("ledger: Mine: MINING: update local state")

	block, err := l.CommitProof(work, res.Nonce)
	if err != nil {
		return MineResult{}, err
	}

	result := MineResult{
		Status:   pow.Found,
		Block:    block,
		Rounds:   res.Rounds,
		Duration: duration,
	}

	return result, nil
}
