// Package ledger is the core API for the blockchain and implements all the
// business rules and processing: admission of transactions, commitment of
// blocks, proof of work mining and difficulty recalibration.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/difficulty"
	"github.com/deadsgold/powledger/foundation/blockchain/genesis"
	"github.com/deadsgold/powledger/foundation/blockchain/mempool"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/deadsgold/powledger/foundation/blockchain/storage/memory"
	"github.com/deadsgold/powledger/foundation/blockchain/validator"
)

// Set of errors returned by the ledger.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrRejectedByPolicy = errors.New("rejected by policy")
	ErrNoTransactions   = errors.New("no transactions to mine")
	ErrStaleProof       = errors.New("chain tail changed during the search")
	ErrInvalidProof     = errors.New("proof does not solve the block")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// VerifyFunc checks a signature was produced over data by the owner of the
// address.
type VerifyFunc func(address string, sig []byte, data []byte) bool

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis     genesis.Genesis
	Storage     database.Serializer
	Policy      validator.Policy
	Verifier    VerifyFunc
	Engine      *pow.Engine
	Controller  difficulty.Controller
	Beneficiary database.AccountID
	EvHandler   EventHandler
	Now         func() time.Time
}

// Ledger manages the chain and the pending pool. Mutations are serialized
// through the write lock, queries share the read lock and return copies.
type Ledger struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	chain       []database.Block
	difficulty  uint
	mempool     *mempool.Mempool
	storage     database.Serializer
	policy      validator.Policy
	verify      VerifyFunc
	engine      *pow.Engine
	controller  difficulty.Controller
	beneficiary database.AccountID
	evHandler   EventHandler
	now         func() time.Time

	// The Worker is not set by New. The call to worker.Run will assign itself
	// and start everything up and running for the node.
	Worker Worker
}

// New constructs a ledger. When the storage already holds a chain it is
// loaded and validated, otherwise a genesis block is created and written.
func New(cfg Config) (*Ledger, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis
	if gen.Difficulty == 0 {
		gen.Difficulty = genesis.DefaultDifficulty
	}
	if gen.AdjustmentInterval == 0 {
		gen.AdjustmentInterval = genesis.DefaultAdjustmentInterval
	}
	if gen.TargetBlockTime == 0 {
		gen.TargetBlockTime = genesis.DefaultTargetBlockTime
	}

	controller := cfg.Controller
	if controller.Interval == 0 {
		controller = difficulty.New(gen.AdjustmentInterval, gen.TargetDuration())
	}

	engine := cfg.Engine
	if engine == nil {
		engine = pow.New(pow.WithEvHandler(ev))
	}

	var policy validator.Policy = validator.AcceptAll{}
	if cfg.Policy != nil {
		policy = cfg.Policy
	}

	verify := cfg.Verifier
	if verify == nil {
		verify = signature.Verify
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	strg := cfg.Storage
	if strg == nil {
		strg, _ = memory.New()
	}

	l := Ledger{
		genesis:     gen,
		difficulty:  difficulty.Clamp(gen.Difficulty),
		mempool:     mempool.New(),
		storage:     strg,
		policy:      policy,
		verify:      verify,
		engine:      engine,
		controller:  controller,
		beneficiary: cfg.Beneficiary,
		evHandler:   ev,
		now:         now,
	}

	blocks, err := l.load()
	if err != nil {
		return nil, err
	}

	switch len(blocks) {
	case 0:
		ts := gen.Timestamp()
		if ts == 0 {
			ts = now().UnixMilli()
		}

		block := database.NewBlock(0, nil, database.GenesisPrevHash, 0, ts)
		if err := strg.Write(block.Data()); err != nil {
			return nil, fmt.Errorf("write genesis: %w", err)
		}

		ev("ledger: New: genesis: created: hash[%s]", block.Hash())
		l.chain = []database.Block{block}

	default:
		l.chain = blocks
		l.difficulty = l.replayDifficulty(blocks)
		ev("ledger: New: loaded: blocks[%d]: difficulty[%d]", len(blocks), l.difficulty)
	}

	return &l, nil
}

// Shutdown cleanly brings the ledger down.
func (l *Ledger) Shutdown() error {
	l.evHandler("ledger: shutdown: started")
	defer l.evHandler("ledger: shutdown: completed")

	// Make sure the storage is properly closed.
	defer func() {
		l.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if l.Worker != nil {
		l.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// load reads every block from storage, verifying hashes and linkage.
func (l *Ledger) load() ([]database.Block, error) {
	var blocks []database.Block

	iter := database.NewIterator(l.storage)
	for {
		block, err := iter.Next()
		if iter.Done() {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}

		if len(blocks) == 0 {
			if !block.IsGenesis() {
				return nil, &database.ChainIntegrityError{Index: block.Index(), Reason: "first stored block is not a genesis block"}
			}
		} else if err := block.ValidateNext(blocks[len(blocks)-1], l.evHandler); err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}

// replayDifficulty recomputes the difficulty by applying every adjustment
// the chain went through since genesis.
func (l *Ledger) replayDifficulty(blocks []database.Block) uint {
	d := difficulty.Clamp(l.genesis.Difficulty)

	timestamps := make([]int64, 0, len(blocks))
	for _, block := range blocks {
		timestamps = append(timestamps, block.Timestamp())
		if l.controller.Due(block.Index()) {
			d = l.controller.Adjust(d, timestamps)
		}
	}

	return d
}

// appendBlock writes the block to storage, adds it to the chain and
// recalibrates the difficulty when due. The write lock must be held.
func (l *Ledger) appendBlock(block database.Block) error {
	l.evHandler("ledger: appendBlock: write to storage: blk[%d]", block.Index())

	if err := l.storage.Write(block.Data()); err != nil {
		return fmt.Errorf("write block %d: %w", block.Index(), err)
	}

	l.chain = append(l.chain, block)
	l.evHandler("viewer: block[%d]: hash[%s]: prev[%s]: txs[%d]", block.Index(), block.Hash(), block.PrevHash(), len(block.Transactions()))

	if l.controller.Due(block.Index()) {
		timestamps := make([]int64, len(l.chain))
		for i, b := range l.chain {
			timestamps[i] = b.Timestamp()
		}

		prev := l.difficulty
		l.difficulty = l.controller.Adjust(l.difficulty, timestamps)
		l.evHandler("ledger: appendBlock: difficulty adjusted: blk[%d]: from[%d]: to[%d]", block.Index(), prev, l.difficulty)
	}

	return nil
}

// tail returns the latest block. A lock must be held.
func (l *Ledger) tail() database.Block {
	return l.chain[len(l.chain)-1]
}
