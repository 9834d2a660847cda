// Package worker implements the background mining workflow for the ledger.
package worker

import (
	"sync"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
)

// Set of default values for the worker.
const (
	DefaultMiningTimeout = time.Minute
	DefaultMaxRetries    = 3
)

// =============================================================================

// Worker manages the POW workflows for the ledger.
type Worker struct {
	ledger        *ledger.Ledger
	wg            sync.WaitGroup
	shut          chan struct{}
	startMining   chan bool
	cancelMining  chan bool
	miningTimeout time.Duration
	maxRetries    uint64
	evHandler     ledger.EventHandler
}

// Config represents the settings for the mining workflow.
type Config struct {
	MiningTimeout time.Duration
	MaxRetries    uint64
	EvHandler     ledger.EventHandler
}

// Run creates a worker, registers the worker with the ledger, and starts up
// all the background processes.
func Run(l *ledger.Ledger, cfg Config) *Worker {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	if cfg.MiningTimeout <= 0 {
		cfg.MiningTimeout = DefaultMiningTimeout
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	w := Worker{
		ledger:        l,
		shut:          make(chan struct{}),
		startMining:   make(chan bool, 1),
		cancelMining:  make(chan bool, 1),
		miningTimeout: cfg.MiningTimeout,
		maxRetries:    cfg.MaxRetries,
		evHandler:     ev,
	}

	// Register this worker with the ledger.
	l.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Pick up transactions that were pending before the worker started.
	if l.PendingCount() > 0 {
		w.SignalStartMining()
	}

	return &w
}

// =============================================================================
// These methods implement the ledger.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
