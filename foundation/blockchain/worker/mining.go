package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
)

// errInterrupted marks a search that hit the mining timeout and should be
// retried with a fresh snapshot.
var errInterrupted = errors.New("mining interrupted")

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation takes the pending transactions and mines a new block.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Make sure there are transactions in the pool.
	length := w.ledger.PendingCount()
	if length == 0 {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		length := w.ledger.PendingCount()
		if length > 0 && !w.isShutdown() {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			w.SignalStartMining()
		}
	}()

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.maxRetries), ctx)

		if err := backoff.Retry(func() error { return w.mine(ctx) }, b); err != nil {
			w.evHandler("worker: runMiningOperation: MINING: giving up: %s", err)
		}
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}

// mine performs one attempt. Returning an error asks for a retry with a
// fresh snapshot.
func (w *Worker) mine(ctx context.Context) error {
	mctx, cancel := context.WithTimeout(ctx, w.miningTimeout)
	defer cancel()

	t := time.Now()
	res, err := w.ledger.Mine(mctx)
	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", time.Since(t))

	switch {
	case errors.Is(err, ledger.ErrNoTransactions):
		w.evHandler("worker: runMiningOperation: MINING: WARNING: no transactions to mine")
		return nil

	case errors.Is(err, ledger.ErrStaleProof):
		w.evHandler("worker: runMiningOperation: MINING: WARNING: chain moved, retrying")
		return err

	case err != nil:
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return nil

	case res.Status == pow.Interrupted && ctx.Err() != nil:
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		return nil

	case res.Status == pow.Interrupted:
		w.evHandler("worker: runMiningOperation: MINING: timeout after rounds[%d], retrying", res.Rounds)
		return errInterrupted
	}

	w.evHandler("viewer: block[%d] mined: hash[%s]: rounds[%d]", res.Block.Index(), res.Block.Hash(), res.Rounds)

	return nil
}
