// Package mempool maintains the pending transactions of the ledger in
// arrival order.
package mempool

import (
	"sync"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
)

// Mempool represents the transactions waiting to be committed. Arrival order
// is preserved, the next block takes transactions from the front.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Append adds a transaction to the back of the pool and returns the new
// number of transactions.
func (mp *Mempool) Append(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the pool in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Tx, len(mp.pool))
	copy(txs, mp.pool)

	return txs
}

// Drain removes and returns every transaction in the pool.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	txs := mp.pool
	mp.pool = nil

	return txs
}

// DrainPrefix removes the first n transactions, the ones a snapshot of the
// pool taken earlier contained. Transactions appended since stay pending.
func (mp *Mempool) DrainPrefix(n int) []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n > len(mp.pool) {
		n = len(mp.pool)
	}

	txs := make([]database.Tx, n)
	copy(txs, mp.pool[:n])

	rest := make([]database.Tx, len(mp.pool)-n)
	copy(rest, mp.pool[n:])
	mp.pool = rest

	return txs
}

// Replace swaps the content of the pool for the specified transactions.
func (mp *Mempool) Replace(txs []database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make([]database.Tx, len(txs))
	copy(mp.pool, txs)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
