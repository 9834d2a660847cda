package ledger

import (
	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/genesis"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/blockchain/validator"
	"github.com/shopspring/decimal"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// BalanceOf scans every committed transaction, crediting the recipient and
// debiting the sender. Balances may go negative, no funds check is made.
func (l *Ledger) BalanceOf(accountID database.AccountID) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balance := decimal.Zero
	for _, block := range l.chain {
		for _, tx := range block.Transactions() {
			if tx.To == accountID {
				balance = balance.Add(tx.Amount)
			}
			if tx.Kind == database.Transfer && tx.From == accountID {
				balance = balance.Sub(tx.Amount)
			}
		}
	}

	return balance
}

// Balances returns the balance of every account that appears in the chain.
func (l *Ledger) Balances() map[database.AccountID]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balances := make(map[database.AccountID]decimal.Decimal)
	for _, block := range l.chain {
		for _, tx := range block.Transactions() {
			balances[tx.To] = balances[tx.To].Add(tx.Amount)
			if tx.Kind == database.Transfer {
				balances[tx.From] = balances[tx.From].Sub(tx.Amount)
			}
		}
	}

	return balances
}

// Issued returns the total amount created by reward transactions.
func (l *Ledger) Issued() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	issued := decimal.Zero
	for _, block := range l.chain {
		for _, tx := range block.Transactions() {
			if tx.IsReward() {
				issued = issued.Add(tx.Amount)
			}
		}
	}

	return issued
}

// =============================================================================

// Genesis returns a copy of the genesis information.
func (l *Ledger) Genesis() genesis.Genesis {
	return l.genesis
}

// LatestBlock returns the latest block in the chain.
func (l *Ledger) LatestBlock() database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tail()
}

// Length returns the number of blocks in the chain including genesis.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.chain)
}

// Difficulty returns the difficulty the next block must be mined at.
func (l *Ledger) Difficulty() uint {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.difficulty
}

// Pending returns a copy of the pending pool in arrival order.
func (l *Ledger) Pending() []database.Tx {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mempool.Copy()
}

// PendingCount returns the current length of the pending pool.
func (l *Ledger) PendingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mempool.Count()
}

// Blocks returns the blocks between the two block numbers inclusive. Use
// QueryLatest for either value to mean the latest block.
func (l *Ledger) Blocks(from uint64, to uint64) []database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	latest := uint64(len(l.chain) - 1)
	if from == QueryLatest {
		from = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	if from > to {
		return nil
	}

	out := make([]database.Block, to-from+1)
	copy(out, l.chain[from:to+1])

	return out
}

// BlocksByAccount returns the set of blocks with a transaction sent or
// received by the account. If the account is empty, all blocks are returned.
func (l *Ledger) BlocksByAccount(accountID database.AccountID) []database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []database.Block
	for _, block := range l.chain {
		if accountID == "" {
			out = append(out, block)
			continue
		}

		for _, tx := range block.Transactions() {
			if tx.To == accountID || (tx.Kind == database.Transfer && tx.From == accountID) {
				out = append(out, block)
				break
			}
		}
	}

	return out
}

// =============================================================================

// Status represents a summary of the ledger for a control plane.
type Status struct {
	Length      int    `json:"length"`
	LatestIndex uint64 `json:"latest_index"`
	LatestHash  string `json:"latest_hash"`
	Difficulty  uint   `json:"difficulty"`
	Pending     int    `json:"pending"`
	Mining      string `json:"mining"`
	Workers     int    `json:"workers"`
	Policy      string `json:"policy"`
}

// Status returns a consistent summary of the ledger.
func (l *Ledger) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tail := l.tail()

	return Status{
		Length:      len(l.chain),
		LatestIndex: tail.Index(),
		LatestHash:  tail.Hash(),
		Difficulty:  l.difficulty,
		Pending:     l.mempool.Count(),
		Mining:      l.engine.State().String(),
		Workers:     l.engine.Workers(),
		Policy:      validator.Name(l.policy),
	}
}

// MiningState returns the state of the most recent proof of work search.
func (l *Ledger) MiningState() pow.Status {
	return l.engine.State()
}
