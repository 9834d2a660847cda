package ledger

import (
	"errors"
	"fmt"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
)

// RejectError is returned when a transaction is not admitted. The pending
// pool is never changed when a transaction is rejected.
type RejectError struct {
	TxID string
	Err  error
}

// Error implements the error interface.
func (re *RejectError) Error() string {
	return fmt.Sprintf("transaction %s rejected: %s", re.TxID, re.Err)
}

// Unwrap provides support for errors.Is and errors.As.
func (re *RejectError) Unwrap() error {
	return re.Err
}

// IsRejectError checks if an error of type RejectError exists.
func IsRejectError(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// =============================================================================

// Admit accepts a transaction into the pending pool. Every transaction must
// name canonical accounts and a non-negative amount. Rewards are then enqueued
// directly. Transfers must carry a signature from the sender over their
// signing encoding and must then be approved by the policy, which is never
// consulted for a transaction with a bad signature.
func (l *Ledger) Admit(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		l.evHandler("ledger: Admit: tx[%s]: REJECTED: %s", tx, err)
		return &RejectError{TxID: tx.ID(), Err: err}
	}

	if tx.Kind != database.Reward {

		// Neither check reads ledger state so no lock is held.
		if !l.verify(string(tx.From), tx.Signature, database.EncodeForSigning(tx)) {
			l.evHandler("ledger: Admit: tx[%s]: REJECTED: invalid signature", tx)
			return &RejectError{TxID: tx.ID(), Err: ErrInvalidSignature}
		}

		if !l.policy.Validate(tx) {
			l.evHandler("ledger: Admit: tx[%s]: REJECTED: policy", tx)
			return &RejectError{TxID: tx.ID(), Err: ErrRejectedByPolicy}
		}
	}

	l.mu.Lock()
	n := l.mempool.Append(tx)
	l.mu.Unlock()

	l.evHandler("viewer: tx[%s]: admitted: pending[%d]", tx, n)

	if l.Worker != nil {
		l.Worker.SignalStartMining()
	}

	return nil
}
