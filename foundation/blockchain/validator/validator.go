// Package validator provides the external policy gate transactions pass
// after their signature has been verified. A policy is a pure predicate and
// never returns an error, any failure means the transaction is rejected.
package validator

import (
	"fmt"
	"strings"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/shopspring/decimal"
)

// Policy represents the behavior of an external validation policy.
type Policy interface {
	Validate(tx database.Tx) bool
}

// =============================================================================

// AcceptAll approves every transaction.
type AcceptAll struct{}

// Validate implements the Policy interface.
func (AcceptAll) Validate(tx database.Tx) bool {
	return true
}

// String implements the fmt.Stringer interface.
func (AcceptAll) String() string {
	return "accept-all"
}

// =============================================================================

// Allowlist approves transactions whose sender and recipient are both known.
// Account matching ignores case.
type Allowlist struct {
	accounts map[string]struct{}
}

// NewAllowlist constructs an allowlist from the specified accounts.
func NewAllowlist(accounts ...database.AccountID) Allowlist {
	al := Allowlist{
		accounts: make(map[string]struct{}, len(accounts)),
	}

	for _, account := range accounts {
		al.accounts[strings.ToLower(string(account))] = struct{}{}
	}

	return al
}

// Validate implements the Policy interface.
func (al Allowlist) Validate(tx database.Tx) bool {
	if !al.contains(tx.To) {
		return false
	}

	return tx.IsReward() || al.contains(tx.From)
}

// String implements the fmt.Stringer interface.
func (al Allowlist) String() string {
	return fmt.Sprintf("allowlist[%d]", len(al.accounts))
}

func (al Allowlist) contains(account database.AccountID) bool {
	_, exists := al.accounts[strings.ToLower(string(account))]
	return exists
}

// =============================================================================

// MaxAmount approves transactions moving no more than Limit.
type MaxAmount struct {
	Limit decimal.Decimal
}

// Validate implements the Policy interface.
func (ma MaxAmount) Validate(tx database.Tx) bool {
	return tx.Amount.LessThanOrEqual(ma.Limit)
}

// String implements the fmt.Stringer interface.
func (ma MaxAmount) String() string {
	return fmt.Sprintf("max-amount[%s]", ma.Limit)
}

// =============================================================================

// Func adapts an ordinary function into a Policy.
type Func func(tx database.Tx) bool

// Validate implements the Policy interface.
func (f Func) Validate(tx database.Tx) bool {
	return f(tx)
}

// String implements the fmt.Stringer interface.
func (f Func) String() string {
	return "func"
}

// =============================================================================

// All approves a transaction only when every policy approves it. Evaluation
// stops at the first rejection.
type All []Policy

// Validate implements the Policy interface.
func (all All) Validate(tx database.Tx) bool {
	for _, p := range all {
		if !p.Validate(tx) {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface.
func (all All) String() string {
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = Name(p)
	}
	return "all[" + strings.Join(names, ",") + "]"
}

// Name returns a display name for the policy.
func Name(p Policy) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
