package database

import (
	"crypto/ecdsa"
	"sort"
	"unicode/utf8"

	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Account represents the balance of an individual account as computed by a
// scan of the chain.
type Account struct {
	AccountID AccountID       `json:"account"`
	Balance   decimal.Decimal `json:"balance"`
}

// newAccount constructs a new account value for use.
func newAccount(accountID AccountID, balance decimal.Decimal) Account {
	return Account{
		AccountID: accountID,
		Balance:   balance,
	}
}

// ToAccounts converts a balance sheet into a list of accounts ordered by
// account id.
func ToAccounts(balances map[AccountID]decimal.Decimal) []Account {
	accounts := make([]Account, 0, len(balances))
	for accountID, balance := range balances {
		accounts = append(accounts, newAccount(accountID, balance))
	}

	sort.Sort(byAccount(accounts))
	return accounts
}

// =============================================================================

// AccountID represents an account id that is used to sign transactions and is
// associated with transactions on the blockchain. Either a 0x prefixed
// secp256k1 address or an ed25519: prefixed public key.
type AccountID string

// ToAccountID converts a string to an account and validates the string is
// formatted correctly. The account is returned in its canonical form so
// every spelling of one key maps to the same balance.
func ToAccountID(address string) (AccountID, error) {
	a := AccountID(address)
	if !a.IsAccountID() {
		return "", ErrInvalidAccount
	}

	return AccountID(signature.Canonical(address)), nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// address for one of the supported signature schemes.
func (a AccountID) IsAccountID() bool {
	return utf8.ValidString(string(a)) && signature.IsAddress(string(a))
}

// IsCanonical reports whether the account is valid and already spelled the
// way ToAccountID returns it.
func (a AccountID) IsCanonical() bool {
	return a.IsAccountID() && signature.Canonical(string(a)) == string(a)
}

// =============================================================================

// byAccount provides sorting support by the account id value.
type byAccount []Account

// Len returns the number of accounts in the list.
func (ba byAccount) Len() int {
	return len(ba)
}

// Less helps to sort the list by account id in ascending order.
func (ba byAccount) Less(i, j int) bool {
	return ba[i].AccountID < ba[j].AccountID
}

// Swap moves accounts in the order of the account id value.
func (ba byAccount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}
