// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the known accounts. Both secp256k1 and ed25519 key
// files are recognized.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/signature"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[database.AccountID]string
	names    map[string]database.AccountID
}

// New constructs a name service with accounts from the specified folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.AccountID]string),
		names:    make(map[string]database.AccountID),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		ext := filepath.Ext(fileName)
		if ext != signature.ExtSecp256k1 && ext != signature.ExtEd25519 {
			return nil
		}

		signer, err := signature.LoadSigner(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		name := strings.TrimSuffix(filepath.Base(fileName), ext)
		account := database.AccountID(signer.Address())

		ns.accounts[account] = name
		ns.names[name] = account

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	name, exists := ns.accounts[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Resolve returns the account for a name. A value that isn't a known name
// is returned as an account id.
func (ns *NameService) Resolve(nameOrAccount string) database.AccountID {
	if account, exists := ns.names[nameOrAccount]; exists {
		return account
	}
	return database.AccountID(nameOrAccount)
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	cpy := make(map[database.AccountID]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
