// Package cmd contains the wallet app commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private", "Name of the key file without extension.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Simple wallet for the proof of work ledger",
	SilenceUsage: true,
}

// Execute runs the wallet command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// keyPath returns the path of the account's key file for the scheme.
func keyPath(ext string) string {
	if filepath.Ext(accountName) != "" {
		return filepath.Join(accountPath, accountName)
	}
	return filepath.Join(accountPath, accountName+ext)
}

// loadSigner finds the account's key file under either scheme.
func loadSigner() (signature.Signer, error) {
	for _, ext := range []string{signature.ExtSecp256k1, signature.ExtEd25519} {
		path := keyPath(ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return signature.LoadSigner(path)
	}

	return nil, fmt.Errorf("no key file for account %q in %s", accountName, accountPath)
}
