// Package commands contains the functionality for the set of commands
// currently supported by the admin CLI tooling.
package commands

import (
	"fmt"
	"os"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/genesis"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/blockchain/storage/disk"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath      string
	genesisPath string
	accountPath string
	verbose     bool
)

var log *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Administrative tasks for the ledger database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "zblock/blocks.db", "Path to the block database.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log ledger events.")
}

// Execute runs the admin command line with the process arguments.
func Execute(build string, logger *zap.SugaredLogger) error {
	rootCmd.Version = build
	return Run(logger, os.Args[1:]...)
}

// Run executes the command named by the arguments.
func Run(logger *zap.SugaredLogger, args ...string) error {
	log = logger
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		return err
	}

	return nil
}

// =============================================================================

// openLedger loads and validates the chain in the database.
func openLedger(beneficiary database.AccountID, options ...pow.Option) (*ledger.Ledger, error) {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("loading genesis: %w", err)
	}

	storage, err := disk.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	ev := func(v string, args ...any) {
		if verbose {
			log.Infow(fmt.Sprintf(v, args...))
		}
	}

	options = append(options, pow.WithEvHandler(ev))

	l, err := ledger.New(ledger.Config{
		Genesis:     gen,
		Storage:     storage,
		Engine:      pow.New(options...),
		Beneficiary: beneficiary,
		EvHandler:   ev,
	})
	if err != nil {
		storage.Close()
		return nil, err
	}

	return l, nil
}

// names returns the name service for the accounts folder.
func names() (*nameservice.NameService, error) {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		return nil, fmt.Errorf("loading names: %w", err)
	}
	return ns, nil
}
