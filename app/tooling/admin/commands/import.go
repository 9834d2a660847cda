package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import file",
	Short: "Replace the chain with a validated snapshot document",
	Args:  cobra.ExactArgs(1),
	RunE:  importRun,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importRun(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	l, err := openLedger("")
	if err != nil {
		return err
	}
	defer l.Shutdown()

	if err := l.Import(snap); err != nil {
		return err
	}

	st := l.Status()
	pterm.Success.Printfln("imported %d blocks, %d pending, difficulty %d", st.Length, st.Pending, st.Difficulty)

	return nil
}
