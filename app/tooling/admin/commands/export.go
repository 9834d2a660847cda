package commands

import (
	"encoding/json"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the chain as a snapshot document, to stdout without a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  exportRun,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func exportRun(cmd *cobra.Command, args []string) error {
	l, err := openLedger("")
	if err != nil {
		return err
	}
	defer l.Shutdown()

	snap := l.Export()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if len(args) == 0 {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return err
	}

	pterm.Success.Printfln("exported %d blocks to %s", len(snap.Chain), args[0])
	return nil
}
