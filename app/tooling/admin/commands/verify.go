package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify block hashes and linkage of the chain",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) error {

	// Loading the ledger already rejects a broken chain.
	l, err := openLedger("")
	if err != nil {
		return err
	}
	defer l.Shutdown()

	if err := l.VerifyChain(); err != nil {
		return err
	}

	st := l.Status()
	pterm.Success.Printfln("chain verified: %d blocks, latest %s, difficulty %d", st.Length, st.LatestHash, st.Difficulty)

	return nil
}
