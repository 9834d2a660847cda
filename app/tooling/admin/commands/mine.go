package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	beneficiary string
	workers     int
	chunkSize   uint64
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a reward block onto the local chain",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&beneficiary, "beneficiary", "b", "miner1", "Name or account credited with the reward.")
	mineCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of parallel search workers.")
	mineCmd.Flags().Uint64VarP(&chunkSize, "chunk", "c", pow.DefaultChunkSize, "Nonces searched per worker per round.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	ns, err := names()
	if err != nil {
		return err
	}

	accountID, err := database.ToAccountID(string(ns.Resolve(beneficiary)))
	if err != nil {
		return fmt.Errorf("beneficiary: %w", err)
	}

	l, err := openLedger(accountID, pow.WithWorkers(workers), pow.WithChunkSize(chunkSize), pow.WithRandomStart())
	if err != nil {
		return err
	}
	defer l.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("mining block %d at difficulty %d", l.Length(), l.Difficulty()))

	result, err := l.Mine(ctx)
	if err != nil {
		spinner.Fail(err)
		return err
	}

	if result.Status != pow.Found {
		spinner.Warning(fmt.Sprintf("search %s after %v", result.Status, result.Duration))
		return nil
	}

	spinner.Success(fmt.Sprintf("block %d mined in %v: %s", result.Block.Index(), result.Duration, result.Block.Hash()))
	return nil
}
