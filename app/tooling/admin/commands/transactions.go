package commands

import (
	"fmt"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:   "trans [account]",
	Short: "Print the blocks and transactions of every account or a single one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  transactionsRun,
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
}

func transactionsRun(cmd *cobra.Command, args []string) error {
	l, err := openLedger("")
	if err != nil {
		return err
	}
	defer l.Shutdown()

	ns, err := names()
	if err != nil {
		return err
	}

	var accountID database.AccountID
	if len(args) == 1 {
		accountID = ns.Resolve(args[0])
	}

	data := pterm.TableData{{"Block", "Kind", "From", "To", "Amount"}}
	for _, block := range l.BlocksByAccount(accountID) {
		for _, tx := range block.Transactions() {
			from := "-"
			if !tx.IsReward() {
				from = ns.Lookup(tx.From)
			}
			data = append(data, []string{fmt.Sprint(block.Index()), tx.Kind.String(), from, ns.Lookup(tx.To), tx.Amount.String()})
		}
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
