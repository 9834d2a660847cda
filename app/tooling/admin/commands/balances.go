package commands

import (
	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "bals [account]",
	Short: "Print the balances of every account or a single one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  balancesRun,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

func balancesRun(cmd *cobra.Command, args []string) error {
	l, err := openLedger("")
	if err != nil {
		return err
	}
	defer l.Shutdown()

	ns, err := names()
	if err != nil {
		return err
	}

	var accounts []database.Account
	switch len(args) {
	case 0:
		accounts = database.ToAccounts(l.Balances())
	default:
		accountID, err := database.ToAccountID(string(ns.Resolve(args[0])))
		if err != nil {
			return err
		}
		accounts = []database.Account{{AccountID: accountID, Balance: l.BalanceOf(accountID)}}
	}

	pterm.Info.Printfln("latest block %s", l.LatestBlock().Hash())

	data := pterm.TableData{{"Account", "Name", "Balance"}}
	for _, acct := range accounts {
		data = append(data, []string{string(acct.AccountID), ns.Lookup(acct.AccountID), acct.Balance.String()})
	}
	data = append(data, []string{"", "issued", l.Issued().String()})

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
