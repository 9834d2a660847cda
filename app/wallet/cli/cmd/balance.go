package cmd

import (
	"fmt"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type balance struct {
	Account string          `json:"account"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	signer, err := loadSigner()
	if err != nil {
		return err
	}

	var bals balances
	if err := call(http.MethodGet, fmt.Sprintf("/v1/balances/list/%s", signer.Address()), nil, &bals); err != nil {
		return err
	}

	data := pterm.TableData{{"Account", "Name", "Balance"}}
	for _, bal := range bals.Balances {
		data = append(data, []string{bal.Account, bal.Name, bal.Balance.String()})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.Info.Printfln("latest block %s, %d uncommitted", bals.LatestBlock, bals.Uncommitted)
	return nil
}
