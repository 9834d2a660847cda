package cmd

import (
	"net/http"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transfer",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Recipient name or account.")
	sendCmd.Flags().StringVarP(&amount, "amount", "v", "", "Amount to send.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	signer, err := loadSigner()
	if err != nil {
		return err
	}

	ns, err := nameservice.New(accountPath)
	if err != nil {
		return err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}

	recipient, err := database.ToAccountID(string(ns.Resolve(to)))
	if err != nil {
		return err
	}

	tx, err := database.NewTransfer(database.AccountID(signer.Address()), recipient, value)
	if err != nil {
		return err
	}

	signed, err := tx.Sign(signer)
	if err != nil {
		return err
	}

	var resp struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Pending int    `json:"pending"`
	}
	if err := call(http.MethodPost, "/v1/tx/submit", signed, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("%s: %s", resp.Status, resp.ID)
	pterm.Info.Printfln("%s -> %s: %s, %d pending", ns.Lookup(tx.From), ns.Lookup(recipient), value, resp.Pending)

	return nil
}
