package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var scheme string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&scheme, "scheme", "s", signature.SchemeSecp256k1, "Signature scheme: secp256k1 or ed25519.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	signer, err := signature.GenerateSigner(scheme)
	if err != nil {
		return err
	}

	base := filepath.Join(accountPath, accountName)
	for _, ext := range []string{signature.ExtSecp256k1, signature.ExtEd25519} {
		if _, err := os.Stat(base + ext); err == nil {
			return fmt.Errorf("account %q already has a key file", accountName)
		}
	}

	path, err := signature.SaveSigner(base, signer)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("key written to %s", path)
	pterm.Info.Printfln("account %s", signer.Address())

	return nil
}
