// This program is the key-holder wallet for the ledger node.
package main

import "github.com/deadsgold/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
