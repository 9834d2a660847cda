package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/deadsgold/powledger/foundation/nameservice"
)

func Test_NameService(t *testing.T) {
	dir := t.TempDir()

	names := map[string]string{
		"kennedy": signature.SchemeSecp256k1,
		"pavel":   signature.SchemeEd25519,
	}

	accounts := make(map[string]database.AccountID)
	for name, scheme := range names {
		signer, err := signature.GenerateSigner(scheme)
		if err != nil {
			t.Fatalf("Should be able to generate a %s key: %s", scheme, err)
		}

		if _, err := signature.SaveSigner(filepath.Join(dir, name), signer); err != nil {
			t.Fatalf("Should be able to save a %s key: %s", scheme, err)
		}

		accounts[name] = database.AccountID(signer.Address())
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	for name, account := range accounts {
		if got := ns.Lookup(account); got != name {
			t.Fatalf("Should get back the name %s, got %s.", name, got)
		}

		if got := ns.Resolve(name); got != account {
			t.Fatalf("Should resolve %s to %s, got %s.", name, account, got)
		}
	}

	unknown := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	if ns.Lookup(unknown) != string(unknown) || ns.Resolve(string(unknown)) != unknown {
		t.Fatalf("Should pass unknown accounts through.")
	}

	if len(ns.Copy()) != 2 {
		t.Fatalf("Should copy every account.")
	}
}
