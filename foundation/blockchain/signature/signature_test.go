package signature_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	data := []byte(`{"name":"Bill"}`)

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	signer := signature.NewSecp256k1(pk)

	if signer.Address() != from {
		t.Logf("got: %s", signer.Address())
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(sig) != crypto.SignatureLength {
		t.Fatalf("Should get back a %d byte signature, got %d.", crypto.SignatureLength, len(sig))
	}

	if !signature.Verify(from, sig, data) {
		t.Fatalf("Should be able to verify the signature.")
	}

	for _, address := range []string{
		"0xDD6B972FFCC631A62CAE1BB9D80B7FF429C8EBA4",
		"0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4",
	} {
		if signature.Verify(address, sig, data) {
			t.Fatalf("Should not verify against a non canonical address %s.", address)
		}

		if signature.Canonical(address) != from {
			t.Logf("got: %s", signature.Canonical(address))
			t.Logf("exp: %s", from)
			t.Fatalf("Should canonicalize %s.", address)
		}
	}

	if signature.Verify(from[2:], sig, data) {
		t.Fatalf("Should not verify against an address without the 0x prefix.")
	}
}

func Test_VerifyFailures(t *testing.T) {
	data := []byte(`{"name":"Bill"}`)

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.NewSecp256k1(pk).Sign(data)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	other, err := signature.GenerateSecp256k1()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	tt := []struct {
		name    string
		address string
		sig     []byte
		data    []byte
	}{
		{"wrong data", from, sig, []byte(`{"name":"Jill"}`)},
		{"wrong address", other.Address(), sig, data},
		{"short signature", from, sig[:64], data},
		{"no signature", from, nil, data},
		{"unknown address", "sender1", sig, data},
		{"bad ed25519 address", "ed25519:zz", sig, data},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if signature.Verify(tst.address, tst.sig, tst.data) {
				t.Fatalf("Should not be able to verify the signature.")
			}
		}
		t.Run(tst.name, f)
	}
}

func Test_FlippedSignature(t *testing.T) {
	data := []byte(`{"name":"Bill"}`)

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.NewSecp256k1(pk).Sign(data)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	for _, i := range []int{0, 15, 31, 32, 47, 63, 64} {
		bad := make([]byte, len(sig))
		copy(bad, sig)
		bad[i] ^= 0x01

		if signature.Verify(from, bad, data) {
			t.Fatalf("Should not verify with byte %d flipped.", i)
		}
	}
}

func Test_Ed25519(t *testing.T) {
	data := []byte(`{"name":"Bill"}`)

	signer := signature.GenerateEd25519()

	if !signature.IsAddress(signer.Address()) {
		t.Fatalf("Should produce a valid address: %s", signer.Address())
	}

	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if !signature.Verify(signer.Address(), sig, data) {
		t.Fatalf("Should be able to verify the signature.")
	}

	upper := "ed25519:" + strings.ToUpper(strings.TrimPrefix(signer.Address(), "ed25519:"))
	if signature.Verify(upper, sig, data) {
		t.Fatalf("Should not verify against an upper case key.")
	}

	if signature.Canonical(upper) != signer.Address() {
		t.Fatalf("Should canonicalize an upper case key.")
	}

	sig[10] ^= 0x01
	if signature.Verify(signer.Address(), sig, data) {
		t.Fatalf("Should not verify a tampered signature.")
	}
}

func Test_SaveLoad(t *testing.T) {
	dir := t.TempDir()

	for _, scheme := range []string{signature.SchemeSecp256k1, signature.SchemeEd25519} {
		signer, err := signature.GenerateSigner(scheme)
		if err != nil {
			t.Fatalf("Should be able to generate a %s key: %s", scheme, err)
		}

		path, err := signature.SaveSigner(filepath.Join(dir, scheme), signer)
		if err != nil {
			t.Fatalf("Should be able to save a %s key: %s", scheme, err)
		}

		loaded, err := signature.LoadSigner(path)
		if err != nil {
			t.Fatalf("Should be able to load a %s key: %s", scheme, err)
		}

		if loaded.Address() != signer.Address() {
			t.Logf("got: %s", loaded.Address())
			t.Logf("exp: %s", signer.Address())
			t.Fatalf("Should get back the same %s address.", scheme)
		}
	}

	if _, err := signature.GenerateSigner("rsa"); err == nil {
		t.Fatalf("Should not be able to generate an unknown scheme.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}
