package signature

import (
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/group/edwards25519"
	"go.dedis.ch/kyber/v4/sign/eddsa"
	"go.dedis.ch/kyber/v4/util/random"
)

// ed25519Prefix marks an address as the hex encoded public key of an
// ed25519 key-holder.
const ed25519Prefix = "ed25519:"

var suite = edwards25519.NewBlakeSHA256Ed25519()

// Ed25519 is a key-holder using EdDSA over curve25519.
type Ed25519 struct {
	key *eddsa.EdDSA
}

// GenerateEd25519 constructs a signer with a brand new key pair.
func GenerateEd25519() *Ed25519 {
	return &Ed25519{key: eddsa.NewEdDSA(random.New())}
}

// LoadEd25519 reads a hex encoded key pair from disk.
func LoadEd25519(path string) (*Ed25519, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, err
	}

	var key eddsa.EdDSA
	if err := key.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	return &Ed25519{key: &key}, nil
}

// Address returns the public key in its address form.
func (e *Ed25519) Address() string {
	raw, err := e.key.Public.MarshalBinary()
	if err != nil {
		return ""
	}

	return ed25519Prefix + hex.EncodeToString(raw)
}

// Sign produces a 64 byte signature over the data.
func (e *Ed25519) Sign(data []byte) ([]byte, error) {
	return e.key.Sign(data)
}

// save writes the key pair to disk.
func (e *Ed25519) save(path string) error {
	raw, err := e.key.MarshalBinary()
	if err != nil {
		return err
	}

	return writeKey(path, raw)
}

// =============================================================================

// verifyEd25519 decodes the public key from the address and checks the
// signature with it.
func verifyEd25519(address string, sig []byte, data []byte) bool {
	public, err := ed25519Point(address)
	if err != nil {
		return false
	}

	return eddsa.Verify(public, data, sig) == nil
}

// ed25519Point decodes the curve point held in an ed25519 address.
func ed25519Point(address string) (kyber.Point, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(address, ed25519Prefix))
	if err != nil {
		return nil, err
	}

	if len(raw) != 32 {
		return nil, errors.New("invalid public key length")
	}

	public := suite.Point()
	if err := public.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	return public, nil
}
