// Package signature provides helper functions for handling the blockchain
// signature needs. It implements the key-holder side of the ledger (signing)
// and the static verification the ledger performs on admission.
package signature

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Set of signature schemes a key-holder can use.
const (
	SchemeSecp256k1 = "secp256k1"
	SchemeEd25519   = "ed25519"
)

// Key file extensions for each scheme.
const (
	ExtSecp256k1 = ".ecdsa"
	ExtEd25519   = ".ed25519"
)

// ErrUnknownScheme is returned when a key or address doesn't belong to any
// supported signature scheme.
var ErrUnknownScheme = errors.New("unknown signature scheme")

// =============================================================================

// Signer represents the behavior of a key-holder. The ledger never holds
// keys, it only calls Verify with the address a signer declares.
type Signer interface {
	Address() string
	Sign(data []byte) ([]byte, error)
}

// Verify checks the signature was produced over data by the key that owns
// the specified address. It never panics and returns false for any address
// form it doesn't recognize or that isn't in canonical form.
func Verify(address string, sig []byte, data []byte) bool {
	if Canonical(address) != address {
		return false
	}

	switch {
	case strings.HasPrefix(address, ed25519Prefix):
		return verifyEd25519(address, sig, data)
	case common.IsHexAddress(address):
		return verifySecp256k1(address, sig, data)
	}

	return false
}

// IsAddress reports whether the string is a well formed address for one
// of the supported schemes.
func IsAddress(address string) bool {
	switch {
	case strings.HasPrefix(address, ed25519Prefix):
		_, err := ed25519Point(address)
		return err == nil
	case common.IsHexAddress(address):
		return strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X")
	}

	return false
}

// Canonical returns the one spelling of an address that Verify accepts. A
// secp256k1 address gets its EIP-55 checksum and an ed25519 key is lower
// cased. Anything that isn't an address is returned unchanged.
func Canonical(address string) string {
	if !IsAddress(address) {
		return address
	}

	if strings.HasPrefix(address, ed25519Prefix) {
		return ed25519Prefix + strings.ToLower(strings.TrimPrefix(address, ed25519Prefix))
	}

	return common.HexToAddress(address).Hex()
}

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// =============================================================================

// GenerateSigner constructs a new key pair for the specified scheme.
func GenerateSigner(scheme string) (Signer, error) {
	switch scheme {
	case SchemeSecp256k1:
		return GenerateSecp256k1()
	case SchemeEd25519:
		return GenerateEd25519(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// LoadSigner reads a key file from disk. The file extension selects the
// signature scheme.
func LoadSigner(path string) (Signer, error) {
	switch filepath.Ext(path) {
	case ExtSecp256k1:
		return LoadSecp256k1(path)
	case ExtEd25519:
		return LoadEd25519(path)
	}

	return nil, fmt.Errorf("%w: file %q", ErrUnknownScheme, path)
}

// SaveSigner writes the signer's private key to disk using the file
// extension of its scheme. The final path is returned.
func SaveSigner(path string, signer Signer) (string, error) {
	path = strings.TrimSuffix(path, filepath.Ext(path))

	switch s := signer.(type) {
	case *Secp256k1:
		path += ExtSecp256k1
		return path, s.save(path)
	case *Ed25519:
		path += ExtEd25519
		return path, s.save(path)
	}

	return "", ErrUnknownScheme
}

// writeKey writes a hex encoded key to disk with owner only permissions.
func writeKey(path string, key []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(fmt.Sprintf("%x", key)), 0600)
}
