package signature

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// stampID is an arbitrary number for signing messages. This will make it
// clear that the signature comes from this ledger. Ethereum and Bitcoin do
// this as well, but they use the value of 27.
const stampID = 29

// Secp256k1 is a key-holder using the same curve and address format as
// Ethereum accounts.
type Secp256k1 struct {
	privateKey *ecdsa.PrivateKey
}

// NewSecp256k1 constructs a signer for the specified private key.
func NewSecp256k1(privateKey *ecdsa.PrivateKey) *Secp256k1 {
	return &Secp256k1{privateKey: privateKey}
}

// GenerateSecp256k1 constructs a signer with a brand new private key.
func GenerateSecp256k1() (*Secp256k1, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return NewSecp256k1(privateKey), nil
}

// LoadSecp256k1 reads a hex encoded private key from disk.
func LoadSecp256k1(path string) (*Secp256k1, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, err
	}

	return NewSecp256k1(privateKey), nil
}

// Address returns the checksummed account address for this key.
func (s *Secp256k1) Address() string {
	return crypto.PubkeyToAddress(s.privateKey.PublicKey).String()
}

// Sign uses the private key to sign the data. The signature is returned
// in the [R|S|V] format with the stamp id added to V.
func (s *Secp256k1) Sign(data []byte) ([]byte, error) {
	digest := stamp(data)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), digest, rs) {
		return nil, errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += stampID

	return sig, nil
}

// save writes the private key to disk.
func (s *Secp256k1) save(path string) error {
	return writeKey(path, crypto.FromECDSA(s.privateKey))
}

// =============================================================================

// verifySecp256k1 extracts the public key from the signature and data and
// compares the derived address with the claimed one.
func verifySecp256k1(address string, sig []byte, data []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - stampID
	if v != 0 && v != 1 {
		return false
	}

	// Check the signature values are valid.
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return false
	}

	// Convert back into the 65 byte format the crypto package expects.
	raw := make([]byte, crypto.SignatureLength)
	copy(raw, sig)
	raw[crypto.RecoveryIDOffset] = v

	// NOTE: If the same exact data for the given signature is not provided
	// we will get the wrong public key, which means the addresses won't match.
	publicKey, err := crypto.SigToPub(stamp(data), raw)
	if err != nil {
		return false
	}

	return crypto.PubkeyToAddress(*publicKey).Hex() == address
}

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(data)

	// Convert the stamp into a slice of bytes. This stamp is
	// used so signatures we produce when signing data
	// are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	return crypto.Keccak256(stamp, txHash)
}
