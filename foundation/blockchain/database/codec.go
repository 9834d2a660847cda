package database

import (
	"encoding/json"
	"strconv"

	"github.com/deadsgold/powledger/foundation/blockchain/pow"
)

// signingDict is what a key-holder signs. Fields are declared in key order
// and the signature is excluded.
type signingDict struct {
	Amount    string `json:"amount"`
	Kind      string `json:"kind"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// EncodeForSigning returns the canonical bytes a transaction signature
// covers. Transactions with the same logical content encode identically.
func EncodeForSigning(tx Tx) []byte {
	d := tx.dict()

	// Marshal can't fail on a struct of string fields.
	data, _ := json.Marshal(signingDict{
		Amount:    d.Amount,
		Kind:      d.Kind,
		Recipient: d.Recipient,
		Sender:    d.Sender,
	})

	return data
}

// EncodeForHash returns the canonical bytes of a block minus its hash. The
// keys are index, nonce, previous_hash, timestamp and transactions in that
// order.
func EncodeForHash(index uint64, timestamp int64, txs []Tx, prevHash string, nonce uint64) []byte {
	return NewChallenge(index, timestamp, txs, prevHash).Encode(nonce)
}

// NewChallenge splits the block encoding around the nonce so the proof of
// work search only renders the nonce on each attempt.
func NewChallenge(index uint64, timestamp int64, txs []Tx, prevHash string) pow.Challenge {
	dicts := make([]txDict, len(txs))
	for i, tx := range txs {
		dicts[i] = tx.dict()
	}

	// Marshal can't fail on strings and slices of string fields.
	txsJSON, _ := json.Marshal(dicts)
	prevJSON, _ := json.Marshal(prevHash)

	prefix := make([]byte, 0, 32)
	prefix = append(prefix, `{"index":`...)
	prefix = strconv.AppendUint(prefix, index, 10)
	prefix = append(prefix, `,"nonce":`...)

	suffix := make([]byte, 0, len(prevJSON)+len(txsJSON)+64)
	suffix = append(suffix, `,"previous_hash":`...)
	suffix = append(suffix, prevJSON...)
	suffix = append(suffix, `,"timestamp":`...)
	suffix = strconv.AppendInt(suffix, timestamp, 10)
	suffix = append(suffix, `,"transactions":`...)
	suffix = append(suffix, txsJSON...)
	suffix = append(suffix, '}')

	return pow.Challenge{
		Prefix: prefix,
		Suffix: suffix,
	}
}
