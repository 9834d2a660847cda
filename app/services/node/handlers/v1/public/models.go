package public

import (
	"encoding/json"
	"fmt"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/shopspring/decimal"
)

type balance struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance decimal.Decimal    `json:"balance"`
}

type named struct {
	Name    string             `json:"name"`
	Account database.AccountID `json:"account"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Issued      string    `json:"issued"`
	Balances    []balance `json:"balances"`
}

type tx struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	From      database.AccountID `json:"from,omitempty"`
	FromName  string             `json:"from_name,omitempty"`
	To        database.AccountID `json:"to"`
	ToName    string             `json:"to_name"`
	Amount    string             `json:"amount"`
	Signature string             `json:"signature,omitempty"`
}

type block struct {
	Hash         string `json:"hash"`
	Index        uint64 `json:"index"`
	Nonce        uint64 `json:"nonce"`
	PrevHash     string `json:"previous_hash"`
	Timestamp    int64  `json:"timestamp"`
	Transactions []tx   `json:"transactions"`
}

type status struct {
	ledger.Status
	ChainID uint16 `json:"chain_id"`
}

type mined struct {
	Status   string `json:"status"`
	Rounds   int    `json:"rounds"`
	Duration string `json:"duration"`
	Block    *block `json:"block,omitempty"`
}

// =============================================================================

// SubmitTx is what a key-holder posts to add a transaction to the pool. The
// field names match the canonical dictionary form of a transaction.
type SubmitTx struct {
	Kind      string      `json:"kind,omitempty" validate:"omitempty,oneof=transfer reward"`
	Sender    string      `json:"sender" validate:"required"`
	Recipient string      `json:"recipient" validate:"required,account"`
	Amount    json.Number `json:"amount" validate:"required,numeric"`
	Signature *string     `json:"signature" validate:"omitempty,hexadecimal"`
}

// toTx converts the request into a transaction through the canonical decoder
// so both paths accept the same documents.
func (st SubmitTx) toTx() (database.Tx, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return database.Tx{}, err
	}

	var t database.Tx
	if err := json.Unmarshal(data, &t); err != nil {
		return database.Tx{}, fmt.Errorf("decoding transaction: %w", err)
	}

	return t, nil
}

// =============================================================================

func toTx(ns *nameservice.NameService, t database.Tx) tx {
	out := tx{
		ID:     t.ID(),
		Kind:   t.Kind.String(),
		To:     t.To,
		ToName: ns.Lookup(t.To),
		Amount: t.Amount.String(),
	}

	if !t.IsReward() {
		out.From = t.From
		out.FromName = ns.Lookup(t.From)
		out.Signature = fmt.Sprintf("%#x", t.Signature)
	}

	return out
}

func toTxs(ns *nameservice.NameService, txs []database.Tx) []tx {
	out := make([]tx, len(txs))
	for i, t := range txs {
		out[i] = toTx(ns, t)
	}
	return out
}

func toBlock(ns *nameservice.NameService, b database.Block) block {
	return block{
		Hash:         b.Hash(),
		Index:        b.Index(),
		Nonce:        b.Nonce(),
		PrevHash:     b.PrevHash(),
		Timestamp:    b.Timestamp(),
		Transactions: toTxs(ns, b.Transactions()),
	}
}

func toBlocks(ns *nameservice.NameService, blocks []database.Block) []block {
	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = toBlock(ns, b)
	}
	return out
}
