package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deadsgold/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// RewardSender is the sender value older encodings used to mark a reward.
// Only the wire form uses it, a decoded reward has an empty From.
const RewardSender = "0"

// Set of errors for constructing transactions.
var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrMissingAccount = errors.New("sender and recipient are required")
	ErrRewardSigned   = errors.New("reward transactions are not signed")
	ErrWrongSigner    = errors.New("signer does not own the sender account")
	ErrInvalidAccount = errors.New("invalid account format")
)

// =============================================================================

// Kind represents the type of payment a transaction makes.
type Kind int

// Set of transaction kinds. A reward credits the block producer and is the
// only way value is issued.
const (
	Transfer Kind = iota
	Reward
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Transfer:
		return "transfer"
	case Reward:
		return "reward"
	}
	return "unknown"
}

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Kind      Kind
	From      AccountID
	To        AccountID
	Amount    decimal.Decimal
	Signature []byte
}

// NewTransfer constructs an unsigned transfer between two accounts. Both
// accounts are stored in canonical form.
func NewTransfer(from AccountID, to AccountID, amount decimal.Decimal) (Tx, error) {
	if from == "" || to == "" {
		return Tx{}, ErrMissingAccount
	}

	if amount.IsNegative() {
		return Tx{}, ErrNegativeAmount
	}

	sender, err := ToAccountID(string(from))
	if err != nil {
		return Tx{}, fmt.Errorf("sender %q: %w", from, err)
	}

	recipient, err := ToAccountID(string(to))
	if err != nil {
		return Tx{}, fmt.Errorf("recipient %q: %w", to, err)
	}

	tx := Tx{
		Kind:   Transfer,
		From:   sender,
		To:     recipient,
		Amount: amount,
	}

	return tx, nil
}

// NewReward constructs a reward crediting the specified account.
func NewReward(to AccountID, amount decimal.Decimal) (Tx, error) {
	if to == "" {
		return Tx{}, ErrMissingAccount
	}

	if amount.IsNegative() {
		return Tx{}, ErrNegativeAmount
	}

	recipient, err := ToAccountID(string(to))
	if err != nil {
		return Tx{}, fmt.Errorf("recipient %q: %w", to, err)
	}

	tx := Tx{
		Kind:   Reward,
		To:     recipient,
		Amount: amount,
	}

	return tx, nil
}

// Sign returns a copy of the transaction carrying a signature over the
// signing encoding produced by the specified key-holder.
func (tx Tx) Sign(signer signature.Signer) (Tx, error) {
	if tx.Kind == Reward {
		return Tx{}, ErrRewardSigned
	}

	if signer.Address() != string(tx.From) {
		return Tx{}, ErrWrongSigner
	}

	sig, err := signer.Sign(EncodeForSigning(tx))
	if err != nil {
		return Tx{}, fmt.Errorf("sign: %w", err)
	}

	tx.Signature = sig
	return tx, nil
}

// Validate checks the parts of a transaction that don't depend on ledger
// state. The amount must not be negative and every account it names must be
// valid and canonical. A reward names only its recipient.
func (tx Tx) Validate() error {
	if tx.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	if !tx.To.IsCanonical() {
		return fmt.Errorf("recipient %q: %w", tx.To, ErrInvalidAccount)
	}

	if tx.Kind != Reward && !tx.From.IsCanonical() {
		return fmt.Errorf("sender %q: %w", tx.From, ErrInvalidAccount)
	}

	return nil
}

// IsReward reports whether the transaction issues new value.
func (tx Tx) IsReward() bool {
	return tx.Kind == Reward
}

// ID returns a unique hash of the transaction including its signature.
func (tx Tx) ID() string {
	return signature.Hash(tx)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	if tx.Kind == Reward {
		return fmt.Sprintf("reward:%s:%s", tx.To, tx.Amount)
	}

	return fmt.Sprintf("%s->%s:%s", tx.From, tx.To, tx.Amount)
}

// =============================================================================

// txDict is the dictionary form of a transaction. Fields are declared in key
// order so the JSON encoding is canonical.
type txDict struct {
	Amount    string  `json:"amount"`
	Kind      string  `json:"kind,omitempty"`
	Recipient string  `json:"recipient"`
	Sender    string  `json:"sender"`
	Signature *string `json:"signature"`
}

// dict converts the transaction into its dictionary form.
func (tx Tx) dict() txDict {
	d := txDict{
		Amount:    tx.Amount.String(),
		Kind:      tx.Kind.String(),
		Recipient: string(tx.To),
		Sender:    string(tx.From),
	}

	if tx.Kind == Reward {
		d.Sender = RewardSender
	}

	if tx.Signature != nil {
		sig := hexutil.Encode(tx.Signature)
		d.Signature = &sig
	}

	return d
}

// MarshalJSON implements the json.Marshaler interface.
func (tx Tx) MarshalJSON() ([]byte, error) {
	return json.Marshal(tx.dict())
}

// UnmarshalJSON implements the json.Unmarshaler interface. A dictionary
// without a kind whose sender is the reward sentinel decodes as a reward.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	// The amount may arrive as a JSON string or a JSON number.
	var d struct {
		txDict
		Amount json.Number `json:"amount"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	var kind Kind
	switch d.Kind {
	case "transfer":
		kind = Transfer
	case "reward":
		kind = Reward
	case "":
		kind = Transfer
		if d.Sender == RewardSender {
			kind = Reward
		}
	default:
		return fmt.Errorf("unknown transaction kind %q", d.Kind)
	}

	var sig []byte
	if d.Signature != nil {
		if sig, err = hexutil.Decode(*d.Signature); err != nil {
			return fmt.Errorf("signature: %w", err)
		}
	}

	to, err := ToAccountID(d.Recipient)
	if err != nil {
		return fmt.Errorf("recipient %q: %w", d.Recipient, err)
	}

	var from AccountID
	switch kind {
	case Reward:
		sig = nil
	default:
		if from, err = ToAccountID(d.Sender); err != nil {
			return fmt.Errorf("sender %q: %w", d.Sender, err)
		}
	}

	*tx = Tx{
		Kind:      kind,
		From:      from,
		To:        to,
		Amount:    amount,
		Signature: sig,
	}

	return nil
}
