// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/deadsgold/powledger/business/sys/validate"
	"github.com/deadsgold/powledger/business/web/errs"
	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/events"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/deadsgold/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log           *zap.SugaredLogger
	Ledger        *ledger.Ledger
	NS            *nameservice.NameService
	WS            websocket.Upgrader
	Evts          *events.Events
	MiningTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var st SubmitTx
	if err := web.Decode(r, &st); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(st); err != nil {
		return err
	}

	tx, err := st.toTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "kind", tx.Kind, "from", tx.From, "to", tx.To, "amount", tx.Amount)

	if err := h.Ledger.Admit(tx); err != nil {
		switch {
		case errors.Is(err, ledger.ErrRejectedByPolicy):
			return errs.NewTrusted(err, http.StatusForbidden)
		case ledger.IsRejectError(err):
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("admit: %w", err)
	}

	resp := struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to pool",
		ID:      tx.ID(),
		Pending: h.Ledger.PendingCount(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Ledger.Genesis(), http.StatusOK)
}

// Status returns a summary of the chain, the pool and the mining engine.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Status:  h.Ledger.Status(),
		ChainID: h.Ledger.Genesis().ChainID,
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := database.AccountID(web.Param(r, "account"))

	pending := h.Ledger.Pending()

	txs := make([]tx, 0, len(pending))
	for _, t := range pending {
		if acct != "" && acct != t.From && acct != t.To {
			continue
		}
		txs = append(txs, toTx(h.NS, t))
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Balances returns the current balances for all accounts or a single one.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accounts []database.Account

	switch account := web.Param(r, "account"); account {
	case "":
		accounts = database.ToAccounts(h.Ledger.Balances())

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		accounts = []database.Account{{AccountID: accountID, Balance: h.Ledger.BalanceOf(accountID)}}
	}

	bals := make([]balance, len(accounts))
	for i, acct := range accounts {
		bals[i] = balance{
			Account: acct.AccountID,
			Name:    h.NS.Lookup(acct.AccountID),
			Balance: acct.Balance,
		}
	}

	resp := balances{
		LatestBlock: h.Ledger.LatestBlock().Hash(),
		Uncommitted: h.Ledger.PendingCount(),
		Issued:      h.Ledger.Issued().String(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAccount returns all the blocks touching the account, or every
// block when no account is provided.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accountID database.AccountID
	if account := web.Param(r, "account"); account != "" {
		var err error
		accountID, err = database.ToAccountID(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	blocks := h.Ledger.BlocksByAccount(accountID)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(h.NS, blocks), http.StatusOK)
}

// BlocksByNumber returns the blocks in the inclusive index range. The value
// "latest" can be used for either bound.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := parseIndex(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("from: %w", err), http.StatusBadRequest)
	}

	to, err := parseIndex(web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("to: %w", err), http.StatusBadRequest)
	}

	blocks := h.Ledger.Blocks(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(h.NS, blocks), http.StatusOK)
}

// VerifyChain walks the chain checking hashes and linkage.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid  bool   `json:"valid"`
		Length int    `json:"length"`
		Error  string `json:"error,omitempty"`
	}{
		Valid:  true,
		Length: h.Ledger.Length(),
	}

	if err := h.Ledger.VerifyChain(); err != nil {
		if !database.IsChainIntegrityError(err) {
			return err
		}
		resp.Valid = false
		resp.Error = err.Error()
		return web.Respond(ctx, w, resp, http.StatusConflict)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining asks the background worker to mine the pending pool.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.Ledger.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is disabled"), http.StatusBadRequest)
	}

	h.Ledger.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine runs a proof of work search for the pending pool and waits for the
// outcome. An interrupted search is reported, not treated as a failure.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.MiningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MiningTimeout)
		defer cancel()
	}

	result, err := h.Ledger.Mine(ctx)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, ledger.ErrStaleProof):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mine: %w", err)
	}

	resp := mined{
		Status:   result.Status.String(),
		Rounds:   result.Rounds,
		Duration: result.Duration.String(),
	}

	if result.Status != pow.Found {
		return web.Respond(ctx, w, resp, http.StatusServiceUnavailable)
	}

	blk := toBlock(h.NS, result.Block)
	resp.Block = &blk

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Accounts returns the named accounts known to the node.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	known := h.NS.Copy()

	accounts := make([]named, 0, len(known))
	for accountID, name := range known {
		accounts = append(accounts, named{Name: name, Account: accountID})
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return web.Respond(ctx, w, accounts, http.StatusOK)
}

// =============================================================================

func parseIndex(value string) (uint64, error) {
	if value == "latest" {
		return ledger.QueryLatest, nil
	}
	return strconv.ParseUint(value, 10, 64)
}
