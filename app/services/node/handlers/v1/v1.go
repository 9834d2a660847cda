// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/deadsgold/powledger/app/services/node/handlers/v1/public"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/events"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/deadsgold/powledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *zap.SugaredLogger
	Ledger        *ledger.Ledger
	NS            *nameservice.NameService
	Evts          *events.Events
	MiningTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:           cfg.Log,
		Ledger:        cfg.Ledger,
		NS:            cfg.NS,
		Evts:          cfg.Evts,
		MiningTimeout: cfg.MiningTimeout,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/balances/list", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:account", pbl.Balances)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.BlocksByAccount)
	app.Handle(http.MethodGet, version, "/blocks/list/:account", pbl.BlocksByAccount)
	app.Handle(http.MethodGet, version, "/blocks/range/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/chain/verify", pbl.VerifyChain)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
	app.Handle(http.MethodPost, version, "/mining/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list/:account", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}
