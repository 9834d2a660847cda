package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/deadsgold/powledger/app/services/node/handlers"
	"github.com/deadsgold/powledger/foundation/blockchain/database"
	"github.com/deadsgold/powledger/foundation/blockchain/difficulty"
	"github.com/deadsgold/powledger/foundation/blockchain/genesis"
	"github.com/deadsgold/powledger/foundation/blockchain/ledger"
	"github.com/deadsgold/powledger/foundation/blockchain/pow"
	"github.com/deadsgold/powledger/foundation/blockchain/storage/disk"
	"github.com/deadsgold/powledger/foundation/blockchain/validator"
	"github.com/deadsgold/powledger/foundation/blockchain/worker"
	"github.com/deadsgold/powledger/foundation/events"
	"github.com/deadsgold/powledger/foundation/logger"
	"github.com/deadsgold/powledger/foundation/nameservice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// websocketPrefix marks the events forwarded to connected viewers.
const websocketPrefix = "viewer:"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigin      string        `conf:"default:*"`
		}
		State struct {
			Beneficiary   string        `conf:"default:miner1"`
			DBPath        string        `conf:"default:zblock/blocks.db"`
			Workers       int           `conf:"default:1"`
			ChunkSize     uint64        `conf:"default:65536"`
			RandomStart   bool          `conf:"default:false"`
			AutoMine      bool          `conf:"default:true"`
			MiningTimeout time.Duration `conf:"default:1m"`
			MaxRetries    uint64        `conf:"default:3"`
		}
		Genesis struct {
			Path string `conf:"default:zblock/genesis.json"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
		Policy struct {
			Allowlist     []string      `conf:"help:accounts allowed to transact, empty allows all"`
			MaxAmount     string        `conf:"help:largest amount a transaction may move"`
			RemoteURL     string        `conf:"help:external approval service"`
			RemoteTimeout time.Duration `conf:"default:5s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "single node proof of work ledger",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Ledger Support

	gen, err := genesis.Load(cfg.Genesis.Path)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	// The beneficiary is a name from the name service or a raw account and is
	// credited with the mining reward for every mined block.
	beneficiary := ns.Resolve(cfg.State.Beneficiary)
	if !beneficiary.IsAccountID() {
		return fmt.Errorf("beneficiary %q is not a known name or account", cfg.State.Beneficiary)
	}

	policy, err := buildPolicy(cfg.Policy.Allowlist, cfg.Policy.MaxAmount, cfg.Policy.RemoteURL, cfg.Policy.RemoteTimeout, log)
	if err != nil {
		return err
	}

	storage, err := disk.New(cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// The ledger packages accept a function of this signature to allow the
	// application to log. The viewer messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, websocketPrefix) {
			evts.Send(strings.TrimSpace(strings.TrimPrefix(s, websocketPrefix)))
		}
	}

	engineOpts := []pow.Option{
		pow.WithWorkers(cfg.State.Workers),
		pow.WithChunkSize(cfg.State.ChunkSize),
		pow.WithEvHandler(ev),
	}
	if cfg.State.RandomStart {
		engineOpts = append(engineOpts, pow.WithRandomStart())
	}

	l, err := ledger.New(ledger.Config{
		Genesis:     gen,
		Storage:     storage,
		Policy:      policy,
		Engine:      pow.New(engineOpts...),
		Controller:  difficulty.New(gen.AdjustmentInterval, gen.TargetDuration()),
		Beneficiary: beneficiary,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer l.Shutdown()

	// The worker package mines the pending pool in the background. The worker
	// will register itself with the ledger.
	if cfg.State.AutoMine {
		worker.Run(l, worker.Config{
			MiningTimeout: cfg.State.MiningTimeout,
			MaxRetries:    cfg.State.MaxRetries,
			EvHandler:     ev,
		})
	}

	st := l.Status()
	log.Infow("startup", "status", "ledger ready", "length", st.Length, "latest", st.LatestHash, "difficulty", st.Difficulty, "policy", st.Policy)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, l)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:      shutdown,
		Log:           log,
		Ledger:        l,
		NS:            ns,
		Evts:          evts,
		CorsOrigin:    cfg.Web.CorsOrigin,
		MiningTimeout: cfg.State.MiningTimeout,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// buildPolicy combines the configured gates. With nothing configured every
// transaction is accepted.
func buildPolicy(allowlist []string, maxAmount string, remoteURL string, remoteTimeout time.Duration, log *zap.SugaredLogger) (validator.Policy, error) {
	var policies validator.All

	if len(allowlist) > 0 {
		accounts := make([]database.AccountID, len(allowlist))
		for i, account := range allowlist {
			accountID, err := database.ToAccountID(account)
			if err != nil {
				return nil, fmt.Errorf("allowlist %q: %w", account, err)
			}
			accounts[i] = accountID
		}
		policies = append(policies, validator.NewAllowlist(accounts...))
	}

	if maxAmount != "" {
		limit, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return nil, fmt.Errorf("max amount %q: %w", maxAmount, err)
		}
		policies = append(policies, validator.MaxAmount{Limit: limit})
	}

	if remoteURL != "" {
		ev := func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
		}
		policies = append(policies, validator.NewRemote(remoteURL, remoteTimeout, ev))
	}

	switch len(policies) {
	case 0:
		return validator.AcceptAll{}, nil
	case 1:
		return policies[0], nil
	}

	return policies, nil
}
