package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papertrader/internal/accounts"
	"papertrader/internal/admin"
	"papertrader/internal/auth"
	"papertrader/internal/config"
	"papertrader/internal/db"
	"papertrader/internal/execution"
	"papertrader/internal/health"
	"papertrader/internal/httpserver"
	"papertrader/internal/marketdata"
	"papertrader/internal/orders"
	"papertrader/internal/prefs"
	"papertrader/internal/transactions"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (env vars override file values)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.DSN, cfg.Database.MinConns, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	source := marketdata.NewSource(cfg.Market.SymbolBases())

	accountStore := accounts.NewStore(pool)
	accountSvc := accounts.NewService(pool, accountStore, cfg.Market.Seed())
	orderStore := orders.NewStore(pool)
	orderSvc := orders.NewService(orderStore, source)
	txStore := transactions.NewStore(pool)
	txSvc := transactions.NewService(txStore)
	prefSvc := prefs.NewService(prefs.NewStore(pool))

	// Make sure the preference singleton reflects whatever accounts survived
	// the last run before serving reads.
	startupAccounts, err := accountSvc.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err := prefSvc.RefreshAccounts(ctx, startupAccounts); err != nil {
		log.Fatal(err)
	}

	execStore := execution.NewStore(pool, accountStore, orderStore, txStore)
	engine := execution.NewEngine(execStore, source, logger)
	scheduler := execution.NewScheduler(engine, cfg.Market.Interval(), logger)

	authSvc := auth.NewService(cfg.Auth.Issuer, []byte(cfg.Auth.Secret), cfg.Auth.TokenTTL())
	if cfg.Auth.ClientID != "" {
		authSvc.SetClient(cfg.Auth.ClientID, cfg.Auth.ClientSecretHash)
	}

	authMode := "open"
	if cfg.Auth.Required {
		authMode = "required"
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:         auth.NewHandler(authSvc),
		AuthService:         authSvc,
		AuthRequired:        cfg.Auth.Required,
		AccountsHandler:     accounts.NewHandler(accountSvc),
		OrderHandler:        orders.NewHandler(orderSvc),
		TransactionsHandler: transactions.NewHandler(txSvc),
		PrefsHandler:        prefs.NewHandler(prefSvc),
		MarketHandler:       marketdata.NewHandler(source),
		StreamHandler:       marketdata.NewQuoteWS(source, cfg.Server.WSOrigin, cfg.Market.Interval()),
		HealthHandler:       health.NewHandler(pool, scheduler, time.Now(), authMode, cfg.Server.Addr, cfg.Admin.InternalToken),
		AdminHandler:        admin.NewHandler(accountSvc, prefSvc, logger),
		InternalToken:       cfg.Admin.InternalToken,
		CORSOrigin:          cfg.Server.WSOrigin,
		Logger:              logger,
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	scheduler.Start(ctx)

	log.Printf("server listening on %s", cfg.Server.Addr)
	log.Printf("health endpoint: http://%s/health", cfg.Server.Addr)
	log.Printf("auth mode: %s, fill interval: %s", authMode, cfg.Market.Interval())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		log.Printf("scheduler stop: %v", err)
	}
}
