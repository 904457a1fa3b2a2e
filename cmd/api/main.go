package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-community-go/pkg/utilities"
)

func main() {
	// best-effort: a missing .env falls back to the real environment
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-community-go")

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("load config: %v", err)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		sugar.Warn("JWT_SECRET is not set; using the built-in development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, db, err := app.OpenStores(ctx, cfg)
	if err != nil {
		sugar.Fatalf("open store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}
	sugar.Infow("store ready", "driver", cfg.Store)

	a := app.New(cfg, stores, sugar)
	if err := a.RoleService.EnsureDefaults(ctx); err != nil {
		sugar.Fatalf("seed default roles: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if db != nil {
		if err := db.PingContext(doneCtx); err != nil {
			sugar.Warnf("db ping on shutdown failed: %v", err)
		}
	}

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
