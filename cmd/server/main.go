// FILE: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wisatakota/internal/app"
	"wisatakota/internal/config"
	"wisatakota/internal/logger"
	"wisatakota/internal/places"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (PORT overrides it; default :5000)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	listen := listenAddr(*addr, cfg)

	logger.InitLogger(cfg.Env)
	defer logger.Sync()
	log := logger.Log

	if cfg.Provider.APIKey == "" {
		log.Warn("SERPAPI_KEY is not set; provider calls will be rejected")
	}

	search := places.NewService(places.Options{
		BaseURL:  cfg.Provider.BaseURL,
		APIKey:   cfg.Provider.APIKey,
		Timeout:  cfg.Provider.Timeout,
		RetryMax: cfg.Provider.RetryMax,
		Logger:   log.Named("places"),
	})

	appCfg := app.DefaultConfig()
	appCfg.SecretKey = cfg.SecretKey
	appCfg.CacheTTL = cfg.CacheTTL
	appCfg.SessionTTL = cfg.SessionTTL
	appCfg.SecureCookies = cfg.Env == "production"

	srv, err := app.NewServer(appCfg, search, log)
	if err != nil {
		log.Fatal("failed to initialize server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, listen); err != nil {
		log.Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// listenAddr picks the listen address. PORT, when set, overrides the -addr
// flag so platforms that assign a port always win.
func listenAddr(flagAddr string, cfg *config.Config) string {
	if os.Getenv("PORT") != "" || flagAddr == "" {
		return cfg.Addr()
	}
	return flagAddr
}
