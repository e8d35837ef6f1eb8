package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geotrace/internal/adapters/dns"
	"geotrace/internal/adapters/geoip"
	httpadapter "geotrace/internal/adapters/http"
	"geotrace/internal/adapters/sqlite"
	"geotrace/internal/config"
	"geotrace/internal/ports"
	"geotrace/internal/scoring"
	"geotrace/internal/services/analyzer"
)

func main() {
	cfg := config.Load()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	// Wire adapters to the pipeline through its ports.
	var _ ports.HistoryRepository = store

	resolver := dns.New(cfg.ResolveTimeout)
	geo := geoip.New(cfg.GeoAPIBaseURL, cfg.GeoTimeout)
	engine := scoring.New(scoring.DefaultRuleset())
	svc := analyzer.New(resolver, geo, engine, store)
	var _ ports.Analyzer = svc

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpadapter.New(svc, cfg.RateLimitRPS, cfg.RateLimitBurst).Routes(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("listening on %s (env %s, db %s)", cfg.ListenAddr, cfg.Env, cfg.DBPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}
}
