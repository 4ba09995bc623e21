package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkdesk.app/internal/auth"
	"parkdesk.app/internal/config"
	"parkdesk.app/internal/devapi"
	"parkdesk.app/internal/obs"
)

var version = "0.3.0"

func main() {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := obs.NewLogger(cfg.Environment).With().Str("service", "parkdesk-devapi").Logger()
	obs.Init()

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("configure token signer")
	}

	store := devapi.NewStore()
	adminLogin, err := devapi.Seed(store)
	if err != nil {
		log.Fatal().Err(err).Msg("seed demo data")
	}
	log.Info().Str("admin", adminLogin).Msg("demo data loaded")

	api := devapi.New(store, signer, log, devapi.Options{
		LoginRate:  float64(cfg.LoginRate),
		LoginBurst: cfg.LoginBurst,
		Version:    version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("version", version).Msg("starting parkdesk-devapi")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info().Msg("stopped")
}
