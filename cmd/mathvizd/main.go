package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mathviz/internal/api/http"
	auth "github.com/mind-engage/mathviz/internal/auth/middleware"
	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/config"
	"github.com/mind-engage/mathviz/internal/db"
	"github.com/mind-engage/mathviz/internal/export"
	"github.com/mind-engage/mathviz/internal/ledger"
	"github.com/mind-engage/mathviz/internal/logging"
	"github.com/mind-engage/mathviz/internal/storage"
	"github.com/mind-engage/mathviz/internal/variants"
)

func main() {
	cfg := config.FromEnv()
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	log := logging.New("mathvizd")

	if err := run(cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Variants + datasets ---
	reg, err := variants.Load(cfg.VariantsFile)
	if err != nil {
		return err
	}
	svc := browse.New(reg, cfg.DataRoot)

	// --- DB + export sink ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}
	sink := export.NewSink(bs, ledger.NewRepo(dbh))

	// --- Auth (local JWT) ---
	if cfg.Mode == config.ModeOnline && cfg.AuthSecret == "supersecret-dev-key" {
		log.Warn("AUTH_HMAC_SECRET is the development default")
	}
	authSvc := auth.NewAuthService(cfg.AuthSecret,
		auth.WithAdmin(cfg.AdminUser, cfg.AdminPassHash),
		auth.WithDevLogin(cfg.Mode == config.ModeOffline))

	r := api.NewRouter(api.Deps{
		Browse:        svc,
		Auth:          authSvc,
		Sink:          sink,
		LocalAuth:     cfg.EnableLocalAuth,
		GuestAuth:     cfg.EnableGuestAuth,
		SecureCookies: cfg.Mode == config.ModeOnline,
		CORSOrigins:   cfg.CORSOrigins(),
		Ready:         dbh.PingContext,
	})

	// Warm the default variant before serving so the first request does not
	// pay for the load.
	if names := reg.Names(); len(names) > 0 {
		if _, _, err := svc.LoadDataset(names[0]); err != nil {
			log.Warn("preload failed", "variant", names[0], "err", err)
		}
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "data_root", cfg.DataRoot)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
