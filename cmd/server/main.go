// Command server runs the employee benefits API.
//
// @title                      Employee Benefits API
// @version                    1.0
// @description                Discount catalog for employees with CSV bulk import.
// @BasePath                   /api/v1
// @securityDefinitions.basic  BasicAuth
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-benefits-backend/internal/config"
	httpapi "github.com/tbourn/go-benefits-backend/internal/http"
	"github.com/tbourn/go-benefits-backend/internal/observability"
	"github.com/tbourn/go-benefits-backend/internal/repo"
	"github.com/tbourn/go-benefits-backend/internal/services"
	"github.com/tbourn/go-benefits-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const purgeInterval = 15 * time.Minute

func main() {
	cfg := config.MustLoad()
	sysutil.SetupLogging(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	created, err := (&services.AuthService{DB: db}).EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}
	if created {
		log.Info().Msg("bootstrap admin created")
	}

	go purgeImportRuns(ctx, db)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", ver).Msg("api started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("api stopped")
}

// purgeImportRuns drops expired import reports until ctx is done.
func purgeImportRuns(ctx context.Context, db *gorm.DB) {
	svc := &services.ImportService{DB: db}
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.PurgeExpiredRuns(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purge import runs")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("purged import runs")
			}
		}
	}
}
