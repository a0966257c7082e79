package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"turnero/internal/api"
	"turnero/internal/config"
	"turnero/internal/logger"
	"turnero/internal/repository"
	"turnero/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logr, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	loc := cfg.Location()
	sender, err := newSender(cfg, logr, loc)
	if err != nil {
		logr.Fatal("failed to build notifier", zap.Error(err))
	}
	var (
		notifier   service.Notifier
		deliveries *service.AsyncNotifier
	)
	if sender != nil {
		deliveries = service.NewAsyncNotifier(sender)
		notifier = deliveries
	}

	bookingSvc := service.NewBookingService(store, notifier, logr)
	adminSvc := service.NewAdminService(store, notifier, logr)
	authSvc := service.NewAdminAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL())
	if !authSvc.Enabled() {
		logr.Warn("admin credentials not configured, admin API is unauthenticated")
	}

	jobs := service.NewJobService(store, notifier, logr, loc, cfg.CancelledRetention())
	scheduler, err := jobs.Start(ctx, cfg.ReminderCron, cfg.PurgeCron)
	if err != nil {
		logr.Fatal("failed to start cron jobs", zap.Error(err))
	}

	router := api.NewRouter(api.RouterDeps{
		Booking:          bookingSvc,
		Admin:            adminSvc,
		AdminAuth:        authSvc,
		Logger:           logr,
		AllowedOrigins:   cfg.AllowedOrigins(),
		BookingLimiter:   api.NewRateLimiter(cfg.BookingRatePerMinute, cfg.TrustedProxyHops),
		TrustedProxyHops: cfg.TrustedProxyHops,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(logr),
	}

	go func() {
		logr.Info("server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if deliveries != nil {
		if err := deliveries.Wait(shutdownCtx); err != nil {
			logr.Warn("pending notifications not delivered before shutdown", zap.Error(err))
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.DocumentStore, func(), error) {
	if cfg.StoreDriver != "postgres" {
		store := repository.NewFileStore(cfg.DataFile, logr)
		logr.Info("using file store", zap.String("path", store.Path()))
		return store, func() {}, nil
	}

	database, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewPostgresStore(database, cfg.StoreKey)
	if err := store.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return store, closeDB(database, logr), nil
}

func closeDB(database *sql.DB, logr *zap.Logger) func() {
	return func() {
		if err := database.Close(); err != nil {
			logr.Warn("close database", zap.Error(err))
		}
	}
}

// newSender returns nil when neither channel is configured. Senders are
// only assigned to the interfaces when non-nil.
func newSender(cfg *config.Config, logr *zap.Logger, loc *time.Location) (*service.SenderService, error) {
	var (
		email service.EmailSender
		sms   service.SMSSender
	)
	if s := service.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logr); s != nil {
		email = s
	}
	if s := service.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logr); s != nil {
		sms = s
	}
	if email == nil && sms == nil {
		return nil, nil
	}
	return service.NewSenderService(email, sms, logr, loc, cfg.BusinessName)
}
