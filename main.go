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
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/handlers"
	"github.com/yourusername/coinvest-api/logging"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logging.NewLogger("coinvest-api", cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.SeedPlans(db); err != nil {
		log.Fatalf("Failed to seed plans: %v", err)
	}
	if err := config.EnsureAdminUser(db, cfg); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	deps := handlers.Dependencies{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Notifier: notify.New(newMailer(cfg, log), log),
		Stellar:  utils.NewStellarClient(cfg.HorizonURL, cfg.StellarPayoutAccount),
	}

	storage, err := utils.NewS3Storage(context.Background(), utils.StorageConfig{
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		Bucket:    cfg.StorageBucket,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		log.WithError(err).Warn("proof storage disabled; deposits cannot be submitted")
	} else {
		deps.Storage = storage
	}

	deps.Investments = services.NewInvestmentService(db, log)
	scheduler, err := services.NewMaturityScheduler(cfg.MaturitySchedule, deps.Investments, log)
	if err != nil {
		log.Fatalf("Invalid MATURITY_SCHEDULE: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	stopCleanup := make(chan struct{})
	deps.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	deps.RateLimiter.StartCleanup(time.Minute, stopCleanup)
	defer close(stopCleanup)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting Coinvest API server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	deps.Notifier.Wait()
}

func newMailer(cfg *config.Config, log *logrus.Logger) utils.Mailer {
	if cfg.SMTPHost == "" {
		return &utils.LogMailer{Log: log}
	}
	return utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}
