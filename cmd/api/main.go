package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/config"
	"github.com/snaplink/snaplink-api/internal/domain/availability"
	"github.com/snaplink/snaplink-api/internal/domain/booking"
	"github.com/snaplink/snaplink-api/internal/domain/escrow"
	"github.com/snaplink/snaplink-api/internal/domain/payment"
	"github.com/snaplink/snaplink-api/internal/domain/pricing"
	"github.com/snaplink/snaplink-api/internal/domain/subscription"
	"github.com/snaplink/snaplink-api/internal/domain/wallet"
	"github.com/snaplink/snaplink-api/internal/domain/withdrawal"
	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/database"
	"github.com/snaplink/snaplink-api/internal/pkg/jwt"
	"github.com/snaplink/snaplink-api/internal/pkg/payos"
	"github.com/snaplink/snaplink-api/internal/pkg/push"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting SnapLink API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	var notifier push.Notifier = push.NopNotifier{}
	if cfg.FCMServerKey != "" {
		notifier = push.NewFCMNotifier(db, push.NewFCMClient(push.FCMConfig{
			ServerKey: cfg.FCMServerKey,
			ProjectID: cfg.FCMProjectID,
		}))
	}

	payosClient := payos.NewClient(payos.Config{
		BaseURL:     cfg.PayOSBaseURL,
		ClientID:    cfg.PayOSClientID,
		APIKey:      cfg.PayOSAPIKey,
		ChecksumKey: cfg.PayOSChecksumKey,
	})

	// ---------- Repositories ----------
	walletRepo := wallet.NewRepository(db)
	escrowRepo := escrow.NewRepository(db)
	pricingRepo := pricing.NewRepository(db)
	availabilityRepo := availability.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	withdrawalRepo := withdrawal.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)

	// ---------- Services ----------
	walletSvc := wallet.NewService(walletRepo)
	escrowSvc := escrow.NewService(escrowRepo, walletRepo)
	pricingSvc := pricing.NewService(pricingRepo, pricing.NewCalculator(int64(cfg.PlatformCommissionPct)))
	availabilitySvc := availability.NewService(availabilityRepo, bookingRepo)
	bookingSvc := booking.NewService(bookingRepo, pricingSvc, availabilitySvc, escrowSvc, notifier)
	paymentSvc := payment.NewService(paymentRepo, payosClient, cfg.PayOSChecksumKey, cfg.FrontendURL, bookingSvc, walletRepo, redis, notifier)
	bookingSvc.SetPaymentVoider(paymentSvc)
	subscriptionSvc := subscription.NewService(subscriptionRepo, paymentSvc)
	paymentSvc.SetSubscriptionActivator(subscriptionSvc)
	withdrawalSvc := withdrawal.NewService(withdrawalRepo, walletRepo, withdrawal.Limits{
		Min: cfg.WithdrawalMin,
		Max: cfg.WithdrawalMax,
	}, notifier)

	// ---------- Handlers ----------
	walletHandler := wallet.NewHandler(walletSvc)
	pricingHandler := pricing.NewHandler(pricingSvc)
	availabilityHandler := availability.NewHandler(availabilitySvc)
	bookingHandler := booking.NewHandler(bookingSvc)
	paymentHandler := payment.NewHandler(paymentSvc)
	withdrawalHandler := withdrawal.NewHandler(withdrawalSvc)
	subscriptionHandler := subscription.NewHandler(subscriptionSvc)

	authMiddleware := middleware.Auth(jwtService)
	photographerOnly := middleware.RequirePhotographer()
	moderatorOnly := middleware.RequireModerator()

	sweeper := subscription.NewWorker(subscriptionSvc, redis, cfg.SubscriptionSweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// ---------- Router ----------
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/pricing", pricingHandler.Routes())
		r.Mount("/availability", availabilityHandler.Routes(authMiddleware, photographerOnly))
		r.Get("/photographers/{photographerID}/schedule", availabilityHandler.Schedule)
		r.Get("/photographers/{photographerID}/availability", availabilityHandler.Check)
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/withdrawals", withdrawalHandler.Routes(authMiddleware, photographerOnly))
		r.Mount("/subscriptions", subscriptionHandler.Routes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/withdrawals", withdrawalHandler.AdminRoutes(authMiddleware, moderatorOnly))
			r.Mount("/subscriptions", subscriptionHandler.AdminRoutes(authMiddleware, moderatorOnly))
			r.Mount("/", walletHandler.AdminRoutes(authMiddleware, moderatorOnly))
		})
	})

	r.Mount("/webhooks", paymentHandler.WebhookRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
