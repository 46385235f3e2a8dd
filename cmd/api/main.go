package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dashcrm-api/internal/config"
	"github.com/dashcrm-api/internal/infrastructure/dynamo"
	"github.com/dashcrm-api/internal/infrastructure/helena"
	jwtinfra "github.com/dashcrm-api/internal/infrastructure/jwt"
	"github.com/dashcrm-api/internal/infrastructure/notify"
	"github.com/dashcrm-api/internal/infrastructure/rediscache"
	"github.com/dashcrm-api/internal/infrastructure/smtp"
	"github.com/dashcrm-api/internal/infrastructure/sns"
	"github.com/dashcrm-api/internal/infrastructure/webhook"
	"github.com/dashcrm-api/internal/pkg/dispatch"
	transporthttp "github.com/dashcrm-api/internal/transport/http"
)

// deliveryTimeout bounds each background OTP delivery attempt.
const deliveryTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap the accounts table (creates it if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.AccountsTable)

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// OTP delivery: the automation webhook when configured, direct SNS/SMTP
	// otherwise.
	var sender transporthttp.CodeSender
	if cfg.OTPWebhookURL != "" {
		sender = webhook.NewNotifier(cfg.OTPWebhookURL)
	} else {
		var smsSender sns.SMSSender
		if s, err := sns.NewSender(cfg); err == nil {
			smsSender = s
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
		sender = notify.NewDirectSender(smsSender, smtp.NewMailer(cfg))
	}

	dispatcher := dispatch.New(slog.Default(), deliveryTimeout)

	deps := &transporthttp.Deps{
		Accounts:    dynamo.NewAccountRepo(dynamoClient, cfg.AccountsTable),
		Helena:      helena.NewClient(cfg.HelenaAPIURL),
		JWTProvider: jwtProvider,
		Sender:      sender,
		Dispatcher:  dispatcher,
		Cache:       rediscache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	// Let in-flight OTP deliveries finish before exiting.
	dispatcher.Wait()
	log.Println("Server stopped")
}
