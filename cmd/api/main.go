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

	"github.com/flowgatex/identity-api/internal/application/bridge"
	"github.com/flowgatex/identity-api/internal/config"
	"github.com/flowgatex/identity-api/internal/infrastructure/dynamo"
	googleinfra "github.com/flowgatex/identity-api/internal/infrastructure/google"
	jwtinfra "github.com/flowgatex/identity-api/internal/infrastructure/jwt"
	"github.com/flowgatex/identity-api/internal/infrastructure/memory"
	s3infra "github.com/flowgatex/identity-api/internal/infrastructure/s3"
	"github.com/flowgatex/identity-api/internal/infrastructure/smtp"
	"github.com/flowgatex/identity-api/internal/infrastructure/sns"
	transporthttp "github.com/flowgatex/identity-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	deps := &transporthttp.Deps{
		Mailer: smtp.NewMailer(cfg),
	}

	// SNS SMS sender (optional — graceful fallback).
	if sender, err := sns.NewSender(cfg); err == nil {
		deps.SMSSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Google ID token verifier (optional).
	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = googleinfra.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, Google sign-up disabled")
	}

	var closeBridge func()
	if cfg.MockMode {
		closeBridge = wireMockMode(cfg, deps)
		defer closeBridge()
	} else {
		wireDynamo(cfg, deps)
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
		log.Printf("Server starting on :%s (env=%s, mock=%v)", cfg.AppPort, cfg.AppEnv, cfg.MockMode)
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
	log.Println("Server stopped")
}

// wireDynamo bootstraps DynamoDB tables and attaches the production stores.
func wireDynamo(cfg *config.Config, deps *transporthttp.Deps) {
	client := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), client, cfg.DynamoTables)

	deps.UserRepo = dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
	deps.SessionRepo = dynamo.NewSessionRepo(client, cfg.DynamoTables.Sessions)
	deps.VerificationRepo = dynamo.NewVerificationRepo(client, cfg.DynamoTables.Verifications)
	deps.AuthCodeRepo = dynamo.NewAuthCodeRepo(client, cfg.DynamoTables.AuthCodes)

	s3Client := s3infra.NewClient(cfg)
	deps.S3Store = s3infra.NewStore(s3Client, cfg.S3BucketName)

	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}
}

// wireMockMode attaches seeded in-memory stores plus the auth hub, profile
// hub, and session bridge. Returns a func that tears the bridge down.
func wireMockMode(cfg *config.Config, deps *transporthttp.Deps) func() {
	users := memory.NewUserStore()
	codes := memory.NewAuthCodeStore()
	memory.Seed(context.Background(), users, codes)

	deps.UserRepo = users
	deps.SessionRepo = memory.NewSessionStore()
	deps.VerificationRepo = memory.NewVerificationStore()
	deps.AuthCodeRepo = codes

	authHub := memory.NewAuthHub(cfg.SessionFile)
	profileHub := memory.NewProfileHub()
	users.OnProfileChange(profileHub.Publish)

	b := bridge.New(authHub, profileHub, slog.Default())
	b.Start()

	deps.AuthNotifier = authHub
	deps.Bridge = b

	// Mock mode needs no key files on disk.
	p, err := jwtinfra.NewEphemeralProvider(cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("ephemeral JWT provider: %v", err)
	}
	deps.JWTProvider = p

	log.Printf("Mock mode: seeded stores active, session file %q", cfg.SessionFile)
	return b.Close
}
