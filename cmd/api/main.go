package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rarepair-api/internal/application/verification"
	"github.com/rarepair-api/internal/config"
	"github.com/rarepair-api/internal/infrastructure/allocation"
	"github.com/rarepair-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/rarepair-api/internal/infrastructure/jwt"
	"github.com/rarepair-api/internal/infrastructure/memstore"
	s3infra "github.com/rarepair-api/internal/infrastructure/s3"
	"github.com/rarepair-api/internal/infrastructure/smtp"
	"github.com/rarepair-api/internal/infrastructure/sns"
	transporthttp "github.com/rarepair-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for medical documents.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Verification code store: in-process by default, DynamoDB when the
	// service runs with more than one replica.
	var codeStore verification.CodeStore
	if cfg.CodeStoreBackend == "dynamo" {
		codeStore = dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)
	} else {
		codeStore = memstore.New()
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		HospitalRepo:     dynamo.NewHospitalRepo(dynamoClient, cfg.DynamoTables.Hospitals),
		MatchRepo:        dynamo.NewMatchRepo(dynamoClient, cfg.DynamoTables.Matches),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		DocumentRepo:     dynamo.NewDocumentRepo(dynamoClient, cfg.DynamoTables.Documents),
		CodeStore:        codeStore,
		S3Store:          s3Store,
		Scorer:           allocation.NewClient(cfg),
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
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
	log.Println("Server stopped")
}
