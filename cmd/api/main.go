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

	"github.com/go-wallet-verify/internal/application/verification"
	"github.com/go-wallet-verify/internal/config"
	"github.com/go-wallet-verify/internal/infrastructure/chains"
	"github.com/go-wallet-verify/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-wallet-verify/internal/infrastructure/jwt"
	"github.com/go-wallet-verify/internal/infrastructure/redisdb"
	snsinfra "github.com/go-wallet-verify/internal/infrastructure/sns"
	transporthttp "github.com/go-wallet-verify/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Ephemeral session store + locks.
	redisClient := redisdb.NewClient(cfg)
	store := redisdb.NewSessionStore(redisClient, cfg.SessionTTL)
	locker := redisdb.NewLocker(redisClient)

	// Bootstrap the wallet-bindings table (creates it if missing).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTableBindings)
	bindings := dynamo.NewWalletBindingRepo(dynamoClient, cfg.DynamoTableBindings)

	// Service-token provider (optional — management routes stay open without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: service-token provider not available: %v", err)
	}

	// Outcome notifier: SNS when a topic is configured, structured log otherwise.
	var notifier verification.Notifier = verification.LogNotifier{}
	if cfg.SNSTopicARN != "" {
		if n, err := snsinfra.NewNotifier(cfg); err == nil {
			notifier = n
		} else {
			log.Printf("WARN: SNS notifier not available: %v", err)
		}
	}

	svc := verification.NewService(verification.ServiceDeps{
		Store:    store,
		Locker:   locker,
		Chains:   chains.NewRegistry(),
		Bindings: bindings,
		Notifier: notifier,
		Options: verification.Options{
			SessionTTL:              cfg.SessionTTL,
			LockTTL:                 cfg.LockTTL,
			DeleteOnFailedSignature: cfg.DeleteOnFailedSignature,
		},
	})

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Service:     svc,
		JWTProvider: jwtProvider,
	})

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
	_ = redisClient.Close()
	log.Println("Server stopped")
}
