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

	"github.com/admin-console-api/internal/application/auth"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/admin-console-api/internal/infrastructure/jwt"
	"github.com/admin-console-api/internal/infrastructure/smtp"
	transporthttp "github.com/admin-console-api/internal/transport/http"
	"github.com/joho/godotenv"
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

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	operatorRepo := dynamo.NewOperatorRepo(dynamoClient, cfg.DynamoTables.Operators)

	// Seed the bootstrap admin operator when credentials are configured.
	if jwtProvider != nil && cfg.AdminEmail != "" {
		authSvc := auth.NewService(operatorRepo, jwtProvider)
		if err := authSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("WARN: admin seed failed: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		AccountRepo:     dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		TransactionRepo: dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions),
		TaskRepo:        dynamo.NewTaskRepo(dynamoClient, cfg.DynamoTables.Tasks),
		CouponRepo:      dynamo.NewCouponRepo(dynamoClient, cfg.DynamoTables.Coupons),
		OperatorRepo:    operatorRepo,
		Mailer:          mailer,
		JWTProvider:     jwtProvider,
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
