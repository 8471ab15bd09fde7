/**
 * @description
 * This is the main entry point for the payments-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the payment gateway client, message broker, repository, the core
 * application service, the background scheduler, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/razorpay: Client for the Razorpay API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/ourrapartment10-dot/payments-service/internal/api"
	"github.com/ourrapartment10-dot/payments-service/internal/app"
	"github.com/ourrapartment10-dot/payments-service/internal/config"
	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
	"github.com/ourrapartment10-dot/payments-service/pkg/razorpay"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A local .env is optional; in deployed environments configuration comes
	// from the process environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.SessionJWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"session jwt secret must be configured\" env=SESSION_JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting payments-service\" port=%s", cfg.ServerPort)

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts behind pgbouncer.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// The service only publishes events; a broker outage degrades to a no-op
	// producer rather than blocking payment processing.
	var producer rabbitmq.Publisher
	eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	gateway := razorpay.NewClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	var rateLimiter app.RateLimiter
	rateLimitingEnabled := cfg.SubmitRateLimitPerMinute > 0 || cfg.OrderRateLimitPerMinute > 0
	if rateLimitingEnabled {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					rateLimiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	repository := store.NewPostgresRepository(dbpool)

	paymentService := app.NewService(
		repository,
		gateway,
		producer,
		rateLimiter,
		cfg.SubscriptionTrialDays,
		cfg.SubmitRateLimitPerMinute,
		cfg.OrderRateLimitPerMinute,
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	jobs := app.NewJobs(repository, producer, logger)
	scheduler := app.NewScheduler(jobs, logger, cfg)
	scheduler.Start()

	handlers := api.NewHandlers(paymentService)
	router := api.Routes(handlers, cfg.SessionJWTSecret)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	// Let in-flight scheduled jobs finish before exiting.
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
