package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/attendance"
	"ms-registration/internal/attendance/event_api"
	attendanceredis "ms-registration/internal/attendance/redis"
	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/mailer"
	"ms-registration/internal/orders"
	ordersdb "ms-registration/internal/orders/db"
	"ms-registration/internal/orders/order_api"
	"ms-registration/internal/registration"
	"ms-registration/internal/registration/auth_api"
	qr_generator "ms-registration/internal/tickets/qr_generator"
	tickets "ms-registration/internal/tickets/service"
	"ms-registration/internal/tickets/template"
	usersdb "ms-registration/internal/users/db"
	"ms-registration/internal/utils"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	if cfg.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, check-in lock disabled: %v", cfg.Addr, err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Registration Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Warn("DATABASE", fmt.Sprintf("Migrations not applied: %v", err))
	}

	redisClient := connectRedis(cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var checkInLock attendance.CheckInLock
	if redisClient != nil {
		checkInLock = attendanceredis.NewLock(redisClient, cfg.Redis.CheckInLockTTL)
	}

	var events *kafka.Events
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		topics := []string{
			cfg.Kafka.Topics.RegistrationCompleted,
			cfg.Kafka.Topics.AttendanceCheckedIn,
			cfg.Kafka.Topics.OrderPlaced,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		events = kafka.NewEvents(producer, cfg.Kafka.Topics)
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Info("KAFKA", "Kafka disabled, domain events will not be published")
	}

	mail := mailer.NewSMTPMailer(cfg.Email)
	qrGen := qr_generator.NewQRGenerator(cfg.Frontend.BaseURL, cfg.Frontend.LogoPath)
	ticketService := tickets.NewTicketService(qrGen, template.NewTicketPassGenerator(), log)

	userStore := &usersdb.DB{Bun: bunDB}
	orderStore := &ordersdb.DB{Bun: bunDB}

	// kafka.Events may be a typed nil; keep the interfaces genuinely nil
	// when Kafka is off.
	var regEvents registration.EventPublisher
	var attEvents attendance.EventPublisher
	var orderEvents orders.EventPublisher
	if events != nil {
		regEvents, attEvents, orderEvents = events, events, events
	}

	registrationService := registration.NewService(userStore, mail, ticketService, regEvents, log)
	attendanceService := attendance.NewService(userStore, mail, checkInLock, attEvents, log, cfg.Frontend.BaseURL)
	orderService := orders.NewService(orderStore, orderEvents, log)

	authHandler := auth_api.NewHandler(registrationService, attendanceService, log)
	eventHandler := event_api.NewHandler(attendanceService, ticketService, userStore, log)
	orderHandler := order_api.NewHandler(orderService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "successfull",
			"message": "Welcome to the home page",
		})
	})

	authHandler.RegisterRoutes(r)
	eventHandler.RegisterRoutes(r)
	orderHandler.RegisterRoutes(r)
	log.Info("ROUTER", "Routes registered under /api/auth, /api/events and /api/orders")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Registration Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Registration Service shutdown complete")
	}
}
