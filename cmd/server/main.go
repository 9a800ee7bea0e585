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

	"eventlog/internal/config"
	"eventlog/internal/db"
	"eventlog/internal/event/repository"
	"eventlog/internal/event/service"
	"eventlog/internal/server"
	"eventlog/internal/telemetry"
	telemetryotel "eventlog/internal/telemetry/otel"
	"eventlog/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	pool, err := db.OpenPool(cfg.DBDriver, cfg.DSN(), db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	probeDatabase(ctx, pool, dialect)

	if cfg.DBApplySchema {
		if err := db.ApplySchema(ctx, pool, dialect); err != nil {
			log.Printf("database: %v", err)
		}
	}

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	emitters := telemetry.MultiEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("kafka: publishing recorded events to %s", cfg.EventsKafkaTopic)
	}

	svc := service.NewService(repository.NewSQLRepository(pool, dialect), emitters)
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHandler(server.Deps{
			Events:       svc,
			HealthPinger: pool,
			CORSOrigins:  cfg.CORSOriginsList(),
			ServiceName:  cfg.ServiceName,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownGrace())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async emits finish before closing their sinks.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka: close: %v", err)
		}
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// probeDatabase logs the database clock. A failure is logged and startup continues.
func probeDatabase(ctx context.Context, pool *sql.DB, dialect db.Dialect) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	now, err := db.Probe(probeCtx, pool, dialect)
	if err != nil {
		log.Printf("database: probe failed: %v", err)
		return
	}
	log.Printf("database connected: %s", now)
}
