package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bayline/queue-service/internal/config"
	"bayline/queue-service/internal/events"
	"bayline/queue-service/internal/httpapi"
	"bayline/queue-service/internal/logger"
	"bayline/queue-service/internal/queue"
	"bayline/queue-service/internal/store/postgres"
	"bayline/queue-service/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	zlog := logger.New()
	defer func() { _ = zlog.Sync() }()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	shutdownTracing := telemetry.Setup("queue-service", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: db connect: %v", err)
	}
	defer pool.Close()

	workingDay := queue.WorkingDay{
		OpenMinute:  cfg.OpenMinute,
		CloseMinute: cfg.CloseMinute,
		Interval:    cfg.SlotInterval,
	}

	recordStore := postgres.NewStore(pool, postgres.Options{WorkingDay: workingDay})
	if err := recordStore.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("FATAL: schema setup: %v", err)
	}

	var producer events.Producer = events.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer func() { _ = producer.Close() }()

	handler := httpapi.NewHandler(recordStore, httpapi.Options{
		Events:     producer,
		WorkingDay: workingDay,
		Capacity:   queue.Capacity{Bays: cfg.ServiceBays, AvgServiceMinutes: cfg.AvgServiceMinute},
		MinBuffer:  cfg.MinLeadBuffer,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", limiter.Middleware(httpapi.LoggingMiddleware(handler.Routes())))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(mux, "queue-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("INFO: queue-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
