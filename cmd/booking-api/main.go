// README: Entry point; loads config, wires services and serves the booking widget API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"matasaa/internal/backend"
	"matasaa/internal/config"
	"matasaa/internal/events"
	httptransport "matasaa/internal/http"
	"matasaa/internal/infra"
	"matasaa/internal/logging"
	"matasaa/internal/maps"
	"matasaa/internal/modules/booking"
	"matasaa/internal/modules/pricing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Service)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("booking api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	client := backend.NewClient(cfg.Backend)

	opts := []pricing.Option{pricing.WithLogger(log)}
	routes, err := maps.NewRouteService(cfg.Maps.APIKey, log)
	if err != nil {
		return err
	}
	if routes.Enabled() {
		opts = append(opts, pricing.WithDistanceProvider(routes))
	} else {
		log.Info("maps api key not configured, local estimates use the placeholder distance")
	}
	estimator := pricing.NewEstimator(client, cfg.Pricing, loc, opts...)

	var store pricing.QuoteStore = pricing.NewMemoryStore(cfg.Quote.TTL)
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = pricing.NewRedisStore(rdb, cfg.Quote.TTL)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer kp.Close()
		pub = kp
	}

	var ledger booking.Ledger
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		ledger = booking.NewStore(pool)
	}

	quotes := pricing.NewService(estimator, store, pub, log)
	bookings := booking.NewService(booking.Deps{
		Transport: client,
		Quotes:    quotes,
		Ledger:    ledger,
		Events:    pub,
		Vehicles:  booking.NewVehicleSet(cfg.Pricing.VehicleMultipliers),
		Log:       log,
	})

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Quotes:   quotes,
		Booking:  bookings,
		Currency: cfg.Pricing.Currency,
		Log:      log,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
