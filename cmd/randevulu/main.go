package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"randevulu/internal/booking"
	"randevulu/internal/config"
	"randevulu/internal/directory"
	"randevulu/internal/events"
	"randevulu/internal/httpapi"
	"randevulu/internal/identity"
	"randevulu/internal/logging"
	"randevulu/internal/metrics"
	"randevulu/internal/notify"
	"randevulu/internal/realtime"
	"randevulu/internal/store/postgres"
	"randevulu/internal/telemetry"
	"randevulu/internal/worker"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	shutdownTracing := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "randevulu",
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, logger.Named("telemetry"))

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	st := postgres.NewStore(pool, postgres.Options{})
	dispatcher := notify.NewDispatcher(st, logger.Named("notify"))
	bookings := booking.NewService(st, dispatcher, logger.Named("booking"), booking.Options{Location: loc})
	dir := directory.NewService(st, logger.Named("directory"))
	ident := identity.NewService(st, logger.Named("identity"), identity.Options{SessionTTL: cfg.SessionTTL})

	hub := realtime.NewHub(logger.Named("realtime"))

	handler := httpapi.NewHandler(httpapi.Services{
		Bookings:      bookings,
		Directory:     dir,
		Notifications: dispatcher,
		Identity:      ident,
	}, httpapi.Options{
		Logger:   logger.Named("http"),
		Location: loc,
		Pinger:   st,
		Realtime: realtime.Handler(hub, ident, logger.Named("realtime")),
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:     cfg.RateLimitPerMinute,
		IPBurst:         cfg.RateLimitBurst,
		TenantPerMinute: cfg.TenantRateLimitPerMinute,
		TenantBurst:     cfg.TenantRateLimitBurst,
		TrustProxy:      cfg.TrustProxyHeaders,
	})

	routes := httpapi.AuthMiddleware(ident, limiter.Middleware(handler.Routes()))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(httpapi.LoggingMiddleware(logger.Named("http"), routes), "randevulu"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sink := events.New(events.Config{
		Sink:         cfg.EventSink,
		WebhookURL:   cfg.WebhookURL,
		WebhookToken: cfg.WebhookToken,
		RedisAddr:    cfg.RedisAddr,
		RedisChannel: cfg.RedisChannel,
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaTopic:   cfg.KafkaTopic,
	}, logger.Named("events"))
	publisher := events.Fanout(sink, hub)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher close", zap.Error(err))
		}
	}()

	if cfg.RelayInterval > 0 {
		relay := worker.NewRelay(st, publisher, logger.Named("relay"), cfg.RelayBatch)
		go worker.Start(ctx, "outbox-relay", cfg.RelayInterval, relay, logger)
	}
	if cfg.ReminderInterval > 0 && cfg.ReminderLead > 0 {
		reminders := worker.NewReminders(st, dispatcher, logger.Named("reminders"), worker.ReminderConfig{
			Lead:      cfg.ReminderLead,
			BatchSize: cfg.ReminderBatch,
			Lang:      cfg.ReminderLang,
			Location:  loc,
		})
		go worker.Start(ctx, "reminders", cfg.ReminderInterval, reminders, logger)
	}

	go func() {
		logger.Info("randevulu listening", zap.String("addr", server.Addr), zap.String("events", publisher.Name()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}
