package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clinicboard/clinicboard/libs/config"
	"github.com/clinicboard/clinicboard/libs/db"
	"github.com/clinicboard/clinicboard/libs/httpx"
	"github.com/clinicboard/clinicboard/libs/kafkax"
	otelx "github.com/clinicboard/clinicboard/libs/otel"
	"github.com/clinicboard/clinicboard/libs/runtime"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/handlers"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/outbox"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/scheduling"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/storage"
)

func transitionPolicy(logger *slog.Logger) scheduling.TransitionPolicy {
	switch mode := config.String("STATUS_TRANSITION_POLICY", "allow-all"); mode {
	case "strict":
		return scheduling.StrictTransitions()
	case "allow-all", "":
		return scheduling.AllowAllTransitions()
	default:
		logger.Warn("unknown transition policy, defaulting to allow-all", "value", mode)
		return scheduling.AllowAllTransitions()
	}
}

func slotConfig(logger *slog.Logger) handlers.SlotConfig {
	stepMinutes, err := strconv.Atoi(config.String("CLINIC_SLOT_MINUTES", "30"))
	if err != nil || stepMinutes <= 0 {
		logger.Warn("invalid slot step, defaulting to 30 minutes")
		stepMinutes = 30
	}
	return handlers.SlotConfig{
		DayStart: config.String("CLINIC_DAY_START", "09:00"),
		DayEnd:   config.String("CLINIC_DAY_END", "17:00"),
		Step:     time.Duration(stepMinutes) * time.Minute,
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rateLimitMiddleware(logger *slog.Logger) httpx.Middleware {
	limit, err := strconv.Atoi(config.String("RATE_LIMIT_REQUESTS", "120"))
	if err != nil || limit <= 0 {
		limit = 120
	}
	window := time.Minute

	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
		})
		return httpx.NewRedisRateLimiter(rdb, limit, window, "clinic").Middleware(logger, true)
	}
	return httpx.NewRateLimiter(limit, window).Middleware()
}

func main() {
	service := config.String("SERVICE_NAME", "clinic-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	store := storage.New(pool, outboxRepo)
	engine := scheduling.NewEngine(store, transitionPolicy(logger))

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	appointmentHandler := handlers.NewAppointmentHandler(engine, logger)
	patientHandler := handlers.NewPatientHandler(store, logger)
	doctorHandler := handlers.NewDoctorHandler(store, slotConfig(logger), logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	mux.HandleFunc("POST /api/v1/appointments", appointmentHandler.Create)
	mux.HandleFunc("GET /api/v1/appointments", appointmentHandler.List)
	mux.HandleFunc("GET /api/v1/appointments/{id}", appointmentHandler.Get)
	mux.HandleFunc("PUT /api/v1/appointments/{id}", appointmentHandler.Update)
	mux.HandleFunc("PATCH /api/v1/appointments/{id}/status", appointmentHandler.SetStatus)
	mux.HandleFunc("DELETE /api/v1/appointments/{id}", appointmentHandler.Delete)

	mux.HandleFunc("POST /api/v1/patients", patientHandler.Create)
	mux.HandleFunc("GET /api/v1/patients", patientHandler.List)
	mux.HandleFunc("GET /api/v1/patients/{id}", patientHandler.Get)
	mux.HandleFunc("PUT /api/v1/patients/{id}", patientHandler.Update)
	mux.HandleFunc("DELETE /api/v1/patients/{id}", patientHandler.Delete)

	mux.HandleFunc("POST /api/v1/doctors", doctorHandler.Create)
	mux.HandleFunc("GET /api/v1/doctors", doctorHandler.List)
	mux.HandleFunc("GET /api/v1/doctors/slots", doctorHandler.OpenSlots)
	mux.HandleFunc("GET /api/v1/doctors/{id}", doctorHandler.Get)
	mux.HandleFunc("PUT /api/v1/doctors/{id}", doctorHandler.Update)
	mux.HandleFunc("DELETE /api/v1/doctors/{id}", doctorHandler.Delete)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
			AllowCredentials: config.String("CORS_ALLOW_CREDENTIALS", "") == "true",
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
		rateLimitMiddleware(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "clinic")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
