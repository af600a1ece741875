package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clinicboard/clinicboard/libs/config"
	"github.com/clinicboard/clinicboard/libs/db"
	"github.com/clinicboard/clinicboard/libs/httpx"
	"github.com/clinicboard/clinicboard/libs/kafkax"
	otelx "github.com/clinicboard/clinicboard/libs/otel"
	"github.com/clinicboard/clinicboard/libs/runtime"
	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/consumer"
	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/handlers"
	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/inbox"
	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/ingest"
	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/stats"
)

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "dashboard-service")
	port, err := config.Port("PORT", "8081")
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

	inboxRepo := inbox.NewRepository(pool)
	ingestor := ingest.New(pool, logger)
	startConsumer := func(topic string) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "dashboard-service"),
			Topic:   topic,
		}, ingestor.Handle)
		go eventConsumer.Run(ctx)
	}
	startConsumer(config.String("KAFKA_CONSUME_TOPIC", "clinic.appointment.booked.v1"))
	startConsumer(config.String("KAFKA_CONSUME_TOPIC_2", "clinic.appointment.status_changed.v1"))

	dashboardHandler := handlers.NewDashboardHandler(stats.NewRepository(pool), logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("GET /api/v1/dashboard/stats", dashboardHandler.Stats)
	mux.HandleFunc("GET /api/v1/dashboard/today-appointments", dashboardHandler.TodayAppointments)
	mux.HandleFunc("GET /api/v1/dashboard/recent-appointments", dashboardHandler.RecentAppointments)
	mux.HandleFunc("GET /api/v1/dashboard/appointments-by-status", dashboardHandler.AppointmentsByStatus)
	mux.HandleFunc("GET /api/v1/dashboard/appointments-by-month", dashboardHandler.AppointmentsByMonth)
	mux.HandleFunc("GET /api/v1/dashboard/top-doctors", dashboardHandler.TopDoctors)
	mux.HandleFunc("GET /api/v1/dashboard/patient-demographics", dashboardHandler.PatientDemographics)
	mux.HandleFunc("GET /api/v1/dashboard/daily-metrics", dashboardHandler.DailyMetrics)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
			AllowCredentials: config.String("CORS_ALLOW_CREDENTIALS", "") == "true",
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "dashboard")
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
