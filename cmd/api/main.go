package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/comments"
	"storefront-backend/internal/messaging"
	"storefront-backend/internal/orders"
	"storefront-backend/internal/payments"
	"storefront-backend/internal/qa"
	"storefront-backend/internal/questions"
	"storefront-backend/internal/telemetry"
	"storefront-backend/internal/users"
	"storefront-backend/internal/web"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront-api", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront-api", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		producer = messaging.NewProducer(brokers, "order.created")
		defer func() { _ = producer.Close() }()
	}

	processorURL := os.Getenv("PROCESSOR_URL")
	if processorURL == "" {
		logger.Error("PROCESSOR_URL environment variable is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	userRepo := users.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	orderRepo := orders.NewRepository(db)
	paymentRepo := payments.NewRepository(db)
	commentRepo := comments.NewRepository(db)
	questionRepo := questions.NewRepository(db)
	qaRepo := qa.NewRepository(db)

	processor := payments.NewProcessorClient(processorURL, httpClient)
	paymentService := payments.NewService(paymentRepo, orderRepo, userRepo, processor, logger)

	userHandler := users.NewHandler(userRepo, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)
	orderHandler := orders.NewHandler(orderRepo, producer, logger)
	paymentHandler := payments.NewHandler(paymentService, logger)
	commentHandler := comments.NewHandler(commentRepo, logger)
	questionHandler := questions.NewHandler(questionRepo, logger)
	qaHandler := qa.NewHandler(qaRepo, logger)

	mux := http.NewServeMux()

	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	route("POST /users", userHandler.HandleRegister)
	route("GET /users/{id}", userHandler.HandleGet)
	route("GET /users/by-username/{username}", userHandler.HandleGetByUsername)

	route("GET /products", catalogHandler.HandleList)
	route("POST /products", catalogHandler.HandleCreate)
	route("GET /products/{id}", catalogHandler.HandleGet)
	route("PUT /products/{id}", catalogHandler.HandleUpdate)
	route("DELETE /products/{id}", catalogHandler.HandleDelete)
	route("GET /categories", catalogHandler.HandleListCategories)
	route("POST /categories", catalogHandler.HandleCreateCategory)

	route("POST /orders", orderHandler.HandleCreate)
	route("GET /orders", orderHandler.HandleList)
	route("GET /orders/paged", orderHandler.HandleListPaged)
	route("GET /orders/{id}", orderHandler.HandleGet)
	route("PATCH /orders/{id}/status", orderHandler.HandleUpdateStatus)

	route("POST /payments/process", paymentHandler.HandleProcess)
	route("GET /payments", paymentHandler.HandleList)
	route("GET /payments/paged", paymentHandler.HandleListPaged)
	route("GET /payments/{id}", paymentHandler.HandleGet)

	route("POST /products/{productId}/comments", commentHandler.HandleAdd)
	route("GET /products/{productId}/comments", commentHandler.HandleListByProduct)
	route("GET /products/{productId}/comments/starred", commentHandler.HandleListStarred)
	route("GET /comments/{id}", commentHandler.HandleGet)
	route("PUT /comments/{id}", commentHandler.HandleUpdate)
	route("PATCH /comments/{id}/star", commentHandler.HandleToggleStarred)
	route("DELETE /comments/{id}", commentHandler.HandleDelete)

	route("POST /products/{productId}/questions", questionHandler.HandleAsk)
	route("GET /products/{productId}/questions", questionHandler.HandleListByProduct)
	route("GET /products/{productId}/questions/paged", questionHandler.HandleListByProductPaged)
	route("GET /users/{userId}/questions", questionHandler.HandleListByUser)
	route("GET /questions/{id}", questionHandler.HandleGet)
	route("POST /questions/{id}/answer", questionHandler.HandleAnswer)
	route("PUT /questions/{id}/answer", questionHandler.HandleUpdateAnswer)
	route("DELETE /questions/{id}", questionHandler.HandleDelete)

	route("POST /products/{productId}/product-questions", qaHandler.HandleAsk)
	route("GET /products/{productId}/product-questions", qaHandler.HandleListByProduct)
	route("GET /products/{productId}/product-questions/unanswered", qaHandler.HandleListUnanswered)
	route("GET /users/{userId}/product-questions", qaHandler.HandleListByUser)
	route("GET /product-questions/{id}", qaHandler.HandleGet)
	route("POST /product-questions/{id}/answer", qaHandler.HandleAnswer)
	route("POST /product-questions/{id}/helpful", qaHandler.HandleVoteHelpful)
	route("POST /product-questions/{id}/report", qaHandler.HandleReport)
	route("DELETE /product-questions/{id}", qaHandler.HandleDelete)

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			web.WriteError(w, logger, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		web.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "storefront-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront api", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
