package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/omnisend-sync/internal/infra/database"
	"github.com/xavierca1/omnisend-sync/internal/infra/http/handlers"
	"github.com/xavierca1/omnisend-sync/internal/infra/http/middleware"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/lms"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
	"github.com/xavierca1/omnisend-sync/internal/infra/mail"
	"github.com/xavierca1/omnisend-sync/internal/infra/queue"
	"github.com/xavierca1/omnisend-sync/internal/infra/worker"
	"github.com/xavierca1/omnisend-sync/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	settingsRepo := database.NewSettingsRepository(db)

	// 2. Clients e Adapters
	omnisendClient := omnisend.NewClient(os.Getenv("OMNISEND_API_KEY"), os.Getenv("OMNISEND_URL"))
	lmsClient := lms.NewClient(
		os.Getenv("LMS_BASE_URL"), os.Getenv("LMS_API_USER"), os.Getenv("LMS_API_PASS"),
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if mailPort == 0 {
		mailPort = 587
	}
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"),
	)

	// 3. Service
	omnisendService := usecase.NewOmnisendService(omnisendClient, lmsClient, settingsRepo)

	// 4. Workers
	// Worker da fila: consome os eventos de ciclo de vida do LMS
	syncWorker := queue.NewWorker(rabbitMQ.Ch, omnisendService)
	go syncWorker.Start(queue.QueueName)

	// Worker do sync inicial: equivalente do cron do WordPress
	initialSync := worker.NewInitialSyncWorker(
		settingsRepo, omnisendService, mailSender, os.Getenv("SYNC_REPORT_EMAIL"),
	)
	go initialSync.Start(context.Background())

	// 5. Handlers
	webhookHandler := handlers.NewWebhookHandler(producer)
	consentHandler := handlers.NewConsentHandler(omnisendService)
	syncHandler := handlers.NewSyncHandler(settingsRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/webhooks/lifterlms", webhookHandler.Handle)
	r.Get("/consent", consentHandler.HandleGetSnapshot)
	r.Post("/consent/reconcile", consentHandler.HandleReconcile)
	r.Get("/sync/state", syncHandler.HandleGetState)
	r.Post("/sync/reset", syncHandler.HandleReset)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	log.Printf("🔥 Omnisend Sync rodando na porta %s", port)
	http.ListenAndServe(port, r)
}
