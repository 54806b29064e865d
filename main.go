package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"issue-triage-pipeline/classifier"
	"issue-triage-pipeline/config"
	"issue-triage-pipeline/handlers"
	"issue-triage-pipeline/metrics"
	"issue-triage-pipeline/pipeline"
	"issue-triage-pipeline/rabbitmq"
	"issue-triage-pipeline/session"
	"issue-triage-pipeline/stubclassifier"
	"issue-triage-pipeline/translate"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load .env if present, then configuration
	godotenv.Load()
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("Starting the issue triage pipeline service...")

	// Initialize the classifier. A backend that cannot be reached at
	// startup aborts the whole service.
	cls := newClassifier(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cls.Ready(ctx); err != nil {
		cancel()
		log.Fatalf("Classifier not ready: %v", err)
	}
	cancel()
	log.Infof("Classifier provider=%s", cls.SourceName())

	// Initialize the translator
	var translator translate.Translator = translate.NewNoop()
	if cfg.TranslationEnabled && cfg.TranslateURL != "" {
		translator = translate.NewClient(cfg.TranslateURL, cfg.TranslateTimeout)
		log.Infof("Translation enabled pivot=%s display=%s", cfg.PivotLanguage, cfg.DisplayLanguage)
	}

	// Initialize RabbitMQ publisher
	var publisher pipeline.Publisher
	var amqpPublisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize RabbitMQ publisher")
			// Continue without publisher - runs will still work
		} else {
			publisher = p
			amqpPublisher = p
		}
	}

	// Initialize services
	metrics.Register()
	pipelineService := pipeline.NewService(cls, translator, cfg.PivotLanguage, cfg.DisplayLanguage, publisher)
	store := session.NewStore(cfg.RunCapacity)

	// Initialize handlers
	h := handlers.NewHandlers(pipelineService, store, cfg.TranslationEnabled, cfg.DisplayLimit)

	// Setup HTTP server
	router := gin.Default()
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v3")
	{
		api.GET("/status", h.GetStatus)
		api.POST("/datasets/inspect", h.InspectDataset)
		api.POST("/runs", h.CreateRun)
		api.GET("/runs/:id", h.GetRun)
		api.GET("/runs/:id/issues", h.GetRunIssues)
		api.GET("/runs/:id/export", h.ExportRun)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	if amqpPublisher != nil {
		amqpPublisher.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func newClassifier(cfg *config.Config) classifier.Client {
	if cfg.ClassifierProvider == "stub" {
		return stubclassifier.NewClient()
	}
	return classifier.NewHTTPClient(cfg.ClassifierURL, cfg.ClassifierTimeout)
}
