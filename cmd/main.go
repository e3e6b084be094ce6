package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskman-api/taskman/broker"
	"taskman-api/taskman/config"
	"taskman-api/taskman/database"
	"taskman-api/taskman/middleware"
	"taskman-api/taskman/routes"
	"taskman-api/taskman/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Refusing to start: %v", err)
	}

	client := database.NewClient(cfg)
	cache := services.NewCache(
		time.Duration(cfg.TasksCacheTTLSeconds)*time.Second,
		time.Duration(cfg.StatsCacheTTLSeconds)*time.Second,
	)

	// The event producer is optional; the application runs fine without
	// a broker, it just stops announcing mutations.
	var producer broker.Producer
	if cfg.NatsURL != "" {
		natsProducer, err := broker.NewProducer(cfg.NatsURL)
		if err != nil {
			log.Printf("Warning: event publishing disabled: %v", err)
		} else {
			producer = natsProducer
			defer natsProducer.Close()
		}
	}

	taskService := services.NewTaskService(client, cache, producer)

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := taskService.HealthCheck(probeCtx); err != nil {
		log.Printf("Warning: database is not reachable at startup: %v", err)
	}
	cancel()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())
	router.LoadHTMLGlob("web/templates/*.html")

	routes.RegisterRootRoutes(router, taskService)
	routes.RegisterHealthRoutes(router, taskService)

	api := router.Group("/api/v1")
	routes.RegisterTaskRoutes(api, taskService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		if producer != nil {
			producer.Close()
		}
		os.Exit(0)
	}()

	log.Printf("Task manager API is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
