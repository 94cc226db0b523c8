package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wxmine/qr-analyzer/api/handlers"
	"github.com/wxmine/qr-analyzer/api/routes"
	"github.com/wxmine/qr-analyzer/internal/service/analysis"
	"github.com/wxmine/qr-analyzer/pkg/logger"
)

const maxUploadBytes = 16 << 20 // 16MB

func main() {
	// .env is optional; env vars win either way
	_ = godotenv.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithEncoding("json"),
		logger.WithFile("logs/app.log"),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// init analysis service
	svc, err := analysis.GetService(log)
	if err != nil {
		log.Fatal("Failed to get analysis service:", logger.Error(err))
	}

	// init handlers
	h := handlers.NewHandlers(svc, log)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes
	routes.SetupRoutes(r, h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error:", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown:", logger.Error(err))
	}
}
