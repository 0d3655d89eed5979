package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"socialhub/cmd/app"
	"socialhub/internal/config"
	handlers "socialhub/internal/handler"
	"socialhub/internal/middleware"
	"syscall"
	"time"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Не удалось запустить приложение: %v", err)
	}
	defer application.Close()

	tracing, reporter, err := middleware.NewTracing("socialhub", cfg.ZipkinAddress, cfg.ServerPort)
	if err != nil {
		log.Printf("Трассировка отключена: %v", err)
		tracing, reporter, _ = middleware.NewTracing("socialhub", "", cfg.ServerPort)
	}
	defer reporter.Close()

	handler := handlers.NewHandlers(application.Services, application.Health, cfg)
	router := app.NewRouter(handler, middleware.NewMetrics())

	handlerChain := middleware.Chain(
		router,
		middleware.Logging,
		middleware.CORS(cfg.CORSOrigin),
		tracing,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Starting the server
	go func() {
		log.Printf("Сервер запущен на %s (база данных: %s)", server.Addr, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Остановка сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
}
