package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cafeledger/backend/src/config"
	"github.com/username/cafeledger/backend/src/handlers"
	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/parsers"
	"github.com/username/cafeledger/backend/src/processors"
	"github.com/username/cafeledger/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", config.Cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", r.Header.Get("Origin"))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Cafe Ledger Analyst backend starting...")

	logger.L.Info("Initializing analysis cache...",
		"ttl", config.Cfg.AnalysisCacheTTL, "cleanupInterval", config.Cfg.AnalysisCacheCleanup)
	reportCache := cache.New(config.Cfg.AnalysisCacheTTL, config.Cfg.AnalysisCacheCleanup)

	logger.L.Info("Initializing services and handlers...")
	schemaDetector := parsers.NewSchemaDetector()
	aggregator := processors.NewAggregator()
	formatter := processors.NewMetricsFormatter(config.Cfg.TopItemsLimit)
	recommender := services.NewGroqRecommender(
		config.Cfg.AIAPIKey,
		config.Cfg.AIBaseURL,
		config.Cfg.AIModel,
		config.Cfg.AIMaxTokens,
		config.Cfg.AIRequestTimeout,
	)

	analysisService := services.NewAnalysisService(
		schemaDetector, aggregator, formatter, recommender,
		reportCache, config.Cfg.AnalysisCacheTTL,
	)
	analyzeHandler := handlers.NewAnalyzeHandler(analysisService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api", analyzeHandler.HandleBanner)
	apiRouter.HandleFunc("GET /api/{$}", analyzeHandler.HandleBanner)
	apiRouter.HandleFunc("GET /api/health", analyzeHandler.HandleHealth)
	apiRouter.HandleFunc("POST /api/analyze", analyzeHandler.HandleAnalyze)

	rootMux.Handle("/api", apiRouter)
	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Cafe Ledger Analyst backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(handlers.RequestIDMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
