// cmd/intake-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"report-intake/internal/common/config"
	"report-intake/internal/common/database"
	"report-intake/internal/common/genai"
	"report-intake/internal/common/logger"
	"report-intake/internal/common/observability"
	"report-intake/internal/extract"
	"report-intake/internal/interview"
	"report-intake/internal/resolver"
	"report-intake/internal/schema"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.Wrap(zapLogger)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLogger.Fatal("failed to create postgres client", zap.Error(err))
	}
	defer pg.Close()

	if err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, 5, time.Second, zapLogger, "postgres connect"); err != nil {
		zapLogger.Fatal("postgres unreachable", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLogger.Fatal("failed to create redis client", zap.Error(err))
	}
	defer rdb.Close()

	if err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}, 5, time.Second, zapLogger, "redis connect"); err != nil {
		zapLogger.Fatal("redis unreachable", zap.Error(err))
	}

	genaiClient := genai.NewClient(&genai.Config{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		APIKey:     cfg.APIs.GenAI.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	})

	// Core components.
	registry := schema.NewRegistry()
	matcher := schema.NewMatcher(registry, schema.DefaultSections())
	dispatcher := extract.NewDispatcher(matcher, log,
		extract.WithSpreadsheetReader(extract.NewExcelReader()),
		extract.WithPDFExtractor(extract.NewPDFTextExtractor()),
		extract.WithDocxExtractor(extract.NewDocxTextExtractor()),
	)

	var classifier interview.IntentClassifier
	if cfg.Interview.IntentClassify && cfg.APIs.GenAI.BaseURL != "" {
		classifier = genaiClient
	}
	engine := interview.NewEngine(registry, classifier, log)
	sessions := interview.NewRedisSessionStore(rdb.Client, time.Duration(cfg.Interview.SessionTTL)*time.Second)

	catalog := resolver.NewCatalog()
	if cfg.Resolver.CatalogPath != "" {
		if err := catalog.LoadSeed(cfg.Resolver.CatalogPath); err != nil {
			log.WithError(err).Warn("catalog seed not loaded", map[string]interface{}{"path": cfg.Resolver.CatalogPath})
		}
	}

	var searchers []resolver.Searcher
	if cfg.Resolver.AssistedEnabled {
		if len(cfg.Database.Elasticsearch.Addresses) > 0 {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				log.WithError(err).Warn("elasticsearch searcher disabled", nil)
			} else {
				searchers = append(searchers, resolver.NewElasticsearchSearcher(es.Client, cfg.Database.Elasticsearch.Index))
			}
		}
		if cfg.APIs.GenAI.BaseURL != "" {
			searchers = append(searchers, resolver.NewGenAISearcher(genaiClient))
		}
	}

	res := resolver.New(
		resolver.NewPostgresResourceStore(pg.DB),
		catalog,
		searchers,
		config.GetDuration(cfg.Resolver.AssistedTimeout),
		log,
	)

	srv := newServer(engine, sessions, dispatcher, res, obs, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/conversation/message", srv.handleMessage)
	mux.HandleFunc("/api/conversation/upload", srv.handleUpload)
	mux.HandleFunc("/api/resources/resolve", srv.handleResolve)
	mux.HandleFunc("/api/resources/manual", srv.handleManual)

	httpServer := &http.Server{
		Addr:         cfg.App.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("intake server listening", map[string]interface{}{"addr": cfg.App.ListenAddr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

// server holds the request-scoped plumbing around the core components.
type server struct {
	engine     *interview.Engine
	sessions   interview.SessionStore
	dispatcher *extract.Dispatcher
	resolver   *resolver.Resolver
	obs        *observability.Observability
	logger     logger.Logger
}

func newServer(engine *interview.Engine, sessions interview.SessionStore, dispatcher *extract.Dispatcher, res *resolver.Resolver, obs *observability.Observability, log logger.Logger) *server {
	return &server{
		engine:     engine,
		sessions:   sessions,
		dispatcher: dispatcher,
		resolver:   res,
		obs:        obs,
		logger:     log.With(map[string]interface{}{"component": "http"}),
	}
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	state, err := interview.LoadOrCreate(r.Context(), s.sessions, req.SessionID)
	if err != nil {
		s.logger.WithError(err).Error("session load failed", nil)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := s.engine.SubmitMessage(r.Context(), state, req.Text)
	if err := s.sessions.Save(r.Context(), state); err != nil {
		s.logger.WithError(err).Error("session save failed", nil)
	}
	s.obs.RecordTurnDuration(r.Context(), time.Since(start), "message")

	writeJSON(w, map[string]interface{}{"sessionId": state.SessionID, "response": resp})
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}

	start := time.Now()
	state, err := interview.LoadOrCreate(r.Context(), s.sessions, r.FormValue("sessionId"))
	if err != nil {
		s.logger.WithError(err).Error("session load failed", nil)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return
	}

	result := s.dispatcher.Extract(data, header.Filename)
	resp := s.engine.SubmitUpload(r.Context(), state, result)
	if err := s.sessions.Save(r.Context(), state); err != nil {
		s.logger.WithError(err).Error("session save failed", nil)
	}
	s.obs.RecordTurnDuration(r.Context(), time.Since(start), "upload")

	writeJSON(w, map[string]interface{}{"sessionId": state.SessionID, "response": resp})
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resolver.LookupQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := s.resolver.Resolve(r.Context(), req.ResourceType, req.Query, req.Vendor)
	writeJSON(w, result)
}

type manualRequest struct {
	ResourceType string                 `json:"resourceType"`
	Query        string                 `json:"query"`
	Data         map[string]interface{} `json:"data"`
}

func (s *server) handleManual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req manualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.resolver.SubmitManual(r.Context(), req.ResourceType, req.Query, req.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
