package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/blob"
	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/mealplans"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/storage"
	"github.com/fdg312/mealcraft/internal/storage/memory"
	"github.com/fdg312/mealcraft/internal/storage/postgres"
)

// Server представляет HTTP сервер
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	mux     *http.ServeMux
	storage storage.Storage
	photos  blob.Store
	http    *http.Server
}

// New создаёт новый HTTP сервер
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.storage = s.initStorage(ctx)

	photos, mode, err := blob.NewBlobStore(ctx, cfg.Blob, logger)
	if err != nil {
		s.storage.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	s.photos = photos
	logger.Info("blob store ready", zap.String("mode", mode))

	s.routes()
	return s, nil
}

// NewWithStorage builds a server over an existing storage. Photo upload stays disabled.
func NewWithStorage(cfg *config.Config, st storage.Storage, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		logger:  logger,
		mux:     http.NewServeMux(),
		storage: st,
	}
	s.routes()
	return s
}

// initStorage выбирает Postgres при заданном DATABASE_URL, иначе in-memory
func (s *Server) initStorage(ctx context.Context) storage.Storage {
	if s.config.DatabaseURL == "" {
		s.logger.Info("using in-memory storage")
		return memory.New()
	}

	s.logger.Info("connecting to postgres")
	pg, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		s.logger.Warn("postgres unavailable, falling back to in-memory storage", zap.Error(err))
		return memory.New()
	}
	s.logger.Info("postgres connected")
	return pg
}

// routes регистрирует маршруты
func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Recipes API
	recipeService := recipes.NewService(s.storage.GetRecipesStorage(), s.photos, s.logger).
		WithUploadLimits(s.config.UploadMaxMB, s.config.UploadAllowedMime)
	recipeHandler := recipes.NewHandler(recipeService)

	s.mux.HandleFunc("GET /recipes", recipeHandler.HandleList)
	s.mux.HandleFunc("POST /recipes", recipeHandler.HandleCreate)
	s.mux.HandleFunc("GET /recipes/{id}", recipeHandler.HandleGet)
	s.mux.HandleFunc("PATCH /recipes/{id}", recipeHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /recipes/{id}", recipeHandler.HandleDelete)
	s.mux.HandleFunc("POST /recipes/{id}/photo", recipeHandler.HandleUploadPhoto)

	// Meal plans API
	planService := mealplans.NewService(s.storage.GetMealPlansStorage(), s.logger)
	planHandler := mealplans.NewHandler(planService)

	s.mux.HandleFunc("GET /meal-plans", planHandler.HandleList)
	s.mux.HandleFunc("POST /meal-plans", planHandler.HandleCreate)
	s.mux.HandleFunc("GET /meal-plans/export", planHandler.HandleExport)
	s.mux.HandleFunc("DELETE /meal-plans/{id}", planHandler.HandleDelete)
}

// Handler returns the router wrapped in the middleware chain:
// CORS → rate limit → request log → router.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		CORS(s.config),
		RateLimit(s.config, s.logger),
		RequestLog(s.logger),
	)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server started",
		zap.String("url", "http://localhost"+addr),
		zap.String("healthz", "http://localhost"+addr+"/healthz"),
		zap.String("env", s.config.Env),
	)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the listener started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
