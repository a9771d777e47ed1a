package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/auth"
	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/config"
	"github.com/fdg312/meal-planner/internal/exports"
	"github.com/fdg312/meal-planner/internal/inventory"
	"github.com/fdg312/meal-planner/internal/mailer"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/observability"
	"github.com/fdg312/meal-planner/internal/recipes"
	"github.com/fdg312/meal-planner/internal/sharing"
	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/sms"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/storage/memory"
	"github.com/fdg312/meal-planner/internal/storage/postgres"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	logger         *zap.Logger
	mux            *http.ServeMux
	storage        storage.Storage
	metrics        *observability.Metrics
	authMiddleware *auth.Middleware
}

// New создаёт новый HTTP сервер. Ошибка возвращается только для
// явно запрошенных, но неработающих зависимостей (S3, отправители).
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		logger:  logger,
		mux:     http.NewServeMux(),
		metrics: observability.New(),
	}

	s.initStorage(ctx)

	if err := s.routes(ctx); err != nil {
		s.storage.Close()
		return nil, err
	}
	return s, nil
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		s.logger.Info("using in-memory storage")
		s.storage = memory.New()
		return
	}

	s.logger.Info("connecting to PostgreSQL")
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		s.logger.Error("postgres connection failed, falling back to in-memory storage", zap.Error(err))
		s.storage = memory.New()
		return
	}
	s.logger.Info("postgres connected")
	s.storage = pgStorage
}

// routes регистрирует маршруты
func (s *Server) routes(ctx context.Context) error {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Auth API
	authService := auth.NewService(s.config)
	s.authMiddleware = auth.NewMiddleware(s.config, authService, s.logger)
	if s.config.AuthMode == config.AuthModeDev {
		authHandler := auth.NewHandlers(authService, s.logger)
		s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)
	}

	// Recipes API
	recipesService := recipes.NewService(s.storage.GetRecipesStorage())
	recipesHandler := recipes.NewHandler(recipesService)
	s.mux.HandleFunc("POST /v1/recipes", recipesHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/recipes", recipesHandler.HandleList)
	s.mux.HandleFunc("GET /v1/recipes/{id}", recipesHandler.HandleGet)
	s.mux.HandleFunc("DELETE /v1/recipes/{id}", recipesHandler.HandleDelete)

	// Inventory API
	inventoryHandler := inventory.NewHandler(inventory.NewService(s.storage.GetInventoryStorage()))
	s.mux.HandleFunc("GET /v1/inventory", inventoryHandler.HandleList)
	s.mux.HandleFunc("PUT /v1/inventory", inventoryHandler.HandleUpsert)
	s.mux.HandleFunc("DELETE /v1/inventory/{id}", inventoryHandler.HandleDelete)

	// Meal plan API
	mealPlansService := mealplans.NewService(s.storage.GetMealPlansStorage(), recipesService, s.config.ShoppingMaxRangeDays)
	mealPlansHandler := mealplans.NewHandler(mealPlansService)
	s.mux.HandleFunc("GET /v1/meal-plan", mealPlansHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/meal-plan", mealPlansHandler.HandleReplace)
	s.mux.HandleFunc("DELETE /v1/meal-plan", mealPlansHandler.HandleDelete)
	s.mux.HandleFunc("GET /v1/meal-plan/today", mealPlansHandler.HandleGetToday)

	// Exports and sharing
	exportsBlobStore, exportsMode, err := blob.NewExportStore(ctx, s.config.Blob, s.logger)
	if err != nil {
		return fmt.Errorf("blob: %w", err)
	}
	s.logger.Info("exports storage", zap.String("mode", exportsMode))

	exportsService := exports.NewService(s.storage.GetExportsStorage(), exportsBlobStore, exports.Options{
		MaxItems:        s.config.ExportMaxItems,
		DefaultFormat:   s.config.ExportDefaultFormat,
		PresignTTL:      time.Duration(s.config.Blob.S3.PresignTTLSeconds) * time.Second,
		PublicBaseURL:   s.config.Blob.S3.PublicBaseURL,
		PreferPublicURL: s.config.Blob.S3.PreferPublicURL,
	}, s.logger)
	exportsHandler := exports.NewHandlers(exportsService, s.logger)
	s.mux.HandleFunc("GET /v1/shopping/exports", exportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/shopping/exports/{id}/download", exportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/shopping/exports/{id}", exportsHandler.HandleDelete)

	emailSender, err := mailer.NewSenderFromConfig(s.config, s.logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	smsSender, err := sms.NewSenderFromConfig(s.config, s.logger)
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	dispatcher := sharing.NewDispatcher(exportsService, emailSender, smsSender, s.metrics, s.logger, s.config.SMSMaxChars)

	// Shopping list API
	snapshot := shopping.NewStorageSnapshot(
		s.storage.GetMealPlansStorage(),
		s.storage.GetRecipesStorage(),
		s.storage.GetInventoryStorage(),
	)
	shoppingService := shopping.NewService(
		snapshot,
		snapshot,
		s.storage.GetShoppingSessionsStorage(),
		dispatcher,
		shopping.NewAggregator(shopping.WithLogger(s.logger.Named("aggregator"))),
		s.metrics,
		s.logger.Named("shopping"),
		s.config.ShoppingMaxRangeDays,
	)
	shoppingHandler := shopping.NewHandler(shoppingService, s.logger)
	s.mux.HandleFunc("GET /v1/shopping/list", shoppingHandler.HandleGetList)
	s.mux.HandleFunc("POST /v1/shopping/selection/toggle", shoppingHandler.HandleToggle)
	s.mux.HandleFunc("PUT /v1/shopping/overrides", shoppingHandler.HandleOverride)
	s.mux.HandleFunc("DELETE /v1/shopping/session", shoppingHandler.HandleClearSession)
	s.mux.HandleFunc("POST /v1/shopping/export", shoppingHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/shopping/share/email", shoppingHandler.HandleShareEmail)
	s.mux.HandleFunc("POST /v1/shopping/share/sms", shoppingHandler.HandleShareSMS)

	return nil
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler builds the middleware chain (outermost first):
// CORS → Rate Limit → Access log → Auth → Router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.authMiddleware != nil && s.config.AuthMode != config.AuthModeNone {
		handler = s.authMiddleware.Wrap(handler)
	}
	handler = AccessLogMiddleware(s.logger, handler)
	handler = RateLimitMiddleware(s.config, s.metrics, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Run запускает HTTP сервер и останавливает его при отмене ctx
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("healthz", fmt.Sprintf("http://localhost%s/healthz", addr)),
			zap.String("shopping", fmt.Sprintf("http://localhost%s/v1/shopping/list", addr)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
