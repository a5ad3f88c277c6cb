package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scrapter/scrapter-front/internal/backend"
	"github.com/scrapter/scrapter-front/internal/bridge"
	"github.com/scrapter/scrapter-front/internal/config"
	"github.com/scrapter/scrapter-front/internal/crypto"
	"github.com/scrapter/scrapter-front/internal/guard"
	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/server"
	"github.com/scrapter/scrapter-front/internal/storage"
)

// ScrapterFront represents the complete dashboard front application
type ScrapterFront struct {
	config     config.Config
	httpServer *server.HTTPServer
	storage    storage.Store
	bridge     *bridge.Bridge
}

// NewScrapterFront creates the dashboard front application with all
// dependencies built
func NewScrapterFront(ctx context.Context, cfg config.Config) (*ScrapterFront, error) {
	log.LogInfoWithFields("scrapterfront", "Building dashboard front application", map[string]any{
		"baseURL":   cfg.Dashboard.BaseURL,
		"storage":   string(cfg.Dashboard.Storage),
		"extension": cfg.Extension != nil,
	})

	if _, err := url.Parse(cfg.Dashboard.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	store, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	authenticator := setupAuthenticator(cfg)
	br := setupBridge(cfg)

	mux := buildHTTPHandler(cfg, store, authenticator, br)
	httpServer := server.NewHTTPServer(mux, cfg.Dashboard.Addr)

	return &ScrapterFront{
		config:     cfg,
		httpServer: httpServer,
		storage:    store,
		bridge:     br,
	}, nil
}

// Run starts the application and blocks until shutdown completes
func (s *ScrapterFront) Run() error {
	log.LogInfoWithFields("scrapterfront", "Starting dashboard front application", map[string]any{
		"addr": s.config.Dashboard.Addr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)

	go func() {
		if err := s.httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var shutdownReason string
	select {
	case sig := <-sigChan:
		shutdownReason = fmt.Sprintf("signal %v", sig)
		log.LogInfoWithFields("scrapterfront", "Received shutdown signal", map[string]any{
			"signal": sig.String(),
		})
	case err := <-errChan:
		shutdownReason = fmt.Sprintf("error: %v", err)
		log.LogErrorWithFields("scrapterfront", "Shutting down due to error", map[string]any{
			"error": err.Error(),
		})
	case <-ctx.Done():
		shutdownReason = "context cancelled"
		log.LogInfoWithFields("scrapterfront", "Context cancelled, shutting down", nil)
	}

	log.LogInfoWithFields("scrapterfront", "Starting graceful shutdown", map[string]any{
		"reason":  shutdownReason,
		"timeout": "30s",
	})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := s.httpServer.Stop(shutdownCtx); err != nil {
		log.LogErrorWithFields("scrapterfront", "HTTP server shutdown error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := s.storage.Close(); err != nil {
		log.LogWarnWithFields("scrapterfront", "Storage close error", map[string]any{
			"error": err.Error(),
		})
	}

	log.LogInfoWithFields("scrapterfront", "Application shutdown complete", map[string]any{
		"reason": shutdownReason,
	})
	return nil
}

// setupStorage creates the session tracking store based on configuration
func setupStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.Dashboard.Storage == config.StorageKindFirestore {
		log.LogInfoWithFields("storage", "Using Firestore storage", map[string]any{
			"project":  cfg.Dashboard.GCPProject,
			"database": cfg.Dashboard.FirestoreDatabase,
			"prefix":   cfg.Dashboard.CollectionPrefix,
		})
		store, err := storage.NewFirestoreStore(
			ctx,
			cfg.Dashboard.GCPProject,
			cfg.Dashboard.FirestoreDatabase,
			cfg.Dashboard.CollectionPrefix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore storage: %w", err)
		}
		return store, nil
	}

	log.LogInfoWithFields("storage", "Using in-memory storage", map[string]any{})
	return storage.NewMemoryStore(), nil
}

// setupAuthenticator selects the credential validator: the real backend when
// a URL is configured, otherwise the local bcrypt validator for development
func setupAuthenticator(cfg config.Config) backend.Authenticator {
	if cfg.Dashboard.BackendURL != "" {
		log.LogInfoWithFields("backend", "Using backend authenticator", map[string]any{
			"url": cfg.Dashboard.BackendURL,
		})
		return backend.NewClient(cfg.Dashboard.BackendURL)
	}

	users := make([]backend.LocalUser, 0, len(cfg.Dashboard.DevUsers))
	for _, u := range cfg.Dashboard.DevUsers {
		users = append(users, backend.LocalUser{
			Email:          u.Email,
			Name:           u.Name,
			HashedPassword: []byte(u.PasswordHash),
		})
	}
	log.LogInfoWithFields("backend", "Using local dev authenticator", map[string]any{
		"users": len(users),
	})
	return backend.NewLocalValidator(users)
}

// setupBridge builds the extension bridge. Without extension config the
// bridge still exists and reports every probe as missing.
func setupBridge(cfg config.Config) *bridge.Bridge {
	if cfg.Extension == nil {
		return bridge.New("", nil)
	}
	return bridge.New(
		cfg.Extension.ID,
		bridge.NewWebsocketMessenger(cfg.Extension.Endpoint),
	)
}

// buildHTTPHandler creates the complete HTTP handler with all routing and
// middleware
func buildHTTPHandler(
	cfg config.Config,
	store storage.Store,
	authenticator backend.Authenticator,
	br *bridge.Bridge,
) http.Handler {
	layouts := server.NewLayoutCache()

	var csrf *crypto.CSRFProtection
	if cfg.Dashboard.CSRFSecret != "" {
		protection := crypto.NewCSRFProtection([]byte(cfg.Dashboard.CSRFSecret), 24*time.Hour)
		csrf = &protection
	}

	authHandlers := server.NewAuthHandlers(authenticator, store, layouts, br, csrf)
	bridgeHandlers := server.NewBridgeHandlers(br)
	opsHandlers := server.NewOpsHandlers(store)
	pageHandlers := server.NewPageHandlers()

	mux := http.NewServeMux()

	mux.Handle("/health", server.NewHealthHandler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/auth/login", authHandlers.LoginHandler)
	mux.HandleFunc("/auth/signup", authHandlers.SignupHandler)
	mux.HandleFunc("/auth/signout", authHandlers.SignoutHandler)
	mux.HandleFunc("/auth/csrf", authHandlers.CSRFHandler)

	mux.HandleFunc("/api/profile", authHandlers.ProfileHandler)
	mux.HandleFunc("/api/extension/status", bridgeHandlers.StatusHandler)
	mux.HandleFunc("/api/extension/retry", bridgeHandlers.RetryHandler)
	mux.HandleFunc("/api/sessions", opsHandlers.SessionsHandler)
	mux.HandleFunc("/api/users", opsHandlers.UsersHandler)

	mux.Handle("/dashboard", server.NewDashboardHandler(layouts))
	mux.Handle("/dashboard/", server.NewDashboardHandler(layouts))

	mux.HandleFunc("/", pageHandlers.LandingHandler)
	mux.HandleFunc(guard.LoginPath, pageHandlers.LoginHandler)
	mux.HandleFunc(guard.SignupPath, pageHandlers.SignupHandler)
	mux.HandleFunc(server.CheckEmailPath, pageHandlers.CheckEmailHandler)

	return server.ChainMiddleware(
		mux,
		guard.NewMiddleware(),
		server.NewCORSMiddleware(cfg.Dashboard.AllowedOrigins),
		server.NewMetricsMiddleware(),
		server.NewLoggerMiddleware("http"),
		server.NewRecoverMiddleware("http"),
	)
}
