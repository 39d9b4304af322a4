// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: it builds the dependency chain
// (sqlite.DB → services → handlers), decides which middleware runs on which
// routes, and owns startup and graceful shutdown. main.go stays minimal —
// load config, create the server, start it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/config"
	"github.com/sakif/messagely/internal/handler"
	"github.com/sakif/messagely/internal/middleware"
	sqliteRepo "github.com/sakif/messagely/internal/repository/sqlite"
	"github.com/sakif/messagely/internal/service"
)

// Server represents the HTTP server and its dependencies. It owns the
// database connection: shutdown closes it so the WAL is flushed and the
// file lock released.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the given config.
//
// DEPENDENCY WIRING:
//  1. sqlite.DB implements both repository interfaces
//  2. services receive the repository interfaces plus the token/password
//     services built from config
//  3. handlers receive the services
//  4. routes receive the handlers
//
// Each layer only sees the one below it — handlers never touch SQL, services
// never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens, auth.NewPasswordService(cfg.BcryptCost))

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /login                  → credentials → {token}
//	POST /register               → profile → {token}           (201)
//	GET  /users                  → directory                    (auth)
//	GET  /users/{username}       → full profile                 (auth)
//	GET  /users/{username}/to    → inbox                        (auth, self)
//	GET  /users/{username}/from  → outbox                       (auth, self)
//	GET  /messages/{id}          → detail     (auth, sender or recipient)
//	POST /messages               → send       (auth, sender = caller) (201)
//	POST /messages/{id}/read     → mark read  (auth, recipient)
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	// Global middleware, in order: request ID for tracing, real client IP
	// behind proxies, panic recovery, then our structured request log.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.db, s.logger)
	messageService := service.NewMessageService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	messageHandler := handler.NewMessageHandler(messageService, s.logger)

	// Public routes: the only two endpoints reachable without a token.
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/register", authHandler.HandleRegister)

	// Protected routes: RequireAuth rejects missing/invalid tokens with 401
	// before any handler runs.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{username}", userHandler.HandleGet)
		r.Get("/users/{username}/to", userHandler.HandleMessagesTo)
		r.Get("/users/{username}/from", userHandler.HandleMessagesFrom)

		r.Get("/messages/{id}", messageHandler.HandleGet)
		r.Post("/messages", messageHandler.HandleSend)
		r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
	})
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
