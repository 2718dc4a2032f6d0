// Package web serves the call checklists over HTTP as JSON.
package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"

	"github.com/nhle/callsheet/internal/auth"
	"github.com/nhle/callsheet/internal/checklist"
	"github.com/nhle/callsheet/internal/model"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "callsheet_session"

// Config holds what the server needs beyond its services.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	SessionExpiration time.Duration
	CookieSecure      bool

	// CookieKey is the base64 key for encryptcookie. Required.
	CookieKey string

	// SessionStorage backs the session store. Nil keeps sessions in memory.
	SessionStorage fiber.Storage
}

// Server is the Fiber application with its routes and session store.
type Server struct {
	app        *fiber.App
	sessions   *session.Store
	auth       *auth.Service
	checklists *checklist.Service
	logger     *slog.Logger
}

// New builds the Fiber app and registers every route.
func New(cfg Config, authSvc *auth.Service, checklists *checklist.Service, logger *slog.Logger) (*Server, error) {
	if cfg.CookieKey == "" {
		return nil, errors.New("cookie encryption key is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SessionExpiration <= 0 {
		cfg.SessionExpiration = 24 * time.Hour
	}

	s := &Server{
		auth:       authSvc,
		checklists: checklists,
		logger:     logger,
		sessions: session.New(session.Config{
			Expiration:     cfg.SessionExpiration,
			Storage:        cfg.SessionStorage,
			KeyLookup:      "cookie:" + SessionCookie,
			CookieSecure:   cfg.CookieSecure,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		UnescapePath:          true,
		Immutable:             true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger(logger))
	s.app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.CookieKey}))

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	s.app.Post("/register", s.Register)
	s.app.Post("/login", s.Login)
	s.app.Get("/register", s.AlreadyLoggedIn)
	s.app.Get("/login", s.AlreadyLoggedIn)

	user := RequireUser(s.sessions, s.auth)
	s.app.Get("/logout", user, s.Logout)
	s.app.Get("/", user, s.Home)
	s.app.Get("/call/:call_type", user, s.CallMenu)
	s.app.Get("/checklist/:call_type/:checklist_type", user, s.Checklist)
	s.app.Post("/checklists/:call_type/:checklist_type/tasks", user, s.AddTask)
	s.app.Get("/checklists/:call_type/:checklist_type/new", user, s.NewCall)

	for _, register := range []func(string, ...fiber.Handler) fiber.Router{s.app.Get, s.app.Post} {
		register("/tasks/:id/toggle", user, s.ToggleTask)
		register("/subtasks/:id/toggle", user, s.ToggleSubtask)
	}
	s.app.Get("/tasks/:id/edit", user, s.EditForm)
	s.app.Post("/tasks/:id/edit", user, s.EditTask)
	s.app.Get("/tasks/:id/delete", user, s.DeleteTask)
	s.app.Delete("/tasks/:id", user, s.DeleteTask)
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	if st := s.sessions.Storage; st != nil {
		return st.Close()
	}
	return nil
}

// NewSessionStorage returns Redis storage when a Redis host is configured
// and nil otherwise, which makes the session store keep data in memory.
func NewSessionStorage(cfg model.SessionConfig) fiber.Storage {
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.New(redis.Config{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
	})
}
