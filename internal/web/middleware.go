package web

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/nhle/callsheet/internal/auth"
	"github.com/nhle/callsheet/internal/model"
)

const (
	// UserContextKey is the Locals key holding the authenticated *model.User.
	UserContextKey = "user"

	sessionUserKey = "user_id"
)

// RequireUser resolves the session's user and stores it in the request
// locals. Requests without a valid session get 401.
func RequireUser(sessions *session.Store, authSvc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := sessionUser(c, sessions, authSvc)
		if err != nil {
			return err
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Please log in to access this page.",
			})
		}

		c.Locals(UserContextKey, user)
		return c.Next()
	}
}

// sessionUser returns the logged-in user, or nil when the session carries
// none. A session pointing at a missing account is destroyed.
func sessionUser(c *fiber.Ctx, sessions *session.Store, authSvc *auth.Service) (*model.User, error) {
	sess, err := sessions.Get(c)
	if err != nil {
		return nil, err
	}

	id, ok := sess.Get(sessionUserKey).(string)
	if !ok || id == "" {
		return nil, nil
	}

	user, err := authSvc.User(c.UserContext(), id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, sess.Destroy()
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func currentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(UserContextKey).(*model.User)
	return user
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		)
		return err
	}
}
