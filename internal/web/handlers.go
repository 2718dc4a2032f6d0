package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nhle/callsheet/internal/auth"
	"github.com/nhle/callsheet/internal/catalog"
	"github.com/nhle/callsheet/internal/model"
)

// Register creates an account.
func (s *Server) Register(c *fiber.Ctx) error {
	if done, err := s.redirectLoggedIn(c); done || err != nil {
		return err
	}

	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.auth.Register(c.UserContext(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Username already taken",
		})
	case errors.Is(err, auth.ErrPasswordTooLong):
		return badRequest(c, "Password must be at most 72 bytes")
	case errors.Is(err, model.ErrInvalidInput):
		return badRequest(c, "Username and password required")
	case err != nil:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		Message:  "Registration successful. Please log in.",
		ID:       user.ID,
		Username: user.Username,
	})
}

// Login checks credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	if done, err := s.redirectLoggedIn(c); done || err != nil {
		return err
	}

	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.auth.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid username or password",
		})
	}
	if err != nil {
		return err
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return c.JSON(HomeResponse{
		Message:   "Logged in successfully",
		Username:  user.Username,
		CallTypes: catalog.CallTypes,
	})
}

// AlreadyLoggedIn answers GET /register and /login: the home payload for a
// logged-in user, otherwise the fields the form expects.
func (s *Server) AlreadyLoggedIn(c *fiber.Ctx) error {
	if done, err := s.redirectLoggedIn(c); done || err != nil {
		return err
	}
	return c.JSON(fiber.Map{"fields": []string{"username", "password"}})
}

// redirectLoggedIn writes the home payload when the request already has a
// logged-in user and reports whether it did.
func (s *Server) redirectLoggedIn(c *fiber.Ctx) (bool, error) {
	user, err := sessionUser(c, s.sessions, s.auth)
	if err != nil || user == nil {
		return false, err
	}
	return true, c.JSON(HomeResponse{Username: user.Username, CallTypes: catalog.CallTypes})
}

// Logout ends the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "You have been logged out"})
}

// Home lists the call types.
func (s *Server) Home(c *fiber.Ctx) error {
	return c.JSON(HomeResponse{
		Username:  currentUser(c).Username,
		CallTypes: catalog.CallTypes,
	})
}

// CallMenu lists the checklist options for a call type.
func (s *Server) CallMenu(c *fiber.Ctx) error {
	return c.JSON(CallMenuResponse{
		CallType:         c.Params("call_type"),
		ChecklistOptions: catalog.ChecklistTypes,
	})
}

// Checklist seeds the checklist on first visit and returns it.
func (s *Server) Checklist(c *fiber.Ctx) error {
	return s.renderChecklist(c, "")
}

func (s *Server) renderChecklist(c *fiber.Ctx, message string) error {
	callType, checklistType := c.Params("call_type"), c.Params("checklist_type")

	views, err := s.checklists.Checklist(c.UserContext(), currentUser(c).ID, callType, checklistType)
	if err != nil {
		return s.fail(c, err, "")
	}
	return c.JSON(ChecklistResponse{
		Message:       message,
		CallType:      callType,
		ChecklistType: checklistType,
		Tasks:         views,
	})
}

// ToggleTask flips a top-level task or initializes the objection
// sub-checklist.
func (s *Server) ToggleTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	res, err := s.checklists.Toggle(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.fail(c, err, "")
	}

	resp := TaskResponse{Task: res.Task}
	if res.Expanded {
		resp.Message = "Objection sub-checklist initialized"
	}
	return c.JSON(resp)
}

// ToggleSubtask flips a subtask.
func (s *Server) ToggleSubtask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := s.checklists.ToggleSubtask(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.fail(c, err, "")
	}
	return c.JSON(TaskResponse{Task: task})
}

// AddTask appends a task to a checklist.
func (s *Server) AddTask(c *fiber.Ctx) error {
	var req TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := s.checklists.AddTask(c.UserContext(), currentUser(c).ID,
		c.Params("call_type"), c.Params("checklist_type"), req.TaskText)
	if err != nil {
		return s.fail(c, err, "Task cannot be empty")
	}
	return c.Status(fiber.StatusCreated).JSON(TaskResponse{Message: "Task added", Task: task})
}

// EditForm returns the task being edited.
func (s *Server) EditForm(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := s.checklists.GetTask(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.fail(c, err, "")
	}
	return c.JSON(TaskResponse{Task: *task})
}

// EditTask replaces a task's text.
func (s *Server) EditTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := s.checklists.EditTask(c.UserContext(), currentUser(c).ID, id, req.TaskText)
	if err != nil {
		return s.fail(c, err, "Task cannot be empty")
	}
	return c.JSON(TaskResponse{Message: "Task updated", Task: task})
}

// DeleteTask removes a task and its subtasks.
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, removed, err := s.checklists.DeleteTask(c.UserContext(), currentUser(c).ID, id)
	if err != nil {
		return s.fail(c, err, "")
	}
	return c.JSON(DeleteResponse{Message: "Task deleted", Task: task, Removed: removed})
}

// NewCall resets a checklist to its defaults.
func (s *Server) NewCall(c *fiber.Ctx) error {
	err := s.checklists.ResetForNewCall(c.UserContext(), currentUser(c).ID,
		c.Params("call_type"), c.Params("checklist_type"))
	if err != nil {
		return s.fail(c, err, "")
	}
	return s.renderChecklist(c, "Checklist has been refreshed for a new call.")
}

func taskID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	return int64(id), nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// fail maps service errors to responses. invalidMsg is shown for
// model.ErrInvalidInput. Unknown errors go to the error handler.
func (s *Server) fail(c *fiber.Ctx, err error, invalidMsg string) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case errors.Is(err, model.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Unauthorized",
		})
	case errors.Is(err, model.ErrInvalidInput):
		if invalidMsg == "" {
			invalidMsg = "Invalid input"
		}
		return badRequest(c, invalidMsg)
	}
	return err
}

// errorHandler renders errors that escaped the handlers. Internal details
// are logged, never returned.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		message = "Internal server error"
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errorName(code),
		Message: message,
	})
}

func errorName(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusConflict:
		return "conflict"
	default:
		if code >= fiber.StatusInternalServerError {
			return "internal_error"
		}
		return "request_failed"
	}
}
