package web

import "github.com/nhle/callsheet/internal/model"

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TaskTextRequest is the body of the add and edit task forms.
type TaskTextRequest struct {
	TaskText string `json:"task_text" form:"task_text"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HomeResponse lists the call types a user can pick from.
type HomeResponse struct {
	Message   string   `json:"message,omitempty"`
	Username  string   `json:"username"`
	CallTypes []string `json:"call_types"`
}

// CallMenuResponse lists the checklist options for one call type.
type CallMenuResponse struct {
	CallType         string   `json:"call_type"`
	ChecklistOptions []string `json:"checklist_options"`
}

// ChecklistResponse is a full checklist with subtasks nested.
type ChecklistResponse struct {
	Message       string           `json:"message,omitempty"`
	CallType      string           `json:"call_type"`
	ChecklistType string           `json:"checklist_type"`
	Tasks         []model.TaskView `json:"tasks"`
}

// TaskResponse carries a single task.
type TaskResponse struct {
	Message string     `json:"message,omitempty"`
	Task    model.Task `json:"task"`
}

// DeleteResponse reports a deleted task and how many rows went with it.
type DeleteResponse struct {
	Message string     `json:"message"`
	Task    model.Task `json:"task"`
	Removed int64      `json:"removed"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
