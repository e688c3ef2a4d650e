// Package models holds the client's view of server resources. Timestamps
// that feed reconciliation stay as raw wire strings so malformed values
// can be observed instead of failing the whole decode.
package models

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate,omitempty"`
	Owner       string   `json:"owner"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

type UpcomingTask struct {
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// TaskFilter narrows a task listing; empty fields are ignored.
type TaskFilter struct {
	Status   string
	Priority string
	Search   string
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// NewTask is the body of a create request.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
