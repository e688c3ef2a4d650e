package models

import "time"

type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionUpdated   ActivityAction = "updated"
	ActionDeleted   ActivityAction = "deleted"
	ActionCompleted ActivityAction = "completed"
	ActionLoggedIn  ActivityAction = "logged_in"
	ActionLoggedOut ActivityAction = "logged_out"
	ActionCustom    ActivityAction = "custom"
)

// Activity is an append-only log line. TaskID may point at a task that no
// longer exists; Task is populated on reads only when it still does.
type Activity struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Action      ActivityAction `json:"action"`
	TaskID      *string        `json:"taskId"`
	UserID      string         `json:"user"`
	CreatedAt   time.Time      `json:"createdAt"`
	Task        *ActivityTask  `json:"task"`
}

type ActivityTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
