package models

type User struct {
	ID         string `json:"id"`
	UserName   string `json:"username"`
	Email      string `json:"email"`
	Profession string `json:"profession"`
}

type ActivityTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Activity struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Action      string        `json:"action"`
	TaskID      *string       `json:"taskId"`
	UserID      string        `json:"user"`
	CreatedAt   string        `json:"createdAt"`
	Task        *ActivityTask `json:"task,omitempty"`
}

// Tokens is what the client persists between invocations.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
}
