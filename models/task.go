package models

import "time"

// Task represents a todo item owned by a single user, mapping to the tasks table.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	Completed   bool      `json:"completed"`
	OwnerID     int       `json:"ownerId"`
}

// TaskDraft is a proposed task that has not been persisted yet. It has no id
// and no owner until the store assigns them.
type TaskDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateTaskRequest is the payload accepted by POST /todos.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest is the payload accepted by PUT /todos/{id}. Nil fields
// are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// Apply copies the fields present in the request onto t.
func (r UpdateTaskRequest) Apply(t *Task) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
}

// SubtaskRequest is the payload accepted by POST /ai/suggest-subtasks.
type SubtaskRequest struct {
	Title string `json:"title"`
}
