package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/viswayadeedya/TodoIQ-BE/database"
	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// GetTasks retrieves all tasks owned by the caller.
func (h *Handlers) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.Tasks.ListByOwner(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list tasks", "user", userID, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// GetTask retrieves a single task by its ID.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// CreateTask creates a new task owned by the caller.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	t := models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
		OwnerID:     userID,
	}
	if msg := validateTask(&t); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.Tasks.Create(r.Context(), &t); err != nil {
		h.Logger.Error("failed to create task", "user", userID, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Apply(t)
	t.Title = strings.TrimSpace(t.Title)
	if msg := validateTask(t); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.Tasks.Update(r.Context(), t)
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		h.Logger.Error("failed to update task", "task", t.ID, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// DeleteTask deletes one of the caller's tasks.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	err := h.Tasks.Delete(r.Context(), t.ID)
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		h.Logger.Error("failed to delete task", "task", t.ID, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedTask loads the task named in the path, answering 404 if it does not
// exist and 403 if it belongs to someone else.
func (h *Handlers) ownedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	t, err := h.Tasks.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Task not found")
		return nil, false
	}
	if err != nil {
		h.Logger.Error("failed to retrieve task", "task", id, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve task")
		return nil, false
	}
	if t.OwnerID != userID {
		respondWithError(w, http.StatusForbidden, "Not authorized to access this task")
		return nil, false
	}
	return t, true
}

func validateTask(t *models.Task) string {
	if t.Title == "" {
		return "Title is required"
	}
	if t.Priority < 0 {
		return "Priority must not be negative"
	}
	return ""
}
