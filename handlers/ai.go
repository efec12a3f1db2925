package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// ReprioritizeAppliedHeader tells the client whether the new ranking was stored.
const ReprioritizeAppliedHeader = "X-Reprioritize-Applied"

// SuggestSubtasks asks the model to break a title into subtasks and stores
// them for the caller as one batch.
func (h *Handlers) SuggestSubtasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SubtaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	drafts, err := h.Subtasks.Suggest(r.Context(), req.Title)
	if err != nil {
		h.respondWithAIError(w, r, err)
		return
	}

	created, err := h.Tasks.CreateBatch(r.Context(), userID, drafts)
	if err != nil {
		h.Logger.Error("failed to store subtasks", "user", userID, "count", len(drafts), "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save subtasks")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// ReprioritizeAll re-ranks every task the caller owns. The new priorities are
// stored only when the model's answer was accepted as a whole.
func (h *Handlers) ReprioritizeAll(w http.ResponseWriter, r *http.Request) {
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

	outcome, err := h.Priorities.Reprioritize(r.Context(), tasks)
	if err != nil {
		h.respondWithAIError(w, r, err)
		return
	}

	applied := outcome.Accepted && len(outcome.Tasks) > 0
	if applied {
		if err := h.Tasks.UpdatePriorities(r.Context(), userID, outcome.Tasks); err != nil {
			h.Logger.Error("failed to store priorities", "user", userID, "err", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to save priorities")
			return
		}
	} else if outcome.Rejection != nil {
		h.Logger.Info("priorities left unchanged", "user", userID, "reason", outcome.Rejection)
	}

	result := make([]models.Task, len(outcome.Tasks))
	copy(result, outcome.Tasks)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].ID < result[j].ID
	})

	w.Header().Set(ReprioritizeAppliedHeader, strconv.FormatBool(applied))
	respondWithJSON(w, http.StatusOK, result)
}
