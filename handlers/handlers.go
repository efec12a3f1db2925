package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/viswayadeedya/TodoIQ-BE/ai"
	"github.com/viswayadeedya/TodoIQ-BE/middleware"
	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// maxBodyBytes caps request payloads.
const maxBodyBytes = 1 << 20

// TaskStore is the persistence the todo and AI endpoints need.
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	CreateBatch(ctx context.Context, ownerID int, drafts []models.TaskDraft) ([]models.Task, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error)
	Get(ctx context.Context, id int) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int) error
	UpdatePriorities(ctx context.Context, ownerID int, tasks []models.Task) error
}

// UserStore is the persistence the signup and login endpoints need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// SubtaskSuggester proposes subtasks for a task title.
type SubtaskSuggester interface {
	Suggest(ctx context.Context, title string) ([]models.TaskDraft, error)
}

// Reprioritizer re-ranks a user's tasks.
type Reprioritizer interface {
	Reprioritize(ctx context.Context, tasks []models.Task) (*ai.Outcome, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers struct holds the collaborators shared by every endpoint.
type Handlers struct {
	Tasks      TaskStore
	Users      UserStore
	Tokens     TokenIssuer
	Subtasks   SubtaskSuggester
	Priorities Reprioritizer
	DB         Pinger
	Logger     *log.Logger
}

// NewRouter defines the API routes and links them to the handler functions.
// Everything except signup, login and the health check requires a bearer token.
func NewRouter(h *Handlers, auth *middleware.Authenticator) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(h.Logger))

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/users/signup", h.RegisterUser).Methods(http.MethodPost)
	router.HandleFunc("/users/login", h.LoginUser).Methods(http.MethodPost)

	api := router.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/todos", h.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/todos", h.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/todos/{id:[0-9]+}", h.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id:[0-9]+}", h.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/todos/{id:[0-9]+}", h.DeleteTask).Methods(http.MethodDelete)

	api.HandleFunc("/ai/suggest-subtasks", h.SuggestSubtasks).Methods(http.MethodPost)
	api.HandleFunc("/ai/re-prioritize-all", h.ReprioritizeAll).Methods(http.MethodGet)

	return router
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// currentUser returns the id stored by the auth middleware, answering 401
// itself when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User ID not found")
	}
	return userID, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return id, true
}

// Health reports whether the service can reach its database.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		h.Logger.Error("health check failed", "err", err)
		respondWithError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondWithAIError translates a failure of the AI layer.
func (h *Handlers) respondWithAIError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		genErr *ai.GenerationError
		valErr *ai.ValidationError
	)
	switch {
	case errors.Is(err, ai.ErrEmptyTitle):
		respondWithError(w, http.StatusBadRequest, "Task title is required")
	case errors.As(err, &valErr):
		h.Logger.Warn("AI response rejected", "path", r.URL.Path, "err", err)
		respondWithError(w, http.StatusBadGateway, "AI service returned an invalid response")
	case errors.As(err, &genErr):
		h.Logger.Error("AI generation failed", "path", r.URL.Path, "err", err)
		respondWithError(w, http.StatusBadGateway, "AI service unavailable")
	default:
		h.Logger.Error("AI request failed", "path", r.URL.Path, "err", err)
		respondWithError(w, http.StatusInternalServerError, "AI request failed")
	}
}
