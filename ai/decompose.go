package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// Decomposer breaks a task title into proposed subtasks.
type Decomposer struct {
	gen         Generator
	temperature float64
	logger      *log.Logger
	now         func() time.Time
}

// NewDecomposer returns a Decomposer that asks gen for suggestions.
func NewDecomposer(gen Generator, temperature float64, logger *log.Logger) *Decomposer {
	if logger == nil {
		logger = log.Default()
	}
	return &Decomposer{gen: gen, temperature: temperature, logger: logger, now: time.Now}
}

type subtaskItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
	CreatedAt   string `json:"created_at"`
}

// Suggest returns one or more unsaved drafts for title. The drafts carry no
// id or owner; the caller stores them as one batch.
//
// A blank title fails with ErrEmptyTitle before the model is called. An
// unreachable model or an empty list is a *GenerationError; anything that is
// not a well-formed array of subtasks is a *ValidationError, including a
// created_at that is not a timestamp. Optional fields that are absent or null
// get defaults.
func (d *Decomposer) Suggest(ctx context.Context, title string) ([]models.TaskDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	req, err := subtasksPrompt.render(struct{ Title string }{Title: title}, d.temperature)
	if err != nil {
		return nil, err
	}
	text, err := d.gen.Generate(ctx, req)
	if err != nil {
		return nil, asGenerationError(err)
	}

	arr, err := decodeArray(text)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, &GenerationError{Err: errNoSubtasks}
	}
	var items []subtaskItem
	if err := validateArray(subtaskSchema, arr, &items); err != nil {
		return nil, err
	}

	now := d.now().UTC()
	drafts := make([]models.TaskDraft, 0, len(items))
	for i, item := range items {
		draft := models.TaskDraft{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Priority:    i + 1,
			CreatedAt:   now,
		}
		if item.Priority != nil {
			draft.Priority = *item.Priority
		}
		if item.CreatedAt != "" {
			ts, err := time.Parse(time.RFC3339, item.CreatedAt)
			if err != nil {
				return nil, &ValidationError{Path: fmt.Sprintf("$[%d].created_at", i), Reason: "not an RFC 3339 timestamp", Err: err}
			}
			draft.CreatedAt = ts.UTC()
		}
		drafts = append(drafts, draft)
	}

	d.logger.Debug("subtasks suggested", "title", title, "count", len(drafts))
	return drafts, nil
}
