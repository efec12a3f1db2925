package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// Reprioritizer re-ranks a user's tasks with the model and merges the answer
// back onto the stored records.
type Reprioritizer struct {
	gen         Generator
	temperature float64
	logger      *log.Logger
}

// NewReprioritizer returns a Reprioritizer that asks gen for a new ranking.
func NewReprioritizer(gen Generator, temperature float64, logger *log.Logger) *Reprioritizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Reprioritizer{gen: gen, temperature: temperature, logger: logger}
}

// Outcome is the result of a re-prioritization. Tasks always has the same
// members, in the same order, as the input. When Accepted is false every
// priority is unchanged and Rejection says why the answer was discarded.
type Outcome struct {
	Tasks     []models.Task
	Accepted  bool
	Rejection error
}

// wireTask is the form a task is sent to the model in.
type wireTask struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"created_at"`
	Completed   bool   `json:"completed"`
	OwnerID     int    `json:"owner_id"`
}

type priorityItem struct {
	ID       *int   `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

func toWire(tasks []models.Task) []wireTask {
	out := make([]wireTask, len(tasks))
	for i, t := range tasks {
		out[i] = wireTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
			Completed:   t.Completed,
			OwnerID:     t.OwnerID,
		}
	}
	return out
}

// Reprioritize asks the model for a new ranking of tasks and applies it only
// if it maps one-to-one onto the input and ranks the tasks 1..N with no ties
// or gaps. Any other answer is rejected as a whole and the tasks come back
// unchanged. Only failures to obtain an answer are returned as errors.
//
// An empty input returns an empty Outcome without calling the model.
func (r *Reprioritizer) Reprioritize(ctx context.Context, tasks []models.Task) (*Outcome, error) {
	if len(tasks) == 0 {
		return &Outcome{Tasks: []models.Task{}, Accepted: true}, nil
	}

	payload, err := json.MarshalIndent(toWire(tasks), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize tasks: %w", err)
	}
	req, err := reprioritizePrompt.render(struct {
		Count     int
		TasksJSON string
	}{Count: len(tasks), TasksJSON: string(payload)}, r.temperature)
	if err != nil {
		return nil, err
	}

	text, err := r.gen.Generate(ctx, req)
	if err != nil {
		return nil, asGenerationError(err)
	}

	merged, fallbacks, err := mergePriorities(tasks, text)
	if err != nil {
		r.logger.Warn("re-prioritization rejected, keeping current priorities",
			"tasks", len(tasks), "reason", err)
		return &Outcome{Tasks: cloneTasks(tasks), Rejection: err}, nil
	}
	if fallbacks > 0 {
		r.logger.Warn("model omitted task ids, matched by title", "tasks", len(tasks), "by_title", fallbacks)
	}
	return &Outcome{Tasks: merged, Accepted: true}, nil
}

// mergePriorities validates the model answer and returns a copy of originals
// carrying the new priorities. It also reports how many items had to be
// matched by title because their id was missing.
//
// An item is matched by id when it has one, and the echoed title must agree
// with the stored one. Without an id it is matched by title, but only when
// that title is unique among originals. Each original can be matched once.
func mergePriorities(originals []models.Task, text string) ([]models.Task, int, error) {
	arr, err := decodeArray(text)
	if err != nil {
		return nil, 0, err
	}
	var items []priorityItem
	if err := validateArray(prioritySchema, arr, &items); err != nil {
		return nil, 0, err
	}
	if len(items) != len(originals) {
		return nil, 0, &IntegrityMismatchError{Expected: len(originals), Received: len(items)}
	}

	byID := make(map[int]int, len(originals))
	byTitle := make(map[string][]int, len(originals))
	for i, t := range originals {
		byID[t.ID] = i
		byTitle[t.Title] = append(byTitle[t.Title], i)
	}

	merged := cloneTasks(originals)
	seen := make([]bool, len(originals))
	matched, fallbacks := 0, 0
	for _, item := range items {
		idx := -1
		if item.ID != nil {
			if i, ok := byID[*item.ID]; ok && originals[i].Title == item.Title {
				idx = i
			}
		} else if candidates := byTitle[item.Title]; len(candidates) == 1 {
			idx = candidates[0]
			fallbacks++
		}
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		merged[idx].Priority = item.Priority
		matched++
	}

	if matched != len(originals) {
		return nil, 0, &IntegrityMismatchError{Expected: len(originals), Received: len(items), Matched: matched}
	}
	if err := checkRanks(merged); err != nil {
		return nil, 0, err
	}
	return merged, fallbacks, nil
}

// checkRanks requires the priorities to be exactly 1..len(tasks).
func checkRanks(tasks []models.Task) error {
	used := make([]bool, len(tasks)+1)
	for _, t := range tasks {
		if t.Priority < 1 || t.Priority > len(tasks) {
			return &ValidationError{Reason: fmt.Sprintf("priority %d outside 1..%d", t.Priority, len(tasks))}
		}
		if used[t.Priority] {
			return &ValidationError{Reason: fmt.Sprintf("priority %d assigned more than once", t.Priority)}
		}
		used[t.Priority] = true
	}
	return nil
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
