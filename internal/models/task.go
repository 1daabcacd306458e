package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const (
	// DateLayout is the on-disk format of due dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the on-disk format of created_at.
	TimestampLayout = "2006-01-02 15:04:05"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task represents a single to-do item.
type Task struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"` // "high", "medium", "low"
	DueDate     *string `json:"due_date"` // YYYY-MM-DD or null
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

// TaskInput holds the user-supplied fields of a new task.
type TaskInput struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// TaskPatch lists the fields to change on an existing task. Nil fields are
// left alone; an empty DueDate, or null in JSON, clears the due date.
type TaskPatch struct {
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// NewTask builds an unsaved task from input. The ID is assigned by the store.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	task := Task{
		Description: strings.TrimSpace(in.Description),
		Priority:    NormalizePriority(in.Priority),
		DueDate:     normalizeDate(in.DueDate),
		CreatedAt:   now.Format(TimestampLayout),
	}
	if err := task.Validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// NormalizePriority lowercases a priority and defaults blanks to medium.
func NormalizePriority(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return PriorityMedium
	}
	return p
}

func normalizeDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if err := validatePriority(t.Priority); err != nil {
		return err
	}
	return validateDueDate(t.DueDate)
}

func validateDescription(d string) error {
	if strings.TrimSpace(d) == "" {
		return invalid("description", "description is required")
	}
	return nil
}

func validatePriority(p string) error {
	if p != PriorityHigh && p != PriorityMedium && p != PriorityLow {
		return invalid("priority", "priority must be 'high', 'medium', or 'low'")
	}
	return nil
}

func validateDueDate(d *string) error {
	if d == nil {
		return nil
	}
	if _, err := time.Parse(DateLayout, *d); err != nil {
		return invalid("due_date", "invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// Apply returns a copy of t with the patch applied. Only the fields the
// patch sets are validated, so records loaded with odd values stay editable.
func (p TaskPatch) Apply(t Task) (Task, error) {
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
		if err := validateDescription(t.Description); err != nil {
			return Task{}, err
		}
	}
	if p.Priority != nil {
		t.Priority = NormalizePriority(*p.Priority)
		if err := validatePriority(t.Priority); err != nil {
			return Task{}, err
		}
	}
	if p.DueDate != nil {
		t.DueDate = normalizeDate(*p.DueDate)
		if err := validateDueDate(t.DueDate); err != nil {
			return Task{}, err
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t, nil
}

// UnmarshalJSON treats an explicit "due_date": null like "", clearing the date.
func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type plain TaskPatch
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	if raw, ok := fields["due_date"]; ok && string(bytes.TrimSpace(raw)) == "null" {
		none := ""
		p.DueDate = &none
	}
	return nil
}

// TaskCompleted is the predicate used to clear finished tasks.
func TaskCompleted(t Task) bool {
	return t.Completed
}

// Matches reports whether the description contains query, ignoring case.
func (t *Task) Matches(query string) bool {
	return strings.Contains(strings.ToLower(t.Description), strings.ToLower(query))
}

// IsOverdue returns true if the task has a due date before today and is not completed.
func (t *Task) IsOverdue() bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return *t.DueDate < time.Now().Format(DateLayout)
}

// PriorityOrder returns a numeric value for sorting by priority.
// Lower numbers indicate higher priority.
func (t *Task) PriorityOrder() int {
	switch t.Priority {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 99
	}
}
