package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestTaskValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty description should fail",
			task:    Task{Description: "", Priority: "medium"},
			wantErr: true,
			errMsg:  "description is required",
		},
		{
			name:    "whitespace description should fail",
			task:    Task{Description: "   ", Priority: "medium"},
			wantErr: true,
			errMsg:  "description is required",
		},
		{
			name:    "bad due date should fail",
			task:    Task{Description: "Test task", Priority: "medium", DueDate: strPtr("01/02/2024")},
			wantErr: true,
			errMsg:  "invalid date format, use YYYY-MM-DD",
		},
		{
			name:    "valid task should pass",
			task:    Task{Description: "Test task", Priority: "medium", DueDate: strPtr("2024-01-02")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestTaskValidation_PriorityValues(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{name: "high priority is valid", task: Task{Description: "Test", Priority: "high"}},
		{name: "medium priority is valid", task: Task{Description: "Test", Priority: "medium"}},
		{name: "low priority is valid", task: Task{Description: "Test", Priority: "low"}},
		{name: "empty priority should fail", task: Task{Description: "Test", Priority: ""}, wantErr: true},
		{name: "invalid priority should fail", task: Task{Description: "Test", Priority: "urgent"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && err.Error() != "priority must be 'high', 'medium', or 'low'" {
				t.Errorf("unexpected error message: %v", err)
			}
		})
	}
}

func TestNewTask_Normalizes(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)

	task, err := NewTask(TaskInput{Description: "  buy milk ", Priority: "High", DueDate: "2024-01-01"}, now)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}

	if task.Description != "buy milk" {
		t.Errorf("expected trimmed description, got %q", task.Description)
	}
	if task.Priority != "high" {
		t.Errorf("expected lowercased priority, got %q", task.Priority)
	}
	if task.DueDate == nil || *task.DueDate != "2024-01-01" {
		t.Errorf("expected due date 2024-01-01, got %v", task.DueDate)
	}
	if task.Completed {
		t.Error("expected new task to be pending")
	}
	if task.CreatedAt != "2024-01-01 09:30:00" {
		t.Errorf("unexpected created_at %q", task.CreatedAt)
	}
}

func TestNewTask_DefaultsAndValidation(t *testing.T) {
	task, err := NewTask(TaskInput{Description: "x", DueDate: "   "}, time.Now())
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %q", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("expected blank due date to be nil, got %q", *task.DueDate)
	}

	_, err = NewTask(TaskInput{Description: "  "}, time.Now())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "description" {
		t.Errorf("expected description field, got %q", verr.Field)
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	base := Task{ID: 3, Description: "Write", Priority: "low", DueDate: strPtr("2024-05-01"), CreatedAt: "2024-01-01 00:00:00"}

	got, err := TaskPatch{Completed: boolPtr(true), Priority: strPtr("HIGH"), DueDate: strPtr("")}.Apply(base)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !got.Completed || got.Priority != "high" || got.DueDate != nil {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.ID != 3 || got.CreatedAt != base.CreatedAt || got.Description != "Write" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if base.Completed {
		t.Error("Apply must not mutate its argument")
	}

	if _, err := (TaskPatch{Description: strPtr(" ")}).Apply(base); err == nil {
		t.Error("expected validation error for blank description")
	}
}

func TestTaskPatch_Apply_ValidatesOnlyChangedFields(t *testing.T) {
	loaded := Task{ID: 1, Description: "legacy", Priority: "urgent", DueDate: strPtr("tomorrow")}

	got, err := TaskPatch{Completed: boolPtr(true)}.Apply(loaded)
	if err != nil {
		t.Fatalf("completing a legacy record failed: %v", err)
	}
	if !got.Completed || got.Priority != "urgent" || *got.DueDate != "tomorrow" {
		t.Errorf("unexpected task: %+v", got)
	}

	if _, err := (TaskPatch{Priority: strPtr("urgent")}).Apply(Task{Description: "x", Priority: "low"}); err == nil {
		t.Error("expected validation error for a patched priority")
	}
	if _, err := (TaskPatch{DueDate: strPtr("31/12/2024")}).Apply(loaded); err == nil {
		t.Error("expected validation error for a patched due date")
	}
}

func TestTaskPatch_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantDue *string
	}{
		{name: "null clears", body: `{"due_date": null}`, wantDue: strPtr("")},
		{name: "empty clears", body: `{"due_date": ""}`, wantDue: strPtr("")},
		{name: "date set", body: `{"due_date": "2024-02-03"}`, wantDue: strPtr("2024-02-03")},
		{name: "absent", body: `{"completed": true}`, wantDue: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p TaskPatch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if (p.DueDate == nil) != (tt.wantDue == nil) {
				t.Fatalf("DueDate = %v, want %v", p.DueDate, tt.wantDue)
			}
			if p.DueDate != nil && *p.DueDate != *tt.wantDue {
				t.Errorf("DueDate = %q, want %q", *p.DueDate, *tt.wantDue)
			}
		})
	}

	var p TaskPatch
	json.Unmarshal([]byte(`{"due_date": null}`), &p)
	got, err := p.Apply(Task{Description: "x", Priority: "low", DueDate: strPtr("2024-01-01")})
	if err != nil || got.DueDate != nil {
		t.Errorf("expected null to clear the due date, got %v, %v", got.DueDate, err)
	}
}

func TestTask_Matches(t *testing.T) {
	task := Task{Description: "Buy Milk"}
	if !task.Matches("milk") {
		t.Error("expected case-insensitive match")
	}
	if task.Matches("bread") {
		t.Error("unexpected match")
	}
}

func TestTask_IsOverdue(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	tests := []struct {
		name     string
		task     Task
		expected bool
	}{
		{
			name:     "past due date and not completed is overdue",
			task:     Task{DueDate: &yesterday, Completed: false},
			expected: true,
		},
		{
			name:     "past due date but completed is not overdue",
			task:     Task{DueDate: &yesterday, Completed: true},
			expected: false,
		},
		{
			name:     "future due date is not overdue",
			task:     Task{DueDate: &tomorrow, Completed: false},
			expected: false,
		},
		{
			name:     "no due date is not overdue",
			task:     Task{DueDate: nil, Completed: false},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.task.IsOverdue()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTask_PriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		expected int
	}{
		{
			name:     "high priority returns 1",
			task:     Task{Priority: "high"},
			expected: 1,
		},
		{
			name:     "medium priority returns 2",
			task:     Task{Priority: "medium"},
			expected: 2,
		},
		{
			name:     "low priority returns 3",
			task:     Task{Priority: "low"},
			expected: 3,
		},
		{
			name:     "unknown priority returns 99",
			task:     Task{Priority: "unknown"},
			expected: 99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.task.PriorityOrder()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
