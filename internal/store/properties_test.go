package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"pocketapps/internal/models"
)

func descriptionGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9 ]{0,5}[A-Za-z0-9][A-Za-z0-9 .,!?<>&]{0,30}`)
}

func taskInputGenerator() *rapid.Generator[models.TaskInput] {
	return rapid.Custom(func(t *rapid.T) models.TaskInput {
		in := models.TaskInput{
			Description: descriptionGenerator().Draw(t, "description"),
			Priority:    rapid.SampledFrom([]string{"", "low", "Medium", "HIGH"}).Draw(t, "priority"),
		}
		if rapid.Bool().Draw(t, "hasDueDate") {
			in.DueDate = rapid.SampledFrom([]string{"2024-01-01", "2025-06-30", "2030-12-31"}).Draw(t, "dueDate")
		}
		return in
	})
}

// openPropertyStore opens a JSON task store in a fresh directory. The
// returned func closes it and removes the directory.
func openPropertyStore(t *rapid.T) (*JSONTaskStore, string, func()) {
	dir, err := os.MkdirTemp("", "pocketapps-prop-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	path := filepath.Join(dir, "todo.json")
	s, err := NewJSONTaskStore(path, Options{Now: fixedNow})
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("NewJSONTaskStore failed: %v", err)
	}
	return s, path, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func assertContiguousIDs(t *rapid.T, tasks []models.Task) {
	for i, task := range tasks {
		if task.ID != int64(i+1) {
			t.Fatalf("position %d has id %d, want %d", i, task.ID, i+1)
		}
	}
}

func testAdd_SequentialIDs_Properties(t *rapid.T) {
	s, _, done := openPropertyStore(t)
	defer done()
	ctx := context.Background()

	inputs := rapid.SliceOfN(taskInputGenerator(), 0, 20).Draw(t, "inputs")
	for _, in := range inputs {
		if _, err := s.AddTask(ctx, in); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}

	tasks, _ := s.ListTasks(ctx, true)
	if len(tasks) != len(inputs) {
		t.Fatalf("expected %d tasks, got %d", len(inputs), len(tasks))
	}
	assertContiguousIDs(t, tasks)
}

func TestAdd_SequentialIDs_Properties(t *testing.T) {
	rapid.Check(t, testAdd_SequentialIDs_Properties)
}

func testDelete_RenumbersPreservingOrder_Properties(t *rapid.T) {
	s, _, done := openPropertyStore(t)
	defer done()
	ctx := context.Background()

	n := rapid.IntRange(1, 15).Draw(t, "n")
	for i := 0; i < n; i++ {
		s.AddTask(ctx, taskInputGenerator().Draw(t, "input"))
	}
	before, _ := s.ListTasks(ctx, true)

	id := rapid.Int64Range(1, int64(n)).Draw(t, "id")
	ok, err := s.DeleteTask(ctx, id)
	if !ok || err != nil {
		t.Fatalf("DeleteTask(%d) = %v, %v", id, ok, err)
	}

	after, _ := s.ListTasks(ctx, true)
	if len(after) != n-1 {
		t.Fatalf("expected %d tasks, got %d", n-1, len(after))
	}
	assertContiguousIDs(t, after)

	want := append(before[:id-1:id-1], before[id:]...)
	for i := range after {
		if after[i].Description != want[i].Description || after[i].CreatedAt != want[i].CreatedAt {
			t.Fatalf("order changed at %d: %q vs %q", i, after[i].Description, want[i].Description)
		}
	}
}

func TestDelete_RenumbersPreservingOrder_Properties(t *testing.T) {
	rapid.Check(t, testDelete_RenumbersPreservingOrder_Properties)
}

func testClearCompleted_Count_Properties(t *rapid.T) {
	s, _, done := openPropertyStore(t)
	defer done()
	ctx := context.Background()

	flags := rapid.SliceOfN(rapid.Bool(), 0, 20).Draw(t, "completed")
	completed := 0
	for i, c := range flags {
		s.AddTask(ctx, models.TaskInput{Description: "task"})
		if c {
			s.CompleteTask(ctx, int64(i+1))
			completed++
		}
	}

	removed, err := s.ClearTasks(ctx, models.TaskCompleted)
	if err != nil {
		t.Fatalf("ClearTasks failed: %v", err)
	}
	if removed != completed {
		t.Fatalf("expected %d removed, got %d", completed, removed)
	}

	tasks, _ := s.ListTasks(ctx, true)
	if len(tasks) != len(flags)-completed {
		t.Fatalf("expected %d remaining, got %d", len(flags)-completed, len(tasks))
	}
	for _, task := range tasks {
		if task.Completed {
			t.Fatalf("completed task %d survived clear", task.ID)
		}
	}
	assertContiguousIDs(t, tasks)
}

func TestClearCompleted_Count_Properties(t *testing.T) {
	rapid.Check(t, testClearCompleted_Count_Properties)
}

func testSave_Roundtrip_Properties(t *rapid.T) {
	s, path, done := openPropertyStore(t)
	defer done()
	ctx := context.Background()

	inputs := rapid.SliceOfN(taskInputGenerator(), 0, 10).Draw(t, "inputs")
	for _, in := range inputs {
		s.AddTask(ctx, in)
	}
	before, _ := s.ListTasks(ctx, true)

	s.Close()
	again, err := NewJSONTaskStore(path, Options{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer again.Close()

	after, _ := again.ListTasks(ctx, true)
	if len(before) != len(after) {
		t.Fatalf("expected %d tasks, got %d", len(before), len(after))
	}
	for i := range before {
		if !tasksEqual(before[i], after[i]) {
			t.Fatalf("task %d differs after reload: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestSave_Roundtrip_Properties(t *testing.T) {
	rapid.Check(t, testSave_Roundtrip_Properties)
}

func testSearch_NeverMutates_Properties(t *rapid.T) {
	s, path, done := openPropertyStore(t)
	defer done()
	ctx := context.Background()

	s.AddTask(ctx, taskInputGenerator().Draw(t, "input"))
	before, _ := os.ReadFile(path)

	query := rapid.StringMatching(`[A-Za-z ]{0,6}`).Draw(t, "query")
	got, _ := s.SearchTasks(ctx, query)
	trimmed := strings.TrimSpace(query)
	for _, task := range got {
		if trimmed != "" && !task.Matches(trimmed) {
			t.Fatalf("task %q does not match %q", task.Description, query)
		}
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatal("search changed the file")
	}
}

func TestSearch_NeverMutates_Properties(t *testing.T) {
	rapid.Check(t, testSearch_NeverMutates_Properties)
}
