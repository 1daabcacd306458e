package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pocketapps/internal/models"
)

// JSONTaskStore implements TaskStore over a JSON array file.
type JSONTaskStore struct {
	mu     sync.Mutex
	file   *recordFile[models.Task]
	opts   Options
	tasks  []models.Task
	lastID int64
}

// NewJSONTaskStore opens the task file at path and loads it.
func NewJSONTaskStore(path string, opts Options) (*JSONTaskStore, error) {
	file, err := openRecordFile[models.Task](path, taskSchema, taskFileIndent, opts.logger())
	if err != nil {
		return nil, err
	}

	s := &JSONTaskStore{file: file, opts: opts}
	if err := s.Load(); err != nil {
		file.close()
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the contents of the file.
func (s *JSONTaskStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.file.load()
	if err != nil {
		return err
	}
	s.tasks = tasks
	s.lastID = 0
	s.repair()
	return nil
}

// repair fills in defaults and gives duplicate ids a fresh value.
func (s *JSONTaskStore) repair() {
	s.lastID = max(s.lastID, s.maxID())
	seen := make(map[int64]bool, len(s.tasks))
	for i := range s.tasks {
		t := &s.tasks[i]
		t.Priority = models.NormalizePriority(t.Priority)
		if seen[t.ID] {
			s.lastID++
			s.opts.logger().Warn("reassigned duplicate task id", "path", s.file.path, "old", t.ID, "new", s.lastID)
			t.ID = s.lastID
		}
		seen[t.ID] = true
	}
}

// Save writes the in-memory list to disk.
func (s *JSONTaskStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.save(s.tasks)
}

// Close releases the file lock.
func (s *JSONTaskStore) Close() error {
	return s.file.close()
}

func (s *JSONTaskStore) maxID() int64 {
	var id int64
	for _, t := range s.tasks {
		id = max(id, t.ID)
	}
	return id
}

func (s *JSONTaskStore) nextID() int64 {
	if s.opts.StableIDs {
		s.lastID = max(s.lastID, s.maxID()) + 1
		return s.lastID
	}
	return s.maxID() + 1
}

func (s *JSONTaskStore) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// renumber reassigns ids 1..N in list order unless ids are stable.
func (s *JSONTaskStore) renumber() {
	if s.opts.StableIDs {
		return
	}
	for i := range s.tasks {
		s.tasks[i].ID = int64(i + 1)
	}
}

// AddTask validates input, appends a new task and saves.
func (s *JSONTaskStore) AddTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	task, err := models.NewTask(in, s.opts.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID()
	s.tasks = append(s.tasks, task)

	created := cloneTask(task)
	return &created, s.file.save(s.tasks)
}

// ListTasks returns a snapshot of the tasks, omitting completed ones unless showCompleted is set.
func (s *JSONTaskStore) ListTasks(ctx context.Context, showCompleted bool) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if showCompleted {
		return cloneTasks(s.tasks, nil), nil
	}
	return cloneTasks(s.tasks, func(t models.Task) bool { return !t.Completed }), nil
}

// GetTask returns a copy of the task with the given id.
func (s *JSONTaskStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	task := cloneTask(s.tasks[i])
	return &task, nil
}

// SearchTasks returns the tasks whose description contains query.
func (s *JSONTaskStore) SearchTasks(ctx context.Context, query string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return cloneTasks(s.tasks, nil), nil
	}
	return cloneTasks(s.tasks, func(t models.Task) bool { return t.Matches(query) }), nil
}

// UpdateTask applies patch to the task with the given id and saves.
func (s *JSONTaskStore) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	updated, err := patch.Apply(s.tasks[i])
	if err != nil {
		return true, err
	}
	s.tasks[i] = updated
	return true, s.file.save(s.tasks)
}

// CompleteTask marks the task with the given id as completed.
func (s *JSONTaskStore) CompleteTask(ctx context.Context, id int64) (bool, error) {
	done := true
	return s.UpdateTask(ctx, id, models.TaskPatch{Completed: &done})
}

// DeleteTask removes the task with the given id and renumbers the rest.
func (s *JSONTaskStore) DeleteTask(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.renumber()
	return true, s.file.save(s.tasks)
}

// ClearTasks removes every task for which match returns true and reports how many went.
// A nil match removes nothing.
func (s *JSONTaskStore) ClearTasks(ctx context.Context, match func(models.Task) bool) (int, error) {
	if match == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !match(t) {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	clear(s.tasks[len(kept):])
	s.tasks = kept
	s.renumber()
	return removed, s.file.save(s.tasks)
}
