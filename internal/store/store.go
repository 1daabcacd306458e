package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"pocketapps/internal/models"
)

var (
	// ErrNotFound is returned by lookups when no record has the given id.
	ErrNotFound = errors.New("record not found")

	// ErrLocked is returned when another process owns the backing file.
	ErrLocked = errors.New("store file is locked by another process")
)

// MalformedStoreError describes a backing file that exists but could not be
// parsed. It is logged and recovered from by starting with an empty store.
type MalformedStoreError struct {
	Path string
	Err  error
}

func (e *MalformedStoreError) Error() string {
	return fmt.Sprintf("malformed store file %s: %v", e.Path, e.Err)
}

func (e *MalformedStoreError) Unwrap() error { return e.Err }

// PersistError is returned when a mutation was applied in memory but could
// not be written to disk. Calling Save again retries the write.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// TaskStore defines the persistence operations of the to-do list.
//
// Mutations report found == false when no task matches; err is reserved for
// validation failures and persistence errors. Clear with a nil match removes nothing.
type TaskStore interface {
	AddTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	ListTasks(ctx context.Context, showCompleted bool) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	SearchTasks(ctx context.Context, query string) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (bool, error)
	CompleteTask(ctx context.Context, id int64) (bool, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ClearTasks(ctx context.Context, match func(models.Task) bool) (int, error)

	Close() error
}

// ContactStore defines the persistence operations of the contact book.
// Positions are 0-based indexes into the full, unfiltered list. Clear with a
// nil match removes nothing.
type ContactStore interface {
	AddContact(ctx context.Context, c models.Contact) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	SearchContacts(ctx context.Context, query string) ([]models.Contact, error)
	UpdateContact(ctx context.Context, id int64, c models.Contact) (bool, error)
	ReplaceContactAt(ctx context.Context, pos int, c models.Contact) (bool, error)
	DeleteContact(ctx context.Context, id int64) (bool, error)
	DeleteContactAt(ctx context.Context, pos int) (bool, error)
	ClearContacts(ctx context.Context, match func(models.Contact) bool) (int, error)

	Close() error
}

// Options configures a store.
type Options struct {
	// Logger receives malformed-file and repair warnings. Nil discards them.
	Logger *log.Logger

	// StableIDs disables renumbering of task ids after delete and clear.
	StableIDs bool

	// Now overrides the clock used for created_at.
	Now func() time.Time
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func cloneTask(t models.Task) models.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

func cloneTasks(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep != nil && !keep(t) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out
}
