package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"pocketapps/internal/models"
)

// SQLiteStore implements TaskStore and ContactStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

var (
	_ TaskStore    = (*SQLiteStore)(nil)
	_ ContactStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db, opts: opts}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const taskColumns = `id, description, priority, due_date, completed, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	var dueDate sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Description,
		&task.Priority,
		&dueDate,
		&task.Completed,
		&task.CreatedAt,
	)
	if err != nil {
		return task, err
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.String
	}
	return task, nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// AddTask validates input and inserts a new task.
func (s *SQLiteStore) AddTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	task, err := models.NewTask(in, s.opts.now())
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (description, priority, due_date, completed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, task.Description, task.Priority, task.DueDate, task.Completed, task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id

	return &task, nil
}

// ListTasks retrieves tasks in id order, omitting completed ones unless showCompleted is set.
func (s *SQLiteStore) ListTasks(ctx context.Context, showCompleted bool) ([]models.Task, error) {
	if showCompleted {
		return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	}
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE completed = FALSE ORDER BY id ASC`)
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// SearchTasks returns the tasks whose description contains query.
// Matching happens in Go so case folding agrees with the JSON store.
func (s *SQLiteStore) SearchTasks(ctx context.Context, query string) ([]models.Task, error) {
	tasks, err := s.ListTasks(ctx, true)
	if err != nil || strings.TrimSpace(query) == "" {
		return tasks, err
	}

	matched := []models.Task{}
	for _, t := range tasks {
		if t.Matches(query) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// UpdateTask applies patch to the task with the given id.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (bool, error) {
	task, err := s.GetTask(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updated, err := patch.Apply(*task)
	if err != nil {
		return true, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks
		SET description = ?, priority = ?, due_date = ?, completed = ?
		WHERE id = ?
	`, updated.Description, updated.Priority, updated.DueDate, updated.Completed, id)
	if err != nil {
		return true, fmt.Errorf("failed to update task: %w", err)
	}

	return true, nil
}

// CompleteTask marks the task with the given id as completed.
func (s *SQLiteStore) CompleteTask(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = TRUE WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to complete task: %w", err)
	}
	return n > 0, nil
}

// DeleteTask deletes a task by ID and renumbers the rest.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) (bool, error) {
	n, err := s.deleteTasks(ctx, []int64{id})
	return n > 0, err
}

// ClearTasks removes every task for which match returns true.
func (s *SQLiteStore) ClearTasks(ctx context.Context, match func(models.Task) bool) (int, error) {
	if match == nil {
		return 0, nil
	}

	tasks, err := s.ListTasks(ctx, true)
	if err != nil {
		return 0, err
	}

	var ids []int64
	for _, t := range tasks {
		if match(t) {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.deleteTasks(ctx, ids)
	return int(n), err
}

func (s *SQLiteStore) deleteTasks(ctx context.Context, ids []int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM tasks WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var removed int64
	for _, id := range ids {
		result, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete task: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to delete task: %w", err)
		}
		removed += n
	}
	if removed == 0 {
		return 0, nil
	}

	if !s.opts.StableIDs {
		if err := renumberTasks(ctx, tx); err != nil {
			return 0, err
		}
	}

	return removed, tx.Commit()
}

// renumberTasks compacts task ids to 1..N in id order. Walking upwards means
// each target id is already free when a row moves into it.
func renumberTasks(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM tasks ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("failed to list task ids: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, id := range ids {
		want := int64(i + 1)
		if id == want {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET id = ? WHERE id = ?`, want, id); err != nil {
			return fmt.Errorf("failed to renumber task %d: %w", id, err)
		}
	}

	// Make the next AUTOINCREMENT id follow the last renumbered one.
	if _, err := tx.ExecContext(ctx, `UPDATE sqlite_sequence SET seq = ? WHERE name = 'tasks'`, len(ids)); err != nil {
		return fmt.Errorf("failed to reset task sequence: %w", err)
	}
	return nil
}

const contactColumns = `id, name, phone, email, address`

func scanContact(row scanner) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address)
	return c, err
}

// AddContact validates c and inserts it.
func (s *SQLiteStore) AddContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (name, phone, email, address) VALUES (?, ?, ?, ?)
	`, c.Name, c.Phone, c.Email, c.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id

	return &c, nil
}

// ListContacts retrieves all contacts in insertion order.
func (s *SQLiteStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

// GetContact retrieves a contact by ID.
func (s *SQLiteStore) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	c, err := scanContact(s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// SearchContacts returns contacts whose name or phone contains query.
func (s *SQLiteStore) SearchContacts(ctx context.Context, query string) ([]models.Contact, error) {
	contacts, err := s.ListContacts(ctx)
	if err != nil || strings.TrimSpace(query) == "" {
		return contacts, err
	}

	matched := []models.Contact{}
	for _, c := range contacts {
		if c.Matches(query) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// UpdateContact overwrites the fields of the contact with the given id.
func (s *SQLiteStore) UpdateContact(ctx context.Context, id int64, c models.Contact) (bool, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		if _, getErr := s.GetContact(ctx, id); errors.Is(getErr, ErrNotFound) {
			return false, nil
		}
		return true, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET name = ?, phone = ?, email = ?, address = ? WHERE id = ?
	`, c.Name, c.Phone, c.Email, c.Address, id)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) contactIDAt(ctx context.Context, pos int) (int64, bool, error) {
	if pos < 0 {
		return 0, false, nil
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM contacts ORDER BY id ASC LIMIT 1 OFFSET ?`, pos).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to locate contact at %d: %w", pos, err)
	}
	return id, true, nil
}

// ReplaceContactAt overwrites the contact at position pos.
func (s *SQLiteStore) ReplaceContactAt(ctx context.Context, pos int, c models.Contact) (bool, error) {
	id, ok, err := s.contactIDAt(ctx, pos)
	if !ok || err != nil {
		return false, err
	}
	return s.UpdateContact(ctx, id, c)
}

// DeleteContact deletes a contact by ID.
func (s *SQLiteStore) DeleteContact(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return n > 0, nil
}

// DeleteContactAt deletes the contact at position pos.
func (s *SQLiteStore) DeleteContactAt(ctx context.Context, pos int) (bool, error) {
	id, ok, err := s.contactIDAt(ctx, pos)
	if !ok || err != nil {
		return false, err
	}
	return s.DeleteContact(ctx, id)
}

// ClearContacts removes every contact for which match returns true.
func (s *SQLiteStore) ClearContacts(ctx context.Context, match func(models.Contact) bool) (int, error) {
	if match == nil {
		return 0, nil
	}

	contacts, err := s.ListContacts(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for _, c := range contacts {
		if !match(c) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, c.ID); err != nil {
			return 0, fmt.Errorf("failed to delete contact: %w", err)
		}
		removed++
	}

	return removed, tx.Commit()
}
