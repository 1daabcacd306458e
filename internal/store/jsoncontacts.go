package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pocketapps/internal/models"
)

// JSONContactStore implements ContactStore over a JSON array file.
// Contacts keep insertion order; ids are never renumbered or reused while
// the store is open.
type JSONContactStore struct {
	mu       sync.Mutex
	file     *recordFile[models.Contact]
	opts     Options
	contacts []models.Contact
	lastID   int64
}

// NewJSONContactStore opens the contact file at path and loads it.
func NewJSONContactStore(path string, opts Options) (*JSONContactStore, error) {
	file, err := openRecordFile[models.Contact](path, contactSchema, contactFileIndent, opts.logger())
	if err != nil {
		return nil, err
	}

	s := &JSONContactStore{file: file, opts: opts}
	if err := s.Load(); err != nil {
		file.close()
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the contents of the file.
func (s *JSONContactStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.file.load()
	if err != nil {
		return err
	}
	s.contacts = contacts
	s.assignMissingIDs()
	return nil
}

// assignMissingIDs gives contacts without an id, or with a duplicate one,
// the next free id in list order. The change is persisted on the next save.
func (s *JSONContactStore) assignMissingIDs() {
	next := s.maxID()
	seen := make(map[int64]bool, len(s.contacts))
	for i := range s.contacts {
		c := &s.contacts[i]
		if c.ID <= 0 || seen[c.ID] {
			next++
			c.ID = next
		}
		seen[c.ID] = true
	}
	s.lastID = next
}

// Save writes the in-memory list to disk.
func (s *JSONContactStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.save(s.contacts)
}

// Close releases the file lock.
func (s *JSONContactStore) Close() error {
	return s.file.close()
}

func (s *JSONContactStore) maxID() int64 {
	var id int64
	for _, c := range s.contacts {
		id = max(id, c.ID)
	}
	return id
}

func (s *JSONContactStore) indexOf(id int64) int {
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *JSONContactStore) snapshot(keep func(models.Contact) bool) []models.Contact {
	out := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// AddContact validates c, appends it with a new id and saves.
func (s *JSONContactStore) AddContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID = max(s.lastID, s.maxID()) + 1
	c.ID = s.lastID
	s.contacts = append(s.contacts, c)
	return &c, s.file.save(s.contacts)
}

// ListContacts returns a snapshot in insertion order.
func (s *JSONContactStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(nil), nil
}

// GetContact returns a copy of the contact with the given id.
func (s *JSONContactStore) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	c := s.contacts[i]
	return &c, nil
}

// SearchContacts returns contacts whose name or phone contains query.
// An empty query returns every contact.
func (s *JSONContactStore) SearchContacts(ctx context.Context, query string) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return s.snapshot(nil), nil
	}
	return s.snapshot(func(c models.Contact) bool { return c.Matches(query) }), nil
}

func (s *JSONContactStore) replace(i int, c models.Contact) (bool, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return true, err
	}
	c.ID = s.contacts[i].ID
	s.contacts[i] = c
	return true, s.file.save(s.contacts)
}

// UpdateContact overwrites the fields of the contact with the given id.
func (s *JSONContactStore) UpdateContact(ctx context.Context, id int64, c models.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	return s.replace(i, c)
}

// ReplaceContactAt overwrites the contact at position pos.
func (s *JSONContactStore) ReplaceContactAt(ctx context.Context, pos int, c models.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 || pos >= len(s.contacts) {
		return false, nil
	}
	return s.replace(pos, c)
}

func (s *JSONContactStore) remove(i int) (bool, error) {
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	return true, s.file.save(s.contacts)
}

// DeleteContact removes the contact with the given id.
func (s *JSONContactStore) DeleteContact(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	return s.remove(i)
}

// DeleteContactAt removes the contact at position pos.
func (s *JSONContactStore) DeleteContactAt(ctx context.Context, pos int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 || pos >= len(s.contacts) {
		return false, nil
	}
	return s.remove(pos)
}

// ClearContacts removes every contact for which match returns true.
// A nil match removes nothing.
func (s *JSONContactStore) ClearContacts(ctx context.Context, match func(models.Contact) bool) (int, error) {
	if match == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshot(func(c models.Contact) bool { return !match(c) })
	removed := len(s.contacts) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.contacts = kept
	return removed, s.file.save(s.contacts)
}
