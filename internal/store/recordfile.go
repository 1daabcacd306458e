package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/pretty"
)

const (
	taskFileIndent    = "    "
	contactFileIndent = "  "
)

// recordFile is a JSON array of records kept in a single file.
type recordFile[T any] struct {
	path   string
	schema *jsonschema.Schema
	format *pretty.Options
	lock   *flock.Flock
	logger *log.Logger
}

// openRecordFile takes ownership of path. The file itself need not exist.
// Saved files are indented with indent.
func openRecordFile[T any](path string, schema *jsonschema.Schema, indent string, logger *log.Logger) (*recordFile[T], error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	return &recordFile[T]{
		path:   path,
		schema: schema,
		format: &pretty.Options{Indent: indent},
		lock:   lock,
		logger: logger,
	}, nil
}

// load returns the records on disk. A missing file is an empty list; a
// malformed file is logged and also treated as an empty list.
func (f *recordFile[T]) load() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	records, err := f.decode(data)
	if err != nil {
		f.logger.Warn("starting with an empty store", "err", &MalformedStoreError{Path: f.path, Err: err})
		return nil, nil
	}
	return records, nil
}

func (f *recordFile[T]) decode(data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("file is empty")
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if f.schema != nil {
		if err := f.schema.Validate(doc); err != nil {
			return nil, err
		}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// save replaces the file with records. The write goes to a temporary file
// that is renamed over the target, so readers never see a partial array.
func (f *recordFile[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return &PersistError{Path: f.path, Err: err}
	}

	data := pretty.PrettyOptions(buf.Bytes(), f.format)
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}

	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return &PersistError{Path: f.path, Err: err}
	}
	return nil
}

func (f *recordFile[T]) close() error {
	if f.lock == nil {
		return nil
	}
	return f.lock.Unlock()
}
