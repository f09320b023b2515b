package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/metrics"
	"github.com/Tiliavir/file-time-tracker/internal/model"
)

// LogFileName is the name of the persisted log inside the tool directory.
const LogFileName = "time_log.json"

var (
	// ErrCorruptLog is returned by Load when the log exists but is not a valid
	// log document. The file is left in place.
	ErrCorruptLog = errors.New("corrupt time log")
	// ErrNoLog is returned by ReadRaw when no log has been written yet.
	ErrNoLog = errors.New("no time log recorded yet")
)

// Store owns the on-disk time log. It assumes a single writer.
type Store struct {
	path    string
	logger  logger.Logger
	metrics metrics.Recorder
}

// NewStore returns a Store for the log at path.
func NewStore(path string, log logger.Logger, rec metrics.Recorder) *Store {
	return &Store{path: path, logger: log, metrics: rec}
}

// LogPath returns <root>/<dir>/time_log.json.
func LogPath(root, dir string) string {
	return filepath.Join(root, dir, LogFileName)
}

// Path returns the log file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the log. A missing file yields an empty document.
func (s *Store) Load() (model.LogDocument, error) {
	doc, _, err := s.LoadOrdered()
	return doc, err
}

// LoadOrdered is Load that also reports the key order of the file.
func (s *Store) LoadOrdered() (model.LogDocument, model.KeyOrder, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return model.LogDocument{}, model.KeyOrder{}, nil
	}
	if err != nil {
		return nil, model.KeyOrder{}, fmt.Errorf("storage error reading %s: %w", s.path, err)
	}
	return DecodeOrdered(data)
}

// Decode parses a serialised log document. Empty input is an empty document.
func Decode(data []byte) (model.LogDocument, error) {
	var doc model.LogDocument
	if len(bytes.TrimSpace(data)) == 0 {
		return model.LogDocument{}, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}
	if doc == nil {
		// A literal "null" document.
		doc = model.LogDocument{}
	}
	return doc, nil
}

// DecodeOrdered is Decode that also records the order of project and file
// keys in data. Should the key scan fail the order is empty and keys sort.
func DecodeOrdered(data []byte) (model.LogDocument, model.KeyOrder, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, model.KeyOrder{}, err
	}
	order, err := scanKeyOrder(data)
	if err != nil {
		return doc, model.KeyOrder{}, nil
	}
	return doc, order, nil
}

// scanKeyOrder walks the token stream and notes every key at the project and
// file levels.
func scanKeyOrder(data []byte) (model.KeyOrder, error) {
	type frame struct{ object, wantKey bool }
	var (
		order   model.KeyOrder
		stack   []frame
		project string
	)
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].wantKey = true
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return order, nil
		}
		if err != nil {
			return model.KeyOrder{}, err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				stack = append(stack, frame{object: d == '{', wantKey: d == '{'})
			case '}', ']':
				if len(stack) == 0 {
					return model.KeyOrder{}, fmt.Errorf("unbalanced %q", d)
				}
				stack = stack[:len(stack)-1]
				valueDone()
			}
			continue
		}
		if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
			key, ok := tok.(string)
			if !ok {
				return model.KeyOrder{}, fmt.Errorf("object key %v is not a string", tok)
			}
			switch n {
			case 1:
				project = key
				order.Add(project, "")
			case 2:
				order.Add(project, key)
			}
			stack[n-1].wantKey = false
			continue
		}
		valueDone()
	}
}

// wireEntry fixes the on-disk form of an entry. Dates are UTC with
// millisecond precision, e.g. 2024-01-01T09:30:00.000Z.
type wireEntry struct {
	Date      string     `json:"date"`
	User      model.User `json:"user"`
	TimeSpent int64      `json:"timeSpent"`
}

const wireDate = "2006-01-02T15:04:05.000Z"

// EncodeOrdered serialises doc as the store writes it: two-space indentation,
// keys in order.
func EncodeOrdered(doc model.LogDocument, order model.KeyOrder) ([]byte, error) {
	if len(doc) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	projects := order.Projects(doc)
	for i, project := range projects {
		if err := writeKey(&buf, "  ", project); err != nil {
			return nil, err
		}
		files := order.Files(doc, project)
		if len(files) == 0 {
			buf.WriteString("{}")
		} else {
			buf.WriteString("{\n")
			for j, file := range files {
				if err := writeKey(&buf, "    ", file); err != nil {
					return nil, err
				}
				if err := writeEntries(&buf, doc[project][file]); err != nil {
					return nil, err
				}
				if j < len(files)-1 {
					buf.WriteByte(',')
				}
				buf.WriteByte('\n')
			}
			buf.WriteString("  }")
		}
		if i < len(projects)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, indent, key string) error {
	k, err := json.MarshalWithOption(key, json.DisableHTMLEscape())
	if err != nil {
		return fmt.Errorf("storage error marshalling key %q: %w", key, err)
	}
	buf.WriteString(indent)
	buf.Write(k)
	buf.WriteString(": ")
	return nil
}

func writeEntries(buf *bytes.Buffer, entries []model.TimeEntry) error {
	wire := make([]wireEntry, len(entries))
	for i, e := range entries {
		wire[i] = wireEntry{Date: e.Date.UTC().Format(wireDate), User: e.User, TimeSpent: e.TimeSpent}
	}
	data, err := json.MarshalIndentWithOption(wire, "    ", "  ", json.DisableHTMLEscape())
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	buf.Write(data)
	return nil
}

// Append returns a copy of doc with entry appended under (project, file).
// doc itself is not modified; the caller persists the result.
func Append(doc model.LogDocument, project, file string, entry model.TimeEntry) model.LogDocument {
	if project == "" {
		project = model.UngroupedProject
	}
	out := doc.Clone()
	files, ok := out[project]
	if !ok {
		files = map[string][]model.TimeEntry{}
		out[project] = files
	}
	files[file] = append(files[file], entry)
	return out
}

// persist writes doc over the log, creating the directory when needed. The
// document goes to a temp file first and is renamed into place, so readers see
// either the old or the new log.
func (s *Store) persist(doc model.LogDocument, order model.KeyOrder) error {
	started := time.Now()
	defer func() { s.metrics.ObservePersistDuration(time.Since(started)) }()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := EncodeOrdered(doc, order)
	if err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Record appends one entry to the persisted log and writes it back before
// returning.
func (s *Store) Record(project, file string, entry model.TimeEntry) error {
	doc, order, err := s.LoadOrdered()
	if err != nil {
		return err
	}
	if project == "" {
		project = model.UngroupedProject
	}
	order.Add(project, file)
	if err := s.persist(Append(doc, project, file, entry), order); err != nil {
		return err
	}
	s.metrics.ObserveEntry(project, entry.TimeSpent)
	s.logger.Debugf(logger.TypeStore, "recorded %ds on %s/%s for %s", entry.TimeSpent, project, file, entry.User.Key())
	return nil
}

// ReadRaw returns the log bytes as stored.
func (s *Store) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoLog, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", s.path, err)
	}
	return data, nil
}
