package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Tiliavir/file-time-tracker/internal/model"
	"github.com/Tiliavir/file-time-tracker/internal/storage"
)

// Format selects the shape of an export.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatArchive Format = "json.zst"
)

// Header is the first row of every tabular export.
var Header = []string{"Project", "File", "Date", "User", "Email", "TimeSpent"}

// ParseFormat accepts json, csv and json.zst (alias zst).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "json.zst", "zst":
		return FormatArchive, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or json.zst)", s)
}

// FormatForPath guesses the format from a destination file name.
func FormatForPath(dest string) Format {
	lower := strings.ToLower(dest)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		return FormatArchive
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	}
	return FormatJSON
}

// Raw serialises doc unchanged, in the same form the log is persisted.
func Raw(doc model.LogDocument, keys model.KeyOrder) ([]byte, error) {
	return storage.EncodeOrdered(doc, keys)
}

// Tabular flattens doc to one row per entry in project, file, entry order,
// after the fixed header row. Projects and files come in keys order; keys
// it does not know sort after the rest.
func Tabular(doc model.LogDocument, keys model.KeyOrder) [][]string {
	rows := [][]string{append([]string(nil), Header...)}
	for _, project := range keys.Projects(doc) {
		for _, file := range keys.Files(doc, project) {
			for _, e := range doc[project][file] {
				rows = append(rows, []string{
					project,
					file,
					e.Date.UTC().Format(time.RFC3339Nano),
					e.User.Name,
					e.User.Email,
					strconv.FormatInt(e.TimeSpent, 10),
				})
			}
		}
	}
	return rows
}

// WriteCSV writes Tabular(doc, keys) as CSV.
func WriteCSV(w io.Writer, doc model.LogDocument, keys model.KeyOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Tabular(doc, keys)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteArchive writes the raw log bytes zstd-compressed.
func WriteArchive(w io.Writer, raw []byte) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("compressing log: %w", err)
	}
	return enc.Close()
}

// ReadArchive decompresses an archive written by WriteArchive.
func ReadArchive(r io.Reader) ([]byte, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing archive: %w", err)
	}
	return data, nil
}

// packArchive compresses raw and checks that the result decompresses back to
// raw before anything is written.
func packArchive(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, raw); err != nil {
		return nil, err
	}
	back, err := ReadArchive(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(back, raw) {
		return nil, fmt.Errorf("archive does not decompress to the log (%d of %d bytes)", len(back), len(raw))
	}
	return buf.Bytes(), nil
}

// WriteFile writes dest through a temp file in the same directory. On any
// failure the temp file is removed and dest is left as it was.
func WriteFile(dest string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("export target %s not writable: %w", dest, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing export: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing export: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting export permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("moving export into place: %w", err)
	}
	return nil
}

// ToFile exports the persisted log to dest. A missing log fails with
// storage.ErrNoLog and an unreadable one with storage.ErrCorruptLog, both
// before dest is touched. Archives hold the log bytes as stored.
func ToFile(store *storage.Store, dest string, format Format) error {
	raw, err := store.ReadRaw()
	if err != nil {
		return err
	}
	if format == FormatArchive {
		packed, err := packArchive(raw)
		if err != nil {
			return err
		}
		return WriteFile(dest, func(w io.Writer) error {
			_, err := w.Write(packed)
			return err
		})
	}

	doc, keys, err := storage.DecodeOrdered(raw)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		data, err := Raw(doc, keys)
		if err != nil {
			return err
		}
		return WriteFile(dest, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
	case FormatCSV:
		return WriteFile(dest, func(w io.Writer) error {
			return WriteCSV(w, doc, keys)
		})
	}
	return fmt.Errorf("unknown export format %q", format)
}
