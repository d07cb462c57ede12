// Package tabular persists a homogeneous record set as a CSV file made of one
// fixed header row followed by data rows.
//
// A Store never migrates: a file whose first row is not exactly the expected
// header is recreated holding only the header, and data rows whose width does
// not match the header are dropped on read. Every write replaces the whole file
// atomically, so callers read, modify and save the complete row set.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
	bom       = "\ufeff"
)

// Recorder receives data-quality events. *observability.Metrics implements it.
type Recorder interface {
	CorruptRowDropped(path string)
	SchemaRepaired(path string)
}

// Store is bound to a single file and header.
type Store struct {
	path     string
	header   []string
	logger   *zap.Logger
	recorder Recorder
}

// NewStore returns a Store for path. recorder may be nil.
func NewStore(path string, header []string, logger *zap.Logger, recorder Recorder) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	if len(header) == 0 {
		return nil, errors.New("store header is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:     path,
		header:   slices.Clone(header),
		logger:   logger.With(zap.String("file", path)),
		recorder: recorder,
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Header returns a copy of the expected header.
func (s *Store) Header() []string {
	return slices.Clone(s.header)
}

// Width is the number of fields every data row must carry.
func (s *Store) Width() int {
	return len(s.header)
}

// EnsureSchema creates the file holding only the header when it is missing, and
// replaces it with only the header when its first row is absent or differs from
// the expected header. Existing data rows are discarded by the repair. A file
// that already starts with the header is left untouched.
func (s *Store) EnsureSchema() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
			return fmt.Errorf("create dir for %s: %w", s.path, err)
		}
		s.logger.Info("creating store file")
		return s.Save(nil)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}

	r := newReader(f)
	first, readErr := r.Read()
	_ = f.Close()
	if readErr != nil && !errors.Is(readErr, io.EOF) && !isParseError(readErr) {
		return fmt.Errorf("read header of %s: %w", s.path, readErr)
	}
	// csv.Reader skips blank lines; the header must still be on line 1.
	if readErr == nil && onFirstLine(r) && headerMatches(first, s.header) {
		return nil
	}

	s.logger.Warn("store header missing or malformed; recreating file",
		zap.Strings("found", first),
		zap.Strings("expected", s.header))
	if s.recorder != nil {
		s.recorder.SchemaRepaired(s.path)
	}
	return s.Save(nil)
}

// Load returns the data rows that carry exactly Width fields, in file order.
// Other rows are logged and skipped. A missing file yields no rows.
func (s *Store) Load() ([][]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := newReader(f)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if !isParseError(err) {
			return nil, fmt.Errorf("read header of %s: %w", s.path, err)
		}
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !isParseError(err) {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		if err != nil || len(row) != len(s.header) {
			s.dropRow(line, row, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save replaces the file with the header followed by rows.
func (s *Store) Save(rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(s.header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(s.header) {
			return fmt.Errorf("row %d has %d fields, want %d", i+1, len(row), len(s.header))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	_, statErr := os.Stat(s.path)
	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode for new files.
	if errors.Is(statErr, os.ErrNotExist) {
		if err := os.Chmod(s.path, filePerms); err != nil {
			return fmt.Errorf("chmod %s: %w", s.path, err)
		}
	}
	return nil
}

func (s *Store) dropRow(line int, row []string, cause error) {
	fields := []zap.Field{
		zap.Int("line", line),
		zap.Int("width", len(row)),
		zap.Int("expected_width", len(s.header)),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	s.logger.Warn("dropping corrupt row", fields...)
	if s.recorder != nil {
		s.recorder.CorruptRowDropped(s.path)
	}
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func onFirstLine(r *csv.Reader) bool {
	line, _ := r.FieldPos(0)
	return line == 1
}

func isParseError(err error) bool {
	var parseErr *csv.ParseError
	return errors.As(err, &parseErr)
}

func headerMatches(found, expected []string) bool {
	if len(found) > 0 {
		found = slices.Clone(found)
		found[0] = strings.TrimPrefix(found[0], bom)
	}
	return slices.Equal(found, expected)
}
