// Package loader reads tables from delimited files, workbooks and SQL
// databases, and writes table snapshots back to disk.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// ErrUnsupported indicates a file format with no registered source.
var ErrUnsupported = errors.New("unsupported file format")

// Options controls how a file is read.
type Options struct {
	// Delimiter overrides the field separator; defaults to ',' (tab for .tsv).
	Delimiter rune
	// IndexColumn treats the first column as row labels written by Save.
	IndexColumn bool
	// ParseDates lists columns parsed with frame.SetDatetime in mixed mode.
	ParseDates []string
	// Types forces column kinds after loading.
	Types map[string]frame.Kind
	// Sheet selects a workbook sheet; the first sheet is used when empty.
	Sheet string
	// MaxRows keeps only the first rows when positive.
	MaxRows int
}

// Source reads one family of file formats into a table.
type Source interface {
	CanLoad(path string) bool
	Load(path string, opts Options) (*frame.Table, error)
}

var registry []Source

// Register adds a source to the registry. Later registrations do not shadow
// earlier ones for the same extension.
func Register(s Source) {
	registry = append(registry, s)
}

func init() {
	Register(csvSource{})
	Register(xlsxSource{})
}

// LoadFile picks a source by file extension, loads the file and applies the
// option post-processing (index column, dates, forced types, row limit).
func LoadFile(path string, opts Options) (*frame.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	for _, s := range registry {
		if !s.CanLoad(path) {
			continue
		}
		t, err := s.Load(path, opts)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
		t, err = finish(t, opts)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
		rows, cols := t.Shape()
		slog.Debug("table loaded", "path", path, "rows", rows, "cols", cols)
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func finish(t *frame.Table, opts Options) (*frame.Table, error) {
	var err error
	if opts.IndexColumn && t.NumCols() > 0 {
		if t, err = liftIndex(t); err != nil {
			return nil, err
		}
	}
	for _, name := range opts.ParseDates {
		if t, err = frame.SetDatetime(t, name, frame.PatternMixed); err != nil {
			return nil, err
		}
	}
	for name, kind := range opts.Types {
		if t, err = frame.SetType(t, name, kind); err != nil {
			return nil, err
		}
	}
	if opts.MaxRows > 0 {
		t = t.Head(opts.MaxRows)
	}
	return t, nil
}

// liftIndex moves the first column into the row labels.
func liftIndex(t *frame.Table) (*frame.Table, error) {
	first := t.Columns()[0]
	if !first.Kind().IsNumeric() || first.NullCount() > 0 {
		return nil, fmt.Errorf("index column %q must hold integers", first.Name())
	}
	labels := make([]int, first.Len())
	for i := range labels {
		labels[i] = int(first.Float(i))
	}
	return t.Drop(first.Name()).WithIndex(labels)
}
