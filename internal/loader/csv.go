package loader

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

type csvSource struct{}

func (csvSource) CanLoad(path string) bool {
	return hasExt(path, ".csv", ".tsv", ".txt")
}

// Load reads the raw records and hands them to gota for type detection.
// Reading the records first lets a header-only file load as an empty table.
func (csvSource) Load(path string, opts Options) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opts.Delimiter == 0 {
		opts.Delimiter = defaultDelimiter(path)
	}
	r := csv.NewReader(f)
	r.Comma = opts.Delimiter
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records, opts)
}

func defaultDelimiter(path string) rune {
	if hasExt(path, ".tsv") {
		return '\t'
	}
	return ','
}
