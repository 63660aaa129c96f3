package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

// IndexHeader names the label column written when SaveOptions.Index is set.
const IndexHeader = "index"

// SaveOptions controls snapshot output.
type SaveOptions struct {
	// Index writes the row labels as the first column.
	Index bool
	// Delimiter defaults to ',' (tab for .tsv). Ignored for workbooks.
	Delimiter rune
}

// Save writes t to path, replacing any existing file. The format follows
// the extension: .xlsx writes a workbook, anything else delimited text.
func Save(t *frame.Table, path string, opts SaveOptions) error {
	header, records := tableRecords(t, opts.Index)
	var err error
	if hasExt(path, ".xlsx", ".xlsm") {
		err = writeXLSX(path, header, records)
	} else {
		err = writeDelimited(path, header, records, opts)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	slog.Debug("table saved", "path", path, "rows", len(records))
	return nil
}

func tableRecords(t *frame.Table, index bool) ([]string, [][]string) {
	cols := t.Columns()
	header := make([]string, 0, len(cols)+1)
	if index {
		header = append(header, IndexHeader)
	}
	header = append(header, t.Names()...)

	labels := t.Index()
	records := make([][]string, t.NumRows())
	for r := range records {
		rec := make([]string, 0, len(header))
		if index {
			rec = append(rec, strconv.Itoa(labels[r]))
		}
		for _, c := range cols {
			rec = append(rec, c.Record(r))
		}
		records[r] = rec
	}
	return header, records
}

func writeDelimited(path string, header []string, records [][]string, opts SaveOptions) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = opts.Delimiter
	if w.Comma == 0 {
		w.Comma = defaultDelimiter(path)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
