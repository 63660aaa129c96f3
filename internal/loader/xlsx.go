package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

type xlsxSource struct{}

func (xlsxSource) CanLoad(path string) bool {
	return hasExt(path, ".xlsx", ".xlsm")
}

// Load reads one sheet as text cells, using the first row as the header.
func (xlsxSource) Load(path string, opts Options) (*frame.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return frame.New()
	}
	// GetRows trims trailing empty cells; pad every row to the header width.
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, width)
		copy(rec, r)
		records = append(records, rec)
	}
	return fromRecords(records, opts)
}

// writeXLSX writes header and records into Sheet1 of a new workbook.
func writeXLSX(path string, header []string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for r, rec := range records {
		for c, v := range rec {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
