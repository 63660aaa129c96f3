package loader

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// nanValues are the cell spellings read as missing.
var nanValues = []string{"", "NA", "NaN", "nan", "<nil>", "null", "NULL"}

func loadOptions(opts Options) []dataframe.LoadOption {
	lo := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanValues),
	}
	// Text-forced columns are read as strings so leading zeros survive.
	forced := map[string]series.Type{}
	for name, kind := range opts.Types {
		if kind.IsCategorical() {
			forced[name] = series.String
		}
	}
	if len(forced) > 0 {
		lo = append(lo, dataframe.WithTypes(forced))
	}
	return lo
}

// fromRecords builds a table from a header row followed by data rows.
func fromRecords(records [][]string, opts Options) (*frame.Table, error) {
	if len(records) == 0 {
		return frame.New()
	}
	if len(records) == 1 {
		cols := make([]*frame.Column, len(records[0]))
		for i, name := range records[0] {
			cols[i] = frame.NewText(name, nil)
		}
		return frame.New(cols...)
	}
	df := dataframe.LoadRecords(records, loadOptions(opts)...)
	return fromDataFrame(df)
}

// fromDataFrame maps gota's inferred series types onto frame kinds. Int and
// Float series keep their kind; everything else becomes Text.
func fromDataFrame(df dataframe.DataFrame) (*frame.Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("read records: %w", df.Err)
	}
	names := df.Names()
	types := df.Types()
	cols := make([]*frame.Column, 0, len(names))
	for i, name := range names {
		s := df.Col(name)
		switch types[i] {
		case series.Int:
			c, err := frame.FromFloats(name, frame.Int, s.Float())
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		case series.Float:
			cols = append(cols, frame.NewFloat(name, s.Float()))
		default:
			recs := s.Records()
			nan := s.IsNaN()
			vals := make([]any, len(recs))
			for j, r := range recs {
				if nan[j] || r == "" {
					continue
				}
				vals[j] = r
			}
			c, err := frame.NewColumn(name, frame.Text, vals)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}
	return frame.New(cols...)
}
