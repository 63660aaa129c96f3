package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// Options controls Analyze.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// TopValues limits the category counts listed per text column.
	TopValues int
	// MaxPairs limits the correlation pairs listed, strongest first.
	MaxPairs int
}

// DefaultOptions returns reasonable defaults for a table report.
func DefaultOptions() Options {
	return Options{SampleRows: 5, Correlations: true, TopValues: 8, MaxPairs: 10}
}

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Corr     *CorrMatrix

	maxPairs int
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name       string
	Kind       frame.Kind
	NonNull    int
	Missing    int
	MissingPct float64
	Unique     int
	// Numeric stats
	Stats Description
	Skew  float64
	// Values outside the 1.5*IQR fence
	OutliersLow  int
	OutliersHigh int
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Analyze profiles t under the given name.
func Analyze(name string, t *frame.Table, opt Options) *Report {
	rep := &Report{Name: name, Rows: t.NumRows(), maxPairs: opt.MaxPairs}
	for _, c := range t.Columns() {
		missing := c.NullCount()
		s := ColumnSummary{
			Name:       c.Name(),
			Kind:       c.Kind(),
			NonNull:    c.Len() - missing,
			Missing:    missing,
			MissingPct: percent(missing, t.NumRows()),
		}
		uniq, _ := Unique(t, c.Name())
		s.Unique = len(uniq)
		if missing > 0 {
			s.Unique--
		}
		switch {
		case c.Kind().IsNumeric():
			vals := c.Valid()
			s.Stats = describe(c.Name(), vals)
			s.Skew = SkewOf(vals)
			if len(vals) > 0 {
				lo, hi := Fence(vals)
				for _, v := range vals {
					if v < lo {
						s.OutliersLow++
					} else if v > hi {
						s.OutliersHigh++
					}
				}
			}
			if math.Abs(s.Skew) > 1 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s is highly skewed (%.2f)", c.Name(), s.Skew))
			}
		case c.Kind().IsCategorical():
			s.TopValues = topValues(c, opt.TopValues)
		}
		if s.NonNull == 0 && c.Len() > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has no values", c.Name()))
		}
		rep.Cols = append(rep.Cols, s)
	}

	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	head := t.Head(sampleRows)
	for r := 0; r < head.NumRows(); r++ {
		row := make([]string, 0, head.NumCols())
		for _, c := range head.Columns() {
			row = append(row, c.Record(r))
		}
		rep.Samples = append(rep.Samples, row)
	}

	if opt.Correlations && len(t.NumericNames()) >= 2 {
		rep.Corr = Correlation(t)
	}
	return rep
}

// ValueCounts counts the non-null values of column, most frequent first.
// limit <= 0 keeps every value.
func ValueCounts(t *frame.Table, column string, limit int) ([]CategoryCount, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = c.Len()
	}
	return topValues(c, limit), nil
}

func topValues(c *frame.Column, limit int) []CategoryCount {
	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			counts[c.Record(i)]++
		}
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if limit <= 0 {
		limit = 8
	}
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// TopPairs lists off-diagonal pairs ordered by |r|, skipping NaN.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai := math.Abs(pairs[i].R)
		aj := math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.2f%%)", safeName(c.Name), c.Kind, c.NonNull, c.MissingPct))
		switch {
		case c.Kind.IsNumeric() && c.Stats.Count > 0:
			st := c.Stats
			b.WriteString(fmt.Sprintf(": min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g, mean %.4g, std %.4g",
				st.Min, st.Q1, st.Median, st.Q3, st.Max, st.Mean, st.Std))
			if !math.IsNaN(c.Skew) {
				b.WriteString(fmt.Sprintf("; skew %.3f", c.Skew))
			}
			if n := c.OutliersLow + c.OutliersHigh; n > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d outside 1.5*IQR (%d low, %d high)", n, c.OutliersLow, c.OutliersHigh))
			}
		case c.Kind.IsCategorical() && len(c.TopValues) > 0:
			b.WriteString(": top ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		limit := r.maxPairs
		if limit <= 0 {
			limit = 10
		}
		pairs := r.Corr.TopPairs(limit)
		if len(pairs) > 0 {
			b.WriteString("\n[CORRELATIONS]\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
			}
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n")
		b.WriteString("| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
