package transform

import (
	"log/slog"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/profile"
)

// RemoveOutliers drops rows outside the 1.5*IQR fence, one column at a time
// in the given order (table order of the numeric columns when none are
// named). Each column's quartiles come from the rows that survived the
// previous columns, so the result depends on the order. Missing cells never
// fail a fence. Finally every row with a missing value is dropped and the
// rows are relabelled 0..n-1.
func RemoveOutliers(t *frame.Table, columns ...string) (*frame.Table, error) {
	cols, err := numericScope(t, columns)
	if err != nil {
		return nil, err
	}
	out := t
	for _, name := range names(cols) {
		c, err := out.Column(name)
		if err != nil {
			return nil, err
		}
		vals := c.Valid()
		if len(vals) == 0 {
			continue
		}
		lo, hi := profile.Fence(vals)
		keep := make([]bool, c.Len())
		removed := 0
		for i := range keep {
			v := c.Float(i)
			keep[i] = c.IsNull(i) || (v >= lo && v <= hi)
			if !keep[i] {
				removed++
			}
		}
		if removed == 0 {
			continue
		}
		if out, err = out.Filter(keep); err != nil {
			return nil, err
		}
		slog.Debug("outliers removed", "column", name, "lower", lo, "upper", hi, "rows", removed)
	}
	return out.DropNullRows().ResetIndex(), nil
}

func names(cols []*frame.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}
