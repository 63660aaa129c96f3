package frame

import (
	"fmt"
	"strings"
)

// Kind is the declared element kind of a column.
type Kind int

const (
	Int Kind = iota + 1
	Float
	Text
	Category
	Time
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	case Category:
		return "category"
	case Time:
		return "datetime"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this kind are held as numbers.
func (k Kind) IsNumeric() bool { return k == Int || k == Float }

// IsCategorical reports whether values of this kind are strings.
func (k Kind) IsCategorical() bool { return k == Text || k == Category }

// ParseKind accepts the short names above plus the dtype spellings used by
// pandas-style notebooks (int64, float64, object, datetime64[ns], ...).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "int64", "int32", "integer":
		return Int, nil
	case "float", "float64", "float32", "double", "numeric":
		return Float, nil
	case "text", "str", "string", "object":
		return Text, nil
	case "category", "categorical":
		return Category, nil
	case "datetime", "datetime64", "datetime64[ns]", "timestamp", "time", "date":
		return Time, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}
