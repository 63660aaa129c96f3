package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/loader"
	"github.com/spf13/cobra"
)

// sourceFlags are shared by every command that reads a table.
type sourceFlags struct {
	delimiter  string
	sheet      string
	indexCol   bool
	parseDates []string
	types      []string
	maxRows    int

	// database source, used when no file is given
	query       string
	driver      string
	dsn         string
	credentials string
}

func (s *sourceFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	f.StringVar(&s.sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	f.BoolVar(&s.indexCol, "index-col", false, "treat the first column as the row index")
	f.StringSliceVar(&s.parseDates, "parse-dates", nil, "columns to parse as datetimes (mixed formats)")
	f.StringSliceVar(&s.types, "type", nil, "force a column kind: col=int|float|text|category|datetime (repeatable)")
	f.IntVar(&s.maxRows, "max-rows", 0, "maximum rows to keep (0 = unlimited)")
	f.StringVar(&s.query, "query", "", "SQL to run instead of reading a file")
	f.StringVar(&s.driver, "driver", "", "database driver: postgres | sqlite (default from config)")
	f.StringVar(&s.dsn, "dsn", "", "database connection string (overrides credentials)")
	f.StringVar(&s.credentials, "credentials", "", "credentials YAML (default from config)")
}

func (s *sourceFlags) options(c *cfgpkg.Global) (loader.Options, error) {
	opts := loader.Options{
		Sheet:       s.sheet,
		IndexColumn: s.indexCol || c.IndexColumn,
		ParseDates:  s.parseDates,
		MaxRows:     s.maxRows,
	}
	delim := s.delimiter
	if delim == "" {
		delim = c.Delimiter
	}
	if delim != "" {
		r, err := parseDelimiter(delim)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = r
	}
	if len(s.types) > 0 {
		opts.Types = map[string]frame.Kind{}
		for _, pair := range s.types {
			col, kind, err := splitPair(pair)
			if err != nil {
				return opts, err
			}
			k, err := frame.ParseKind(kind)
			if err != nil {
				return opts, fmt.Errorf("--type %s: %w", pair, err)
			}
			opts.Types[col] = k
		}
	}
	return opts, nil
}

// load reads the table from args[0], or from the database when no file
// argument is given.
func (s *sourceFlags) load(ctx context.Context, args []string) (*frame.Table, error) {
	c := settings()
	opts, err := s.options(c)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		return loader.LoadFile(args[0], opts)
	}
	q := loader.Query{
		Driver:  s.driver,
		DSN:     s.dsn,
		SSLMode: c.SSLMode,
		SQL:     s.query,
		Options: opts,
	}
	if q.Driver == "" {
		q.Driver = c.Driver
	}
	if q.SQL == "" && c.Table != "" {
		q.SQL = "SELECT * FROM " + c.Table
	}
	if q.DSN == "" {
		path := s.credentials
		if path == "" {
			path = c.CredentialsFile
		}
		creds, err := cfgpkg.LoadCredentials(path)
		if err != nil {
			return nil, fmt.Errorf("no input file and %w", err)
		}
		q.Credentials = creds
	}
	if c.QueryTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.QueryTimeoutSec)*time.Second)
		defer cancel()
	}
	return loader.LoadQuery(ctx, q)
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case ",", ";", "|":
		return rune(s[0]), nil
	case "\t", "tab", `\t`:
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | '|' | 'tab')", s)
}

func splitPair(pair string) (string, string, error) {
	k, v, ok := strings.Cut(pair, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected column=value, got %q", pair)
	}
	return k, strings.TrimSpace(v), nil
}

// fillValues turns col=value pairs into FillNull literals, reading numbers
// for numeric columns and strings for everything else.
func fillValues(t *frame.Table, pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		col, raw, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		c, err := t.Column(col)
		if err != nil {
			return nil, fmt.Errorf("--fill %s: %w", pair, err)
		}
		if c.Kind().IsNumeric() {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("--fill %s: %q is not a number", pair, raw)
			}
			out[col] = f
			continue
		}
		out[col] = raw
	}
	return out, nil
}

// saveTable writes t when path is set and reports it.
func saveTable(cmd *cobra.Command, t *frame.Table, path string) error {
	if path == "" {
		return nil
	}
	c := settings()
	opts := loader.SaveOptions{Index: c.IndexColumn}
	if c.Delimiter != "" && !strings.HasSuffix(strings.ToLower(path), ".tsv") {
		if r, err := parseDelimiter(c.Delimiter); err == nil {
			opts.Delimiter = r
		}
	}
	if err := loader.Save(t, path, opts); err != nil {
		return err
	}
	rows, cols := t.Shape()
	success(cmd.OutOrStdout(), "Wrote %d rows x %d columns to %s", rows, cols, path)
	return nil
}
