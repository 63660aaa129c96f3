package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/frame"
)

// DefaultTable is queried when Query.SQL is empty.
const DefaultTable = "loan_payments"

// Query describes a relational source.
type Query struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	// DSN overrides the connection string built from Credentials.
	DSN         string
	Credentials config.Credentials
	SSLMode     string
	// SQL defaults to SELECT * FROM loan_payments.
	SQL     string
	Options Options
}

func (q Query) driver() string {
	switch strings.ToLower(q.Driver) {
	case "", "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return q.Driver
	}
}

// dsn builds the connection string for the driver.
func (q Query) dsn() string {
	if q.DSN != "" {
		return q.DSN
	}
	c := q.Credentials
	if q.driver() == "sqlite" {
		return c.Database
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port != 0 {
		u.Host = c.Host + ":" + strconv.Itoa(c.Port)
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if q.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {q.SSLMode}}.Encode()
	}
	return u.String()
}

func (q Query) statement() string {
	if strings.TrimSpace(q.SQL) != "" {
		return q.SQL
	}
	return "SELECT * FROM " + DefaultTable
}

// LoadQuery runs the query and returns its result set as a table. Column
// kinds are inferred from the cell text the same way files are; timestamp
// cells become a Time column.
func LoadQuery(ctx context.Context, q Query) (*frame.Table, error) {
	db, err := sqlx.ConnectContext(ctx, q.driver(), q.dsn())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", q.driver(), err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, q.statement())
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	records := [][]string{header}
	timeCols := map[string]bool{}
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(records)-1, err)
		}
		rec := make([]string, len(cells))
		for i, v := range cells {
			if _, ok := v.(time.Time); ok {
				timeCols[header[i]] = true
			}
			rec[i] = cellText(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	opts := q.Options
	for _, name := range header {
		if timeCols[name] {
			opts.ParseDates = append(opts.ParseDates, name)
		}
	}
	t, err := fromRecords(records, opts)
	if err != nil {
		return nil, err
	}
	t, err = finish(t, opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("query loaded", "driver", q.driver(), "rows", t.NumRows(), "cols", t.NumCols())
	return t, nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return frame.FormatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// WriteTable replaces table name in the database with the contents of t.
func WriteTable(ctx context.Context, q Query, name string, t *frame.Table) error {
	db, err := sqlx.ConnectContext(ctx, q.driver(), q.dsn())
	if err != nil {
		return fmt.Errorf("connect %s: %w", q.driver(), err)
	}
	defer db.Close()

	cols := t.Columns()
	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = strconv.Quote(c.Name())
		defs[i] = quoted[i] + " " + sqlType(c.Kind())
	}
	table := strconv.Quote(name)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+table+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	insert := tx.Rebind("INSERT INTO " + table + " (" + strings.Join(quoted, ", ") + ") VALUES (" + ph + ")")
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for r := 0; r < t.NumRows(); r++ {
		args := make([]any, len(cols))
		for i, c := range cols {
			args[i] = c.Value(r)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", r, err)
		}
	}
	return tx.Commit()
}

func sqlType(k frame.Kind) string {
	switch k {
	case frame.Int:
		return "BIGINT"
	case frame.Float:
		return "DOUBLE PRECISION"
	case frame.Time:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
