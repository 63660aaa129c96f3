// Package pipeline runs a saved analysis plan: load a table, profile it,
// clean and transform it, profile it again, then write the cleaned table and
// its charts.
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/transform"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

// Step operations.
const (
	OpLog        = "log"
	OpBoxCox     = "boxcox"
	OpYeoJohnson = "yeojohnson"
	OpOutliers   = "outliers"
	OpDummies    = "dummies"
	OpDrop       = "drop"
)

// Plot kinds.
const (
	PlotMissing   = "missing"
	PlotBox       = "box"
	PlotScatter   = "scatter"
	PlotHistogram = "hist"
	PlotBar       = "bar"
	PlotPie       = "pie"
)

// Plan is a loaneda.yaml file.
type Plan struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Source      Source            `yaml:"source"`
	ParseDates  []string          `yaml:"parse_dates,omitempty"`
	Types       map[string]string `yaml:"types,omitempty"`
	Drop        []string          `yaml:"drop,omitempty"`
	FillNull    map[string]any    `yaml:"fill_null,omitempty"`
	Steps       []Step            `yaml:"steps,omitempty"`
	BoxCoxRule  string            `yaml:"boxcox_rule,omitempty"`
	Output      string            `yaml:"output,omitempty"`
	Report      string            `yaml:"report,omitempty"`
	Plots       Plots             `yaml:"plots,omitempty"`
	CreatedAt   time.Time         `yaml:"created_at"`
	UpdatedAt   time.Time         `yaml:"updated_at"`

	// on-disk location of the plan file
	path string
}

// Source names either a file or a database query.
type Source struct {
	Path        string `yaml:"path,omitempty"`
	Sheet       string `yaml:"sheet,omitempty"`
	Delimiter   string `yaml:"delimiter,omitempty"`
	IndexColumn bool   `yaml:"index_column,omitempty"`

	Query       string `yaml:"query,omitempty"`
	Driver      string `yaml:"driver,omitempty"`
	DSN         string `yaml:"dsn,omitempty"`
	Credentials string `yaml:"credentials,omitempty"`
	MaxRows     int    `yaml:"max_rows,omitempty"`
}

// IsQuery reports whether the table comes from a database.
func (s Source) IsQuery() bool { return s.Path == "" }

// Step is one transform applied in order.
type Step struct {
	Op      string   `yaml:"op"`
	Columns []string `yaml:"columns,omitempty"`
	// Bare names dummy columns by category alone.
	Bare bool `yaml:"bare,omitempty"`
}

// Plots selects the charts drawn from the cleaned table.
type Plots struct {
	Dir        string   `yaml:"dir,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	Kinds      []string `yaml:"kinds,omitempty"`
	Columns    []string `yaml:"columns,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Bins       int      `yaml:"bins,omitempty"`
}

// NewPlan returns the starter plan written by `loaneda init`.
func NewPlan(name, path string) *Plan {
	now := time.Now().UTC()
	return &Plan{
		Name:       name,
		Source:     Source{Path: "loan_payments.csv"},
		ParseDates: []string{"issue_date", "last_payment_date"},
		Types:      map[string]string{"term": "category", "grade": "category"},
		Steps: []Step{
			{Op: OpBoxCox},
			{Op: OpOutliers},
		},
		BoxCoxRule: transform.DropNonPositive.String(),
		Output:     "loan_payments_clean.csv",
		Report:     "report.md",
		Plots:      Plots{Dir: "plots", Kinds: []string{PlotMissing, PlotBox, PlotHistogram}},
		CreatedAt:  now,
		UpdatedAt:  now,
		path:       path,
	}
}

// LoadPlan reads a plan. start may be the plan file itself, or a directory
// searched upwards for loaneda.yaml; "" searches from the working directory.
func LoadPlan(start string) (*Plan, error) {
	path := start
	if !isPlanFile(start) {
		found, err := utils.FindPlanFile(start)
		if err != nil {
			return nil, err
		}
		path = found
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("plan not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	p.path = path
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &p, nil
}

func isPlanFile(path string) bool {
	if path == "" {
		return false
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Path returns the plan file location.
func (p *Plan) Path() string { return p.path }

// Dir is the directory relative paths in the plan resolve against.
func (p *Plan) Dir() string {
	if p.path == "" {
		return "."
	}
	return filepath.Dir(p.path)
}

// Resolve makes a plan-relative path usable from the working directory.
func (p *Plan) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir(), path)
}

// Save writes the plan with an atomic rename.
func (p *Plan) Save() error {
	if p.path == "" {
		return errors.New("plan path not set")
	}
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	return utils.SafeWriteFile(p.path, b)
}

// Validate checks everything that can be checked before loading data.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Source.Path == "" && p.Source.Query == "" && p.Source.Driver == "" {
		return errors.New("source needs a path or a query")
	}
	if p.Source.Path != "" && p.Source.Query != "" {
		return errors.New("source has both a path and a query")
	}
	if p.Source.Delimiter != "" && len([]rune(p.Source.Delimiter)) != 1 {
		return fmt.Errorf("delimiter %q must be one character", p.Source.Delimiter)
	}
	for col, kind := range p.Types {
		if _, err := frame.ParseKind(kind); err != nil {
			return fmt.Errorf("types.%s: %w", col, err)
		}
	}
	if _, err := transform.ParseDropRule(p.BoxCoxRule); err != nil {
		return err
	}
	for i, s := range p.Steps {
		switch s.Op {
		case OpLog, OpBoxCox, OpYeoJohnson, OpOutliers, OpDummies:
		case OpDrop:
			if len(s.Columns) == 0 {
				return fmt.Errorf("steps[%d]: drop needs columns", i)
			}
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, s.Op)
		}
	}
	for _, k := range p.Plots.Kinds {
		switch k {
		case PlotMissing, PlotBox, PlotScatter, PlotHistogram:
		case PlotBar, PlotPie:
			if len(p.Plots.Categories) == 0 {
				return fmt.Errorf("plots: %s needs categories", k)
			}
		default:
			return fmt.Errorf("plots: unknown kind %q", k)
		}
	}
	return nil
}

// kinds converts the Types section.
func (p *Plan) kinds() map[string]frame.Kind {
	if len(p.Types) == 0 {
		return nil
	}
	out := make(map[string]frame.Kind, len(p.Types))
	for col, name := range p.Types {
		k, _ := frame.ParseKind(name)
		out[col] = k
	}
	return out
}
