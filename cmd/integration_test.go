package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loanPaymentsCSV = `id,loan_amount,int_rate,total_payment,term,grade,issue_date,last_payment_date
1,1000,7.5,0,36 months,A,Jan-2021,2022-03-01
2,1500,8.1,100.5,60 months,B,Feb-2021,2022-04-01
3,2000,,250.25,36 months,,Mar-2021,2022-05-01
4,2500,9.9,310.75,36 months,A,Apr-2021,2022-06-01
5,3000,10.2,400.5,60 months,C,May-2021,2022-07-01
6,3500,11.3,520.5,36 months,B,Jun-2021,2022-08-01
7,4000,12.7,610.25,36 months,A,Jul-2021,2022-09-01
8,5000,13.1,720.5,60 months,B,Aug-2021,2022-10-01
9,8000,14.9,880.75,36 months,A,Sep-2021,2022-11-01
10,35000,20.5,990.5,36 months,C,Oct-2021,2022-12-01
`

// resetFlags restores every flag to its default so invocations don't leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(interface{ Replace([]string) error }); ok {
			def := strings.Trim(f.DefValue, "[]")
			var vals []string
			if def != "" {
				vals = strings.Split(def, ",")
			}
			_ = sv.Replace(vals)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	require.NoError(t, err, "command %v failed:\n%s", args, out)
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, "work")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	csv := filepath.Join(dir, "loan_payments.csv")
	require.NoError(t, os.WriteFile(csv, []byte(loanPaymentsCSV), 0o644))
	return dir, csv
}

func TestCLI_LoadProfileCoerce(t *testing.T) {
	dir, csv := setupWorkspace(t)

	xlsx := filepath.Join(dir, "snapshot.xlsx")
	out := runCLI(t, "load", csv, "--parse-dates", "issue_date", "-o", xlsx)
	assert.Contains(t, out, "10 rows x 8 columns")
	assert.Contains(t, out, "issue_date: datetime")
	assert.FileExists(t, xlsx)

	out = runCLI(t, "profile", xlsx, "--section", "shape,missing,skew")
	assert.Contains(t, out, "[SHAPE]\n10 rows x 8 columns")
	assert.Contains(t, out, "- int_rate: 1 (10.00%)")
	assert.Contains(t, out, "[SKEW]")

	out = runCLI(t, "profile", csv, "--unique", "grade")
	assert.Contains(t, out, "- <missing>")

	report := filepath.Join(dir, "report.md")
	runCLI(t, "profile", csv, "-o", report)
	body, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(body), "[DATASET SUMMARY]")

	coerced := filepath.Join(dir, "coerced.csv")
	out = runCLI(t, "coerce", csv, "--set", "term=category", "--set", "id=float64", "--datetime", "last_payment_date=2006-01-02", "-o", coerced)
	assert.Contains(t, out, "term -> category")
	assert.Contains(t, out, "last_payment_date -> datetime")
	assert.FileExists(t, coerced)

	_, err = execCmd("coerce", csv, "--set", "grade=int")
	assert.Error(t, err)
}

func TestCLI_TransformAndPlot(t *testing.T) {
	dir, csv := setupWorkspace(t)

	cleaned := filepath.Join(dir, "clean.csv")
	out := runCLI(t, "transform", csv, "--drop", "id", "--fill", "grade=unknown,int_rate=0.5",
		"--op", "boxcox,outliers", "-o", cleaned)
	assert.Contains(t, out, "dropped total_payment")
	assert.Contains(t, out, "loan_amount lambda=")
	assert.Contains(t, out, "outliers: 10 ->")
	assert.FileExists(t, cleaned)

	_, err := execCmd("transform", csv, "--op", "sqrt")
	assert.Error(t, err)
	_, err = execCmd("transform", csv, "--op", "log", "--columns", "grade")
	assert.Error(t, err)

	plots := filepath.Join(dir, "plots")
	out = runCLI(t, "plot", csv, "--kind", "hist,bar,pie", "--columns", "loan_amount", "--category", "grade", "--dir", plots)
	for _, name := range []string{"hist_loan_amount.png", "grade.png", "pie_grade.png"} {
		assert.FileExists(t, filepath.Join(plots, name))
		assert.Contains(t, out, name)
	}
	_, err = execCmd("plot", csv, "--kind", "pie", "--dir", plots)
	assert.Error(t, err)
}

func TestCLI_InitRun(t *testing.T) {
	dir, _ := setupWorkspace(t)

	runCLI(t, "init", "loans", "--dir", dir)
	assert.FileExists(t, filepath.Join(dir, "loaneda.yaml"))
	_, err := execCmd("init", "--dir", dir)
	assert.Error(t, err)

	out := runCLI(t, "run", dir)
	assert.Contains(t, out, "loans (run ")
	assert.Contains(t, out, "dropped total_payment")
	assert.FileExists(t, filepath.Join(dir, "loan_payments_clean.csv"))
	assert.FileExists(t, filepath.Join(dir, "report.md"))
	assert.FileExists(t, filepath.Join(dir, "plots", "missing_values.png"))
	assert.FileExists(t, filepath.Join(dir, "plots", "box.png"))

	out = runCLI(t, "run", filepath.Join(dir, "loaneda.yaml"), "--json")
	var summary runSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "loans", summary.Plan)
	assert.Equal(t, 10, summary.RowsBefore)
	assert.Equal(t, []string{"total_payment"}, summary.Dropped)
	assert.Contains(t, summary.Lambdas, "loan_amount")
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setupWorkspace(t)

	runCLI(t, "config", "set", "hist_bins", "12")
	runCLI(t, "config", "set", "boxcox_rule", "mod10")
	out := runCLI(t, "config", "show")
	assert.Contains(t, out, "hist_bins: 12")
	assert.Contains(t, out, "boxcox_rule: multiple-of-ten")

	_, err := execCmd("config", "set", "plot_format", "bmp")
	assert.Error(t, err)
	_, err = execCmd("config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestCLI_ProfileBatch(t *testing.T) {
	dir, csv := setupWorkspace(t)
	d2 := filepath.Join(dir, "d2")
	require.NoError(t, os.MkdirAll(d2, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d2, "loan_payments.csv"), []byte(loanPaymentsCSV), 0o644))

	outDir := filepath.Join(dir, "summaries")
	runCLI(t, "profile-batch", csv, filepath.Join(dir, "d*", "*.csv"), "--out-dir", outDir)
	assert.FileExists(t, filepath.Join(outDir, "loan_payments.summary.md"))
	assert.FileExists(t, filepath.Join(outDir, "loan_payments__2.summary.md"))
}
