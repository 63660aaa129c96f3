package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/loaneda/internal/loader"
	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/KaramelBytes/loaneda/internal/utils"
	"github.com/spf13/cobra"
)

var (
	pbOutDir     string
	pbSampleRows int
	pbQuiet      bool
)

var profileBatchCmd = &cobra.Command{
	Use:   "profile-batch <files...>",
	Short: "Profile several CSV/TSV/XLSX files, one markdown summary each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandArgs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if pbOutDir == "" {
			pbOutDir = "summaries"
		}
		if err := utils.EnsureDir(pbOutDir); err != nil {
			return err
		}
		opt := profile.DefaultOptions()
		if pbSampleRows > 0 {
			opt.SampleRows = pbSampleRows
		}
		c := settings()
		loadOpts := loader.Options{IndexColumn: c.IndexColumn}

		w := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !pbQuiet {
				fmt.Fprintf(w, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loader.LoadFile(path, loadOpts)
			if err != nil {
				return err
			}
			md := profile.Analyze(path, t, opt).Markdown()

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outFile := filepath.Join(pbOutDir, base+".summary.md")
			if _, statErr := os.Stat(outFile); statErr == nil {
				for idx := 2; ; idx++ {
					cand := filepath.Join(pbOutDir, fmt.Sprintf("%s__%d.summary.md", base, idx))
					if _, err := os.Stat(cand); os.IsNotExist(err) {
						if !pbQuiet {
							warn(w, "Detected existing summary, writing to %s to avoid overwrite.", filepath.Base(cand))
						}
						outFile = cand
						break
					}
				}
			}
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !pbQuiet {
				success(w, "Wrote %s", outFile)
			}
		}
		return nil
	},
}

// expandArgs resolves glob patterns, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandArgs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(profileBatchCmd)
	profileBatchCmd.Flags().StringVar(&pbOutDir, "out-dir", "summaries", "directory for the summaries")
	profileBatchCmd.Flags().IntVar(&pbSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress and non-essential output")
}
