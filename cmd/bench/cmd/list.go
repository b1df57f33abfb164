package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

var listDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved benchmark results",
	Long: `List results files saved with "bench run -o" in a directory.

Examples:
  bench list --dir ./results`,
	RunE: listResults,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listDir, "dir", "./results", "directory to scan for saved results")
}

func listResults(_ *cobra.Command, _ []string) error {
	entries, err := os.ReadDir(listDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No results directory found at %s\n", listDir)
			return nil
		}
		return fmt.Errorf("failed to read results directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Println("No saved results found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, color.New(color.Bold).Sprint("FILE\tRUN ID\tREQUESTS\tSUCCESS RATE\tP95"))

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(listDir, name))
		if err != nil {
			continue
		}
		var m model.Metrics
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}

		successRate := "-"
		if m.TotalRequests > 0 {
			rate := float64(m.SuccessRequests) / float64(m.TotalRequests) * 100
			successRate = fmt.Sprintf("%.1f%%", rate)
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2fms\n",
			name, m.RunID, m.TotalRequests, successRate, m.P95LatencyMs)
	}

	return nil
}
