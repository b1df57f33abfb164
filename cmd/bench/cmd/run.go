package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/volcanion-labs/ssr-dispatcher/internal/benchclient"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

var (
	planFilePath string
	targetURL    string
	method       string
	users        int
	durationSec  int
	rampUpSec    int
	targetRPS    int
	ratePattern  string
	timeoutMs    int
	watch        bool
	outputFile   string
	noColor      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark",
	Long: `Run a benchmark against the render dispatcher, either from a plan
file or from flags.

Examples:
  # Run from a YAML plan file
  bench run -f plan.yaml

  # Run with flags directly
  bench run --target http://localhost:8080/ --users 20 --duration 30

  # Run and watch live progress
  bench run -f plan.yaml --watch

  # Run and save results to a file
  bench run -f plan.yaml -o results.json`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&planFilePath, "file", "f", "", "benchmark plan file (YAML or JSON)")
	runCmd.Flags().StringVar(&targetURL, "target", "", "target URL (alternative to --file)")
	runCmd.Flags().StringVar(&method, "method", "GET", "HTTP method")
	runCmd.Flags().IntVar(&users, "users", 10, "number of concurrent workers")
	runCmd.Flags().IntVar(&durationSec, "duration", 30, "run duration in seconds")
	runCmd.Flags().IntVar(&rampUpSec, "ramp-up", 0, "ramp-up period in seconds")
	runCmd.Flags().IntVar(&targetRPS, "rps", 0, "target requests per second (0 = unlimited)")
	runCmd.Flags().StringVar(&ratePattern, "pattern", "fixed", "rate pattern: fixed, step, spike, ramp")
	runCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 10000, "per-request timeout in milliseconds")
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "show live progress")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file for results (JSON)")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	if err := runCmd.MarkFlagFilename("file", "yaml", "yml", "json"); err != nil {
		panic(err)
	}
}

func runBenchmark(_ *cobra.Command, _ []string) error {
	if noColor {
		color.NoColor = true
	}

	plan, err := resolvePlan()
	if err != nil {
		return err
	}

	printInfo(fmt.Sprintf("Running benchmark against %s (%d users, %ds)...", plan.TargetURL, plan.Users, plan.DurationSec))

	opts := []benchclient.Option{}
	var bar *progressbar.ProgressBar
	if watch {
		bar = progressbar.NewOptions(plan.DurationSec,
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		opts = append(opts, benchclient.WithSampleFunc(func(m *model.Metrics) {
			_ = bar.Set64(m.TotalDurationMs / 1000)
			printLiveStats(m)
		}))
	}

	metrics, err := benchclient.Run(plan, opts...)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if watch {
		fmt.Println()
	}

	printTestSummary(metrics)

	if outputFile != "" {
		if err := saveResults(metrics, outputFile); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		printSuccess(fmt.Sprintf("Results saved to %s", outputFile))
	}

	return nil
}

func resolvePlan() (benchclient.Plan, error) {
	if planFilePath != "" && targetURL != "" {
		return benchclient.Plan{}, fmt.Errorf("cannot specify both --file and --target")
	}

	if planFilePath != "" {
		printInfo(fmt.Sprintf("Loading benchmark plan from %s...", planFilePath))
		pf, err := loadPlanFile(planFilePath)
		if err != nil {
			return benchclient.Plan{}, err
		}
		return pf.toPlan(), nil
	}

	if targetURL == "" {
		return benchclient.Plan{}, fmt.Errorf("either --file or --target must be specified")
	}

	return benchclient.Plan{
		TargetURL:   targetURL,
		Method:      method,
		Users:       users,
		DurationSec: durationSec,
		RampUpSec:   rampUpSec,
		RatePattern: benchclient.RatePattern(ratePattern),
		TargetRPS:   targetRPS,
		TimeoutMs:   timeoutMs,
	}, nil
}

func saveResults(metrics *model.Metrics, filename string) error {
	data, err := json.MarshalIndent(metrics.GetSnapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o600)
}

func printTestSummary(metrics *model.Metrics) {
	snap := metrics.GetSnapshot()

	fmt.Println()
	printHeader("Benchmark Results Summary")
	fmt.Println()

	successRate := 0.0
	if snap.TotalRequests > 0 {
		successRate = float64(snap.SuccessRequests) / float64(snap.TotalRequests) * 100
	}

	fmt.Printf("  Total Requests:    %s\n", color.CyanString("%d", snap.TotalRequests))
	fmt.Printf("  Successful:        %s (%s)\n",
		color.GreenString("%d", snap.SuccessRequests),
		color.GreenString("%.2f%%", successRate))
	fmt.Printf("  Failed:            %s\n", color.RedString("%d", snap.FailedRequests))
	fmt.Println()
	fmt.Printf("  Avg Response Time: %s\n", color.YellowString("%.2f ms", snap.AvgLatencyMs))
	fmt.Printf("  P50 Response Time: %s\n", color.YellowString("%.2f ms", snap.P50LatencyMs))
	fmt.Printf("  P95 Response Time: %s\n", color.YellowString("%.2f ms", snap.P95LatencyMs))
	fmt.Printf("  P99 Response Time: %s\n", color.YellowString("%.2f ms", snap.P99LatencyMs))
	fmt.Println()
	fmt.Printf("  Throughput:        %s\n", color.MagentaString("%.2f req/s", snap.RequestsPerSec))
	fmt.Println()

	if len(snap.Errors) > 0 && IsVerbose() {
		printHeader("Errors")
		for errMsg, count := range snap.Errors {
			fmt.Printf("  %s: %d\n", errMsg, count)
		}
		fmt.Println()
	}
}

func printLiveStats(m *model.Metrics) {
	snap := m.GetSnapshot()
	fmt.Printf("\r  Requests: %s | RPS: %s | Avg: %s\n",
		color.CyanString("%d", snap.TotalRequests),
		color.MagentaString("%.1f", snap.CurrentRPS),
		color.YellowString("%.1fms", snap.AvgLatencyMs))
}
