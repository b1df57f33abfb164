package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

var (
	exportFormat string
	exportInput  string
)

var exportCmd = &cobra.Command{
	Use:   "export <results.json>",
	Short: "Export saved benchmark results",
	Long: `Export a results file saved by "bench run -o" in another format.

Examples:
  # Export as CSV
  bench export results.json --format csv -o results.csv

  # Export as an HTML report
  bench export results.json --format html -o report.html`,
	Args: cobra.ExactArgs(1),
	RunE: exportResults,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json, csv, html)")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (required)")
	if err := exportCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
}

func exportResults(_ *cobra.Command, args []string) error {
	exportInput = args[0]

	data, err := os.ReadFile(exportInput)
	if err != nil {
		return fmt.Errorf("failed to read results file: %w", err)
	}

	var metrics model.Metrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return fmt.Errorf("failed to parse results file: %w", err)
	}

	switch exportFormat {
	case "json":
		err = exportJSON(&metrics, outputFile)
	case "csv":
		err = exportCSV(&metrics, outputFile)
	case "html":
		err = exportHTML(&metrics, outputFile)
	default:
		return fmt.Errorf("unsupported format: %s (use json, csv, or html)", exportFormat)
	}

	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	printSuccess(fmt.Sprintf("Results exported to %s", outputFile))
	return nil
}

func exportJSON(metrics *model.Metrics, filename string) error {
	jsonData, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, jsonData, 0o600)
}

func exportCSV(metrics *model.Metrics, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}

	rows := [][]string{
		{"Run ID", metrics.RunID},
		{"Total Requests", fmt.Sprintf("%d", metrics.TotalRequests)},
		{"Success Requests", fmt.Sprintf("%d", metrics.SuccessRequests)},
		{"Failed Requests", fmt.Sprintf("%d", metrics.FailedRequests)},
		{"Avg Latency (ms)", fmt.Sprintf("%.2f", metrics.AvgLatencyMs)},
		{"Min Latency (ms)", fmt.Sprintf("%.2f", metrics.MinLatencyMs)},
		{"Max Latency (ms)", fmt.Sprintf("%.2f", metrics.MaxLatencyMs)},
		{"P50 Latency (ms)", fmt.Sprintf("%.2f", metrics.P50LatencyMs)},
		{"P95 Latency (ms)", fmt.Sprintf("%.2f", metrics.P95LatencyMs)},
		{"P99 Latency (ms)", fmt.Sprintf("%.2f", metrics.P99LatencyMs)},
		{"Requests Per Second", fmt.Sprintf("%.2f", metrics.RequestsPerSec)},
		{"Total Duration (ms)", fmt.Sprintf("%d", metrics.TotalDurationMs)},
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Benchmark Results - {{.RunID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            background: white;
            border-radius: 8px;
            padding: 30px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-bottom: 10px; }
        .metrics-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin: 30px 0;
        }
        .metric-card {
            background: #f9f9f9;
            padding: 20px;
            border-radius: 6px;
            border-left: 4px solid #4CAF50;
        }
        .metric-card.warning { border-left-color: #FF9800; }
        .metric-label { font-size: 14px; color: #666; margin-bottom: 5px; }
        .metric-value { font-size: 28px; font-weight: bold; color: #333; }
        table { width: 100%; border-collapse: collapse; margin-top: 30px; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background: #f5f5f5; font-weight: 600; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Benchmark Results</h1>
        <p>Run ID: {{.RunID}}</p>

        <div class="metrics-grid">
            <div class="metric-card">
                <div class="metric-label">Total Requests</div>
                <div class="metric-value">{{.TotalRequests}}</div>
            </div>
            <div class="metric-card">
                <div class="metric-label">Success Rate</div>
                <div class="metric-value">{{.SuccessRate}}%</div>
            </div>
            <div class="metric-card {{if gt .AvgLatencyMs 1000.0}}warning{{end}}">
                <div class="metric-label">Avg Response Time</div>
                <div class="metric-value">{{printf "%.2f" .AvgLatencyMs}} ms</div>
            </div>
            <div class="metric-card">
                <div class="metric-label">Throughput</div>
                <div class="metric-value">{{printf "%.2f" .RequestsPerSec}} req/s</div>
            </div>
        </div>

        <h2>Response Time Percentiles</h2>
        <table>
            <tr><th>Percentile</th><th>Response Time</th></tr>
            <tr><td>P50 (Median)</td><td>{{printf "%.2f" .P50LatencyMs}} ms</td></tr>
            <tr><td>P95</td><td>{{printf "%.2f" .P95LatencyMs}} ms</td></tr>
            <tr><td>P99</td><td>{{printf "%.2f" .P99LatencyMs}} ms</td></tr>
        </table>

        <p style="margin-top: 30px; color: #666; font-size: 14px;">
            Generated on {{.GeneratedAt}}
        </p>
    </div>
</body>
</html>`

type htmlReportData struct {
	RunID          string
	TotalRequests  int64
	SuccessRate    float64
	AvgLatencyMs   float64
	P50LatencyMs   float64
	P95LatencyMs   float64
	P99LatencyMs   float64
	RequestsPerSec float64
	GeneratedAt    string
}

func exportHTML(metrics *model.Metrics, filename string) error {
	successRate := 0.0
	if metrics.TotalRequests > 0 {
		successRate = float64(metrics.SuccessRequests) / float64(metrics.TotalRequests) * 100
	}

	data := htmlReportData{
		RunID:          metrics.RunID,
		TotalRequests:  metrics.TotalRequests,
		SuccessRate:    successRate,
		AvgLatencyMs:   metrics.AvgLatencyMs,
		P50LatencyMs:   metrics.P50LatencyMs,
		P95LatencyMs:   metrics.P95LatencyMs,
		P99LatencyMs:   metrics.P99LatencyMs,
		RequestsPerSec: metrics.RequestsPerSec,
		GeneratedAt:    time.Now().Format("2006-01-02 15:04:05"),
	}

	t, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return t.Execute(file, data)
}
