package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/discussion-grader/internal/service"
)

var (
	reportMinScoreFlag float64
	reportMaxScoreFlag float64
	reportExportFlag   string
)

var reportCmd = &cobra.Command{
	Use:   "report <discussion-id>",
	Short: "Summarize the graded submissions of a discussion",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submission counts and average scores across all discussions",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

func init() {
	reportCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text, json, or csv")
	reportCmd.Flags().Float64Var(&reportMinScoreFlag, "min-score", 0, "only include submissions scoring at least this")
	reportCmd.Flags().Float64Var(&reportMaxScoreFlag, "max-score", 0, "only include submissions scoring at most this")
	reportCmd.Flags().StringVar(&reportExportFlag, "export", "", "write the report to a file instead of stdout")

	reportListCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")

	reportCmd.AddCommand(reportListCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var filter service.ReportFilter
	if cmd.Flags().Changed("min-score") {
		filter.MinScore = &reportMinScoreFlag
	}
	if cmd.Flags().Changed("max-score") {
		filter.MaxScore = &reportMaxScoreFlag
	}

	report, err := a.reportService().DiscussionReport(id, filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch outputFormatFlag {
	case "json":
		if err := printJSON(&buf, report); err != nil {
			return err
		}
	case "csv":
		if err := printReportCSV(&buf, report); err != nil {
			return err
		}
	default:
		printReport(&buf, report)
	}
	return writeReport(&buf)
}

func runReportList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	summaries, err := a.reportService().ListSummaries()
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		return printJSON(os.Stdout, summaries)
	}
	printSummaryTable(os.Stdout, summaries)
	return nil
}

// writeReport sends the rendered report to --export when set, stdout
// otherwise.
func writeReport(buf *bytes.Buffer) error {
	if reportExportFlag == "" {
		_, err := io.Copy(os.Stdout, buf)
		return err
	}
	if err := os.WriteFile(reportExportFlag, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	fmt.Printf("Report written to %s\n", reportExportFlag)
	return nil
}
