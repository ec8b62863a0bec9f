package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/noah-isme/discussion-grader/internal/service"
)

var (
	submissionClipboardFlag bool
	submissionCopyFlag      bool
	submissionSaveFlag      bool
	submissionStudentFlag   string
)

var submissionCmd = &cobra.Command{
	Use:     "submission",
	Aliases: []string{"sub"},
	Short:   "Grade and inspect submissions",
}

var submissionGradeCmd = &cobra.Command{
	Use:   "grade <discussion-id> [file]",
	Short: "Grade one submission",
	Long: "Grade a submission against a discussion. The text comes from a file " +
		"argument, from the clipboard with --clipboard, or from stdin.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runSubmissionGrade,
}

var submissionBatchCmd = &cobra.Command{
	Use:   "batch <discussion-id>",
	Short: "Grade submissions from the clipboard in a loop",
	Long: "Repeatedly grade whatever is on the clipboard: copy a submission, " +
		"press Enter to grade it, and the result is copied back. Type q to stop.",
	Args: cobra.ExactArgs(1),
	RunE: runSubmissionBatch,
}

var submissionListCmd = &cobra.Command{
	Use:   "list <discussion-id>",
	Short: "List saved submissions for a discussion",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmissionList,
}

var submissionShowCmd = &cobra.Command{
	Use:   "show <discussion-id> <submission-id>",
	Short: "Show one saved submission with its grade",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubmissionShow,
}

func init() {
	submissionGradeCmd.Flags().BoolVarP(&submissionClipboardFlag, "clipboard", "c", false, "read the submission from the clipboard")
	submissionGradeCmd.Flags().BoolVar(&submissionCopyFlag, "copy", false, "copy the grade report back to the clipboard")
	submissionGradeCmd.Flags().BoolVarP(&submissionSaveFlag, "save", "s", false, "save the submission and grade under the discussion")
	submissionGradeCmd.Flags().StringVar(&submissionStudentFlag, "student", "", "student name to record with the submission")
	submissionGradeCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")

	submissionBatchCmd.Flags().BoolVarP(&submissionSaveFlag, "save", "s", false, "save each submission and grade")

	submissionListCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")
	submissionShowCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")

	submissionCmd.AddCommand(submissionGradeCmd)
	submissionCmd.AddCommand(submissionBatchCmd)
	submissionCmd.AddCommand(submissionListCmd)
	submissionCmd.AddCommand(submissionShowCmd)
}

func runSubmissionGrade(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	text, err := submissionText(args)
	if err != nil {
		return err
	}

	grader, err := a.gradingService()
	if err != nil {
		return err
	}

	outcome, err := grader.GradeText(cmd.Context(), id, text, service.GradeOptions{
		StudentName: submissionStudentFlag,
		Save:        submissionSaveFlag,
	})
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		if err := printJSON(os.Stdout, outcome); err != nil {
			return err
		}
	} else {
		printGradeReport(os.Stdout, outcome)
	}

	if submissionCopyFlag {
		if err := clipboard.WriteAll(renderGradeReport(outcome)); err != nil {
			return fmt.Errorf("copy report to clipboard: %w", err)
		}
	}
	return nil
}

func runSubmissionBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	grader, err := a.gradingService()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	graded := 0
	for {
		fmt.Print("Copy a submission, then press Enter to grade it (q to quit): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "q" {
			break
		}

		text, err := clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			fmt.Println("Clipboard is empty, skipping.")
			continue
		}

		outcome, err := grader.GradeText(cmd.Context(), id, text, service.GradeOptions{Save: submissionSaveFlag})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}

		printGradeReport(os.Stdout, outcome)
		if err := clipboard.WriteAll(renderGradeReport(outcome)); err != nil {
			return fmt.Errorf("copy report to clipboard: %w", err)
		}
		graded++
		fmt.Println("Report copied to clipboard.")
	}

	fmt.Printf("Graded %d submission(s).\n", graded)
	return nil
}

func runSubmissionList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	records, err := a.submissions.List(id)
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		return printJSON(os.Stdout, records)
	}
	printSubmissionTable(os.Stdout, records)
	return nil
}

func runSubmissionShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	discussionID, err := parseID(args[0])
	if err != nil {
		return err
	}
	submissionID, err := parseID(args[1])
	if err != nil {
		return err
	}

	record, err := a.submissions.Get(discussionID, submissionID)
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		return printJSON(os.Stdout, record)
	}
	printSubmissionRecord(os.Stdout, record)
	return nil
}

// submissionText resolves the text to grade: file argument, clipboard, or
// stdin, in that order of preference.
func submissionText(args []string) (string, error) {
	if len(args) == 2 {
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return "", fmt.Errorf("read submission file: %w", err)
		}
		return string(raw), nil
	}
	if submissionClipboardFlag {
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("clipboard is empty")
		}
		return text, nil
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read submission from stdin: %w", err)
	}
	return string(raw), nil
}
