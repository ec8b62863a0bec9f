package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/discussion-grader/internal/dto"
)

var canvasCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Grade a Canvas SpeedGrader payload from stdin",
	Long: "Read a SpeedGrader grading request as JSON on stdin and write the " +
		"grade response as JSON on stdout. Errors also produce a JSON envelope " +
		"so the browser side always gets a parseable reply.",
	Args: cobra.NoArgs,
	RunE: runCanvas,
}

func runCanvas(cmd *cobra.Command, args []string) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return canvasFail(fmt.Errorf("read request: %w", err))
	}

	var req dto.CanvasGradeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return canvasFail(fmt.Errorf("decode request: %w", err))
	}

	a, err := newApp()
	if err != nil {
		return canvasFail(err)
	}
	svc, err := a.canvasService()
	if err != nil {
		return canvasFail(err)
	}

	resp, err := svc.Grade(cmd.Context(), req)
	if err != nil {
		return canvasFail(err)
	}

	return printJSON(os.Stdout, resp)
}

// canvasFail writes the error envelope to stdout and still returns the error
// so the process exits non-zero.
func canvasFail(err error) error {
	_ = printJSON(os.Stdout, dto.NewCanvasErrorResponse("Grading error: "+err.Error()))
	return err
}
