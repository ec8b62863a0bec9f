package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/discussion-grader/internal/dto"
)

var (
	discussionTitleFlag    string
	discussionPointsFlag   int
	discussionMinWordsFlag int
	discussionFileFlag     string
	outputFormatFlag       string
)

var discussionCmd = &cobra.Command{
	Use:     "discussion",
	Aliases: []string{"disc"},
	Short:   "Manage discussion questions",
}

var discussionCreateCmd = &cobra.Command{
	Use:   "create <question text>",
	Short: "Create a new discussion",
	Long:  "Create a new discussion from the question given as arguments, or from a file with --file.",
	RunE:  runDiscussionCreate,
}

var discussionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discussions",
	Args:  cobra.NoArgs,
	RunE:  runDiscussionList,
}

var discussionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one discussion with its question",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscussionShow,
}

var discussionUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a discussion's title, points, min words, or question",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscussionUpdate,
}

func init() {
	discussionCreateCmd.Flags().StringVarP(&discussionTitleFlag, "title", "t", "", "discussion title (defaults to the start of the question)")
	discussionCreateCmd.Flags().IntVarP(&discussionPointsFlag, "points", "p", 0, "total points (default 12)")
	discussionCreateCmd.Flags().IntVarP(&discussionMinWordsFlag, "min-words", "w", 0, "minimum word count (default 300)")
	discussionCreateCmd.Flags().StringVarP(&discussionFileFlag, "file", "f", "", "read the question from a file")

	discussionUpdateCmd.Flags().StringVarP(&discussionTitleFlag, "title", "t", "", "new title")
	discussionUpdateCmd.Flags().IntVarP(&discussionPointsFlag, "points", "p", -1, "new total points")
	discussionUpdateCmd.Flags().IntVarP(&discussionMinWordsFlag, "min-words", "w", -1, "new minimum word count")
	discussionUpdateCmd.Flags().StringVarP(&discussionFileFlag, "file", "f", "", "read the new question from a file")

	discussionListCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")
	discussionShowCmd.Flags().StringVarP(&outputFormatFlag, "output", "o", "text", "output format: text or json")

	discussionCmd.AddCommand(discussionCreateCmd)
	discussionCmd.AddCommand(discussionListCmd)
	discussionCmd.AddCommand(discussionShowCmd)
	discussionCmd.AddCommand(discussionUpdateCmd)
}

func runDiscussionCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	question, err := questionFromArgs(args)
	if err != nil {
		return err
	}

	title := discussionTitleFlag
	if title == "" {
		title = defaultTitle(question)
	}

	discussion, err := a.discussionService().Create(dto.DiscussionCreateRequest{
		Title:    title,
		Question: question,
		Points:   discussionPointsFlag,
		MinWords: discussionMinWordsFlag,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created discussion %d: %s (%d points, %d word minimum)\n",
		discussion.ID, discussion.Title, discussion.Points, discussion.MinWords)
	return nil
}

func runDiscussionList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	discussions, err := a.discussionService().List()
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		return printJSON(os.Stdout, discussions)
	}
	printDiscussionTable(os.Stdout, discussions)
	return nil
}

func runDiscussionShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	discussion, err := a.discussionService().Get(id)
	if err != nil {
		return err
	}

	if outputFormatFlag == "json" {
		return printJSON(os.Stdout, discussion)
	}
	printDiscussion(os.Stdout, discussion)
	return nil
}

func runDiscussionUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var payload dto.DiscussionUpdateRequest
	if cmd.Flags().Changed("title") {
		payload.Title = &discussionTitleFlag
	}
	if cmd.Flags().Changed("points") {
		payload.Points = &discussionPointsFlag
	}
	if cmd.Flags().Changed("min-words") {
		payload.MinWords = &discussionMinWordsFlag
	}
	if discussionFileFlag != "" {
		raw, err := os.ReadFile(discussionFileFlag)
		if err != nil {
			return fmt.Errorf("read question file: %w", err)
		}
		question := string(raw)
		payload.Question = &question
	}

	discussion, err := a.discussionService().Update(id, payload)
	if err != nil {
		return err
	}

	fmt.Printf("Updated discussion %d: %s (%d points, %d word minimum)\n",
		discussion.ID, discussion.Title, discussion.Points, discussion.MinWords)
	return nil
}

// questionFromArgs resolves the question text from --file or the joined
// command arguments.
func questionFromArgs(args []string) (string, error) {
	if discussionFileFlag != "" {
		raw, err := os.ReadFile(discussionFileFlag)
		if err != nil {
			return "", fmt.Errorf("read question file: %w", err)
		}
		return string(raw), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide the question as arguments or with --file")
	}
	return joinArgs(args), nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid discussion id %q", arg)
	}
	return id, nil
}
