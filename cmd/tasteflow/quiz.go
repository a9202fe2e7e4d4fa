package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/common"
	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/quiz"
)

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take the onboarding taste quiz",
		Long: `Take the five-question taste quiz interactively, or submit
pre-recorded answers from a JSON file.

Each submission replaces your declared taste profile wholesale.`,
		RunE: runQuiz,
	}

	cmd.Flags().String("answers", "", "JSON file of quiz answers instead of interactive mode")

	return cmd
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	var answers []model.QuizAnswer
	answersPath, _ := cmd.Flags().GetString("answers")
	if answersPath != "" {
		data, readErr := os.ReadFile(answersPath) // #nosec G304
		if readErr != nil {
			return fmt.Errorf("failed to read answers file: %w", readErr)
		}
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("failed to parse answers file: %w", err)
		}
	} else {
		prompter := cli.NewQuizPrompter(os.Stdin, os.Stdout)
		answers, err = prompter.Run(ctx)
		if err != nil {
			return fmt.Errorf("quiz aborted: %w", err)
		}
	}

	if len(answers) == 0 {
		return common.NewUserError("No quiz answers given.", common.ErrNoQuizAnswers)
	}

	taste := quiz.NewBuilder().Build(answers)

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	version, err := store.SaveDeclaredTaste(ctx, userID, taste)
	if err != nil {
		return fmt.Errorf("failed to save declared taste: %w", err)
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Exploration: %s\n", orDash(string(taste.ExplorationStyle)))
	fmt.Fprintf(&summary, "Price tier:  %s\n", orDash(string(taste.PriceTier)))
	fmt.Fprintf(&summary, "Vibes:       %s\n", orDash(strings.Join(taste.Vibes, ", ")))
	fmt.Fprintf(&summary, "Cuisines:    %s", orDash(strings.Join(taste.CuisinePreferences, ", ")))

	fmt.Println(cli.RenderBox(fmt.Sprintf("Declared Taste v%d", version), summary.String()))
	fmt.Println(cli.FormatSuccess("Taste profile saved. Run 'tasteflow taste' to see the fused view."))

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
