package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/quiz"
)

// QuizPrompter runs the onboarding taste quiz interactively.
type QuizPrompter struct {
	writer io.Writer
	reader *NonBlockingReader
}

// NewQuizPrompter creates a prompter with the given reader and writer.
func NewQuizPrompter(reader io.Reader, writer io.Writer) *QuizPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &QuizPrompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Run walks through every quiz question and returns the collected answers
// in question order.
func (p *QuizPrompter) Run(ctx context.Context) ([]model.QuizAnswer, error) {
	questions := quiz.Questions()

	if _, err := fmt.Fprintln(p.writer, FormatTitle("Taste Quiz")); err != nil {
		return nil, fmt.Errorf("failed to write quiz title: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer, SubtitleStyle.Render(
		fmt.Sprintf("%d quick questions to seed your taste profile", len(questions)))); err != nil {
		return nil, fmt.Errorf("failed to write quiz subtitle: %w", err)
	}

	answers := make([]model.QuizAnswer, 0, len(questions))
	for i, question := range questions {
		answerID, err := p.askQuestion(ctx, i+1, len(questions), question)
		if err != nil {
			return nil, err
		}
		answers = append(answers, model.QuizAnswer{
			QuestionID: question.ID,
			AnswerID:   answerID,
		})
	}

	if _, err := fmt.Fprintln(p.writer, FormatSuccess("Quiz complete!")); err != nil {
		return nil, fmt.Errorf("failed to write completion message: %w", err)
	}

	return answers, nil
}

// askQuestion renders one question box and reads a valid choice.
func (p *QuizPrompter) askQuestion(ctx context.Context, number, total int, question quiz.Question) (string, error) {
	var content strings.Builder
	valid := make([]string, 0, len(question.Choices))
	for _, choice := range question.Choices {
		content.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(choice.ID), choice.Text))
		valid = append(valid, choice.ID)
	}

	title := fmt.Sprintf("Question %d of %d", number, total)
	box := RenderBox(title, question.Prompt+"\n\n"+strings.TrimRight(content.String(), "\n"))
	if _, err := fmt.Fprintln(p.writer, box); err != nil {
		return "", fmt.Errorf("failed to write question box: %w", err)
	}

	return p.promptChoice(ctx, "Your pick", valid)
}

// promptChoice reads input until the user gives one of validChoices.
func (p *QuizPrompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning(
			fmt.Sprintf("Please answer one of: %s", strings.ToUpper(strings.Join(validChoices, "/"))))); err != nil {
			return "", fmt.Errorf("failed to write validation message: %w", err)
		}
	}
}
