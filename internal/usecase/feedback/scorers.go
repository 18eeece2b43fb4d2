package feedback

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/issue-assistant/internal/entity"
)

const (
	MetricContextRelevance = "Context Relevance"
	MetricAnswerRelevance  = "Answer Relevance"

	maxRating = 3.0
)

var ErrNoPassages = errors.New("no passages to score")

const contextRelevancePrompt = `You are a RELEVANCE grader. Rate how relevant the CONTEXT is to the QUESTION.
Respond only with an integer from 0 to 3, where 0 is not relevant at all and 3 is fully relevant.

<question>%s</question>
<context>%s</context>
<rating>`

const answerRelevancePrompt = `You are a RELEVANCE grader. Rate how well the RESPONSE answers the QUESTION.
Respond only with an integer from 0 to 3, where 0 is not relevant at all and 3 is fully relevant.

<question>%s</question>
<response>%s</response>
<rating>`

// ContextRelevance judges each retrieved passage against the question and averages the ratings
type ContextRelevance struct {
	completer Completer
	model     string
}

func NewContextRelevance(completer Completer, model string) *ContextRelevance {
	return &ContextRelevance{completer: completer, model: model}
}

func (s *ContextRelevance) Name() string {
	return MetricContextRelevance
}

func (s *ContextRelevance) Score(ctx context.Context, in Input) (float64, error) {
	var sum float64
	var n int
	for _, p := range in.Passages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}

		score, err := judge(ctx, s.completer, s.model, fmt.Sprintf(contextRelevancePrompt, in.Question, p.Text))
		if err != nil {
			return 0, err
		}
		sum += score
		n++
	}

	if n == 0 {
		return 0, ErrNoPassages
	}
	return sum / float64(n), nil
}

// AnswerRelevance judges the generated response against the question
type AnswerRelevance struct {
	completer Completer
	model     string
}

func NewAnswerRelevance(completer Completer, model string) *AnswerRelevance {
	return &AnswerRelevance{completer: completer, model: model}
}

func (s *AnswerRelevance) Name() string {
	return MetricAnswerRelevance
}

func (s *AnswerRelevance) Score(ctx context.Context, in Input) (float64, error) {
	return judge(ctx, s.completer, s.model, fmt.Sprintf(answerRelevancePrompt, in.Question, in.Response))
}

func judge(ctx context.Context, completer Completer, model, prompt string) (float64, error) {
	text, err := completer.Complete(ctx, model, prompt)
	if err != nil {
		return 0, fmt.Errorf("judge completion: %w", err)
	}
	return ParseRating(text)
}

var ratingPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseRating reads the first number of a judge reply on the 0-3 scale and normalizes it to [0, 1]
func ParseRating(text string) (float64, error) {
	match := ratingPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("%w: %q", entity.ErrScoreUnparseable, text)
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", entity.ErrScoreUnparseable, text)
	}
	if rating < 0 || rating > maxRating {
		return 0, fmt.Errorf("%w: rating %v out of range", entity.ErrScoreUnparseable, rating)
	}

	return rating / maxRating, nil
}
