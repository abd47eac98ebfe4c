package problemgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/problemset"
)

// ErrNothingToAsk is returned by Ask for an empty question or problem set.
var ErrNothingToAsk = errors.New("no question or no problems to ask about")

// Ask answers a follow-up question with the current problems as context.
func (g *Generator) Ask(ctx context.Context, items []problemset.Item, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" || len(items) == 0 {
		return "", ErrNothingToAsk
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeFollowUp)
	req := llm.UserPrompt(FollowUpSystemPrompt, BuildFollowUpPrompt(items, question), g.config.FollowUpMaxTokens, g.config.Temperature)

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("follow-up answer: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
