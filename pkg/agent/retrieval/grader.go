package retrieval

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/llm"
)

// Grader judges each retrieved document independently against the question.
type Grader struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewGrader(provider llm.LLMProvider, log logger.ILogger) *Grader {
	return &Grader{
		provider: provider,
		log:      log,
	}
}

// Filter marks each document's Relevant flag and returns only the relevant
// subset. A grading call that errors counts as not relevant rather than
// failing the turn.
func (g *Grader) Filter(ctx context.Context, docs []state.Document, question string) []state.Document {
	var relevant []state.Document
	for i := range docs {
		ok, err := g.gradeOne(ctx, docs[i].Content, question)
		if err != nil {
			g.log.Warn("grader", "document grading failed, treating as irrelevant", map[string]interface{}{
				"question": question,
				"error":    err.Error(),
			})
			docs[i].Relevant = false
			continue
		}
		docs[i].Relevant = ok
		if ok {
			relevant = append(relevant, docs[i])
		}
	}
	return relevant
}

func (g *Grader) gradeOne(ctx context.Context, document, question string) (bool, error) {
	content := document
	if len(content) > 1500 {
		cut := 1500
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "..."
	}

	prompt := fmt.Sprintf(constant.DocumentGradePrompt, question, content)
	answer, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return false, err
	}

	verdict := strings.ToLower(strings.TrimSpace(answer))
	return strings.HasPrefix(verdict, "yes"), nil
}
