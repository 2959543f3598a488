package verify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/llm"
)

// Verifier scores how well a generated reply is supported by its grounding
// documents. The controller decides what to do with the score.
type Verifier struct {
	provider  llm.LLMProvider
	threshold float64
	log       logger.ILogger
}

func New(provider llm.LLMProvider, threshold float64, log logger.ILogger) *Verifier {
	return &Verifier{
		provider:  provider,
		threshold: threshold,
		log:       log,
	}
}

func (v *Verifier) Threshold() float64 {
	return v.threshold
}

// Verify returns a groundedness score in [0, 1]. An unparsable model answer
// counts as passing so a flaky scorer cannot burn the regeneration budget.
func (v *Verifier) Verify(ctx context.Context, reply string, grounding []state.Document) (float64, error) {
	if len(grounding) == 0 {
		return 1.0, nil
	}

	var docs strings.Builder
	for i, d := range grounding {
		fmt.Fprintf(&docs, "[%d] %s\n", i+1, d.Content)
	}

	prompt := fmt.Sprintf(constant.GroundednessPrompt, docs.String(), reply)
	answer, err := v.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return 0, err
	}

	score, err := parseScore(answer)
	if err != nil {
		v.log.Warn("verifier", "unparsable groundedness score, accepting reply", map[string]interface{}{
			"answer": answer,
		})
		return 1.0, nil
	}
	return score, nil
}

// Passes reports whether a score clears the configured threshold.
func (v *Verifier) Passes(score float64) bool {
	return score >= v.threshold
}

func parseScore(answer string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(answer))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty score")
	}
	raw := strings.Trim(fields[0], ".,")
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
