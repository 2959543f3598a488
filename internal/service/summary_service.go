package service

import (
	"context"
	"fmt"
	"strings"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/llm"
)

// SummaryService maintains the rolling conversation digest the generator
// injects into its system prompt.
type SummaryService struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewSummaryService(provider llm.LLMProvider, log logger.ILogger) *SummaryService {
	return &SummaryService{
		provider: provider,
		logger:   log,
	}
}

func (s *SummaryService) Summarize(ctx context.Context, existing string, recent []state.Message) (string, error) {
	if len(recent) == 0 {
		return existing, nil
	}

	var sb strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	prompt := fmt.Sprintf(constant.ConversationSummaryPrompt, existing, sb.String())
	summary, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.2), llm.WithMaxTokens(250))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
