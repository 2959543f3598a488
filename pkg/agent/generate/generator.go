package generate

import (
	"context"
	"fmt"
	"strings"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/agent/tools"
	"chat-agent-be/pkg/llm"
)

const (
	// maxToolRounds bounds the model/tool back-and-forth within one reply.
	maxToolRounds = 4

	// modelRetries covers transient model failures inside a single
	// generation attempt. Regeneration for groundedness is counted
	// separately by the controller.
	modelRetries = 2

	historyWindow = 10
)

// Generator produces the reply for a turn. Direct mode runs a tool dispatch
// loop against the registry; grounded mode answers strictly from the
// supplied documents.
type Generator struct {
	provider llm.LLMProvider
	registry *tools.Registry
	profiles tools.ProfileWriter
	log      logger.ILogger
}

func New(provider llm.LLMProvider, registry *tools.Registry, profiles tools.ProfileWriter, log logger.ILogger) *Generator {
	return &Generator{
		provider: provider,
		registry: registry,
		profiles: profiles,
		log:      log,
	}
}

// Direct answers without retrieved grounding, relying on the profile and any
// tools the model elects to call. Every tool result is obtained before the
// reply is finalized.
func (g *Generator) Direct(ctx context.Context, turn *state.Turn, st *state.ThreadState) (string, error) {
	history := g.buildHistory(ctx, constant.DirectSystemPrompt, turn, st, nil, "")

	decls := g.registry.Decls()
	for round := 0; round < maxToolRounds; round++ {
		completion, err := g.invokeWithRetry(ctx, history, decls)
		if err != nil {
			return "", err
		}

		if len(completion.ToolCalls) == 0 {
			reply := strings.TrimSpace(completion.Text)
			if reply == "" {
				return "", errs.ErrGenerationFailure
			}
			return reply, nil
		}

		for _, call := range completion.ToolCalls {
			result, err := g.registry.Dispatch(ctx, turn.UserID, turn.ThreadID, call)
			if err != nil {
				return "", err
			}
			history = append(history, llm.Message{
				Role:    constant.ChatMessageRoleUser,
				Content: fmt.Sprintf("[tool %s result] %s", call.Name, result),
			})
		}
	}

	// The model kept calling tools without producing text. Force a final
	// text-only answer.
	completion, err := g.invokeWithRetry(ctx, append(history, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: "Reply to the guest now in plain text.",
	}), nil)
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(completion.Text)
	if reply == "" {
		return "", errs.ErrGenerationFailure
	}
	return reply, nil
}

// Grounded answers from the supplied documents. With no documents, the
// directive forces an explicit "no information" statement instead of a
// fabricated answer.
func (g *Generator) Grounded(ctx context.Context, turn *state.Turn, st *state.ThreadState, docs []state.Document) (string, error) {
	directive := ""
	if len(docs) == 0 {
		directive = constant.NoInformationDirective
	}

	history := g.buildHistory(ctx, constant.GroundedSystemPrompt, turn, st, docs, directive)

	completion, err := g.invokeWithRetry(ctx, history, nil)
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(completion.Text)
	if reply == "" {
		return "", errs.ErrGenerationFailure
	}
	return reply, nil
}

// RunPreferencePass executes the lexical preference extraction on turns that
// were not routed to the direct branch, so a mixed query still records its
// preference side effect. Failures are logged and swallowed.
func (g *Generator) RunPreferencePass(ctx context.Context, turn *state.Turn) {
	for _, pref := range ExtractPreferences(turn.Text) {
		outcome, err := g.profiles.SavePreference(ctx, turn.UserID, pref.Kind, pref.Value)
		if err != nil {
			g.log.Warn("generator", "preference pass save failed", map[string]interface{}{
				"user_id": turn.UserID,
				"kind":    pref.Kind,
				"error":   err.Error(),
			})
			continue
		}
		g.log.Debug("generator", "preference pass recorded", map[string]interface{}{
			"user_id": turn.UserID,
			"kind":    pref.Kind,
			"outcome": string(outcome),
		})
	}
}

func (g *Generator) invokeWithRetry(ctx context.Context, history []llm.Message, decls []llm.ToolDecl) (*llm.Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= modelRetries; attempt++ {
		completion, err := g.provider.Invoke(ctx, history, decls, llm.WithTemperature(0.4))
		if err == nil {
			return completion, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		g.log.Warn("generator", "model call failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailure, lastErr)
}

func (g *Generator) buildHistory(ctx context.Context, systemPrompt string, turn *state.Turn, st *state.ThreadState, docs []state.Document, directive string) []llm.Message {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if st.ConversationSummary != "" {
		sb.WriteString("\n\nConversation so far: ")
		sb.WriteString(st.ConversationSummary)
	}

	if profile, err := g.profiles.GetProfile(ctx, turn.UserID); err == nil {
		if known := profileSummary(profile.Name, profile.Preferences); known != "" {
			sb.WriteString("\n\nKnown about this guest:\n")
			sb.WriteString(known)
		}
	}

	if len(turn.ImageContexts) > 0 {
		sb.WriteString("\n\nThe guest attached images. What they show:\n")
		for _, imgCtx := range turn.ImageContexts {
			sb.WriteString("- " + imgCtx + "\n")
		}
	}
	if turn.Degraded {
		sb.WriteString("\nSome attachments could not be processed in time; if the question depends on them, ask the guest to resend.\n")
	}

	if len(docs) > 0 {
		sb.WriteString("\n\nContext documents:\n")
		for i, d := range docs {
			title := d.Title
			if title == "" {
				title = d.SourceNamespace
			}
			fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, title, d.Content)
		}
	}
	if directive != "" {
		sb.WriteString("\n" + directive)
	}

	history := []llm.Message{{Role: constant.ChatMessageRoleSystem, Content: sb.String()}}

	msgs := st.Messages
	if len(msgs) > historyWindow {
		msgs = msgs[len(msgs)-historyWindow:]
	}
	for _, m := range msgs {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	history = append(history, llm.Message{Role: constant.ChatMessageRoleUser, Content: turn.Text})
	return history
}

func profileSummary(name string, prefs map[string]string) string {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "- name: %s\n", name)
	}
	for kind, value := range prefs {
		fmt.Fprintf(&sb, "- %s: %s\n", kind, value)
	}
	return sb.String()
}
