package tools

import (
	"context"
	"fmt"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/llm"
)

// Invocation carries one tool call plus the identity of the turn that made
// it. Tools never see raw transport details.
type Invocation struct {
	UserID   string
	ThreadID string
	Args     map[string]any
}

// Tool is a side-effecting capability the generator may call. Execute
// returns a short textual result that is fed back to the model, never shown
// verbatim to the user.
type Tool interface {
	Decl() llm.ToolDecl
	Execute(ctx context.Context, inv Invocation) (string, error)
}

// Registry holds the tools available to a generation mode.
type Registry struct {
	tools map[string]Tool
	order []string
	log   logger.ILogger
}

func NewRegistry(log logger.ILogger) *Registry {
	return &Registry{
		tools: map[string]Tool{},
		log:   log,
	}
}

func (r *Registry) Register(t Tool) {
	name := t.Decl().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Decls returns tool declarations in registration order.
func (r *Registry) Decls() []llm.ToolDecl {
	decls := make([]llm.ToolDecl, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Decl())
	}
	return decls
}

// Dispatch executes one model-requested tool call.
func (r *Registry) Dispatch(ctx context.Context, userID, threadID string, call llm.ToolCall) (string, error) {
	tool, ok := r.tools[call.Name]
	if !ok {
		return "", errs.NewToolError(call.Name, fmt.Errorf("unknown tool"))
	}

	result, err := tool.Execute(ctx, Invocation{
		UserID:   userID,
		ThreadID: threadID,
		Args:     call.Arguments,
	})
	if err != nil {
		r.log.Warn("tools", "tool call failed", map[string]interface{}{
			"tool":    call.Name,
			"user_id": userID,
			"error":   err.Error(),
		})
		return "", err
	}

	r.log.Debug("tools", "tool call executed", map[string]interface{}{
		"tool":    call.Name,
		"user_id": userID,
	})
	return result, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
