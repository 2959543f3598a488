package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the turn pipeline. Each one maps to a defined
// degradation path in the controller; none of them may escape to the user
// as raw text.
var (
	// ErrRetrievalEmpty: no relevant documents remained after exhausting
	// rewrites and external search attempts.
	ErrRetrievalEmpty = errors.New("retrieval produced no relevant documents")

	// ErrGenerationFailure: the model call failed after its retry budget.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrGroundednessFailure: the reply stayed below the groundedness
	// threshold after all regeneration attempts.
	ErrGroundednessFailure = errors.New("reply failed groundedness check")

	// ErrToolExecution: a side-effecting tool call failed mid-turn.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrAggregationTimeout: the image sub-pipeline missed its deadline and
	// the turn proceeded with partial image contexts.
	ErrAggregationTimeout = errors.New("image aggregation timed out")

	// ErrInvalidProfileValue: a profile write was rejected at the store
	// boundary. Logged, never surfaced to the user.
	ErrInvalidProfileValue = errors.New("invalid profile value")

	// ErrNoProgress: the rewriter returned a query not materially different
	// from its input, so the rewrite loop was aborted early.
	ErrNoProgress = errors.New("query rewrite made no progress")
)

// ToolError wraps a tool failure with the tool name so logs can attribute it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

// Unwrap exposes the underlying cause so callers can errors.Is/As against
// it; the ErrToolExecution sentinel is matched via Is instead.
func (e *ToolError) Unwrap() error {
	return e.Err
}

func (e *ToolError) Is(target error) bool {
	return target == ErrToolExecution
}

func NewToolError(tool string, err error) *ToolError {
	return &ToolError{Tool: tool, Err: err}
}
