package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("branch is fully booked")
	err := NewToolError("create_booking", cause)

	assert.ErrorIs(t, err, ErrToolExecution)
	assert.ErrorIs(t, err, cause, "the underlying cause must stay reachable")

	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "create_booking", toolErr.Tool)
}

func TestToolErrorWrappedFurther(t *testing.T) {
	cause := errors.New("api rejected")
	err := fmt.Errorf("dispatch: %w", NewToolError("find_branch", cause))

	assert.ErrorIs(t, err, ErrToolExecution)
	assert.ErrorIs(t, err, cause)
}
