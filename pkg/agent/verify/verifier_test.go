package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/llm"
)

type fakeModel struct {
	answer string
	err    error
}

func (f *fakeModel) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeModel) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeModel) Invoke(_ context.Context, _ []llm.Message, _ []llm.ToolDecl, _ ...llm.Option) (*llm.Completion, error) {
	return &llm.Completion{Text: f.answer}, f.err
}

func TestVerifyScores(t *testing.T) {
	docs := []state.Document{{Content: "We open at 10am."}}

	tests := []struct {
		name      string
		answer    string
		wantScore float64
	}{
		{"plain score", "0.8", 0.8},
		{"score with trailing text", "0.4 because the claim about parking is unsupported", 0.4},
		{"score with trailing period", "1.0.", 1.0},
		{"clamped above one", "1.7", 1.0},
		{"clamped below zero", "-0.3", 0.0},
		{"unparsable accepts", "the answer looks fine to me", 1.0},
		{"empty accepts", "", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(&fakeModel{answer: tt.answer}, 0.5, logger.NewNopLogger())
			score, err := v.Verify(context.Background(), "We open at 10am.", docs)
			assert.NoError(t, err)
			assert.InDelta(t, tt.wantScore, score, 0.0001)
		})
	}
}

func TestVerifyEmptyGroundingIsVacuouslySupported(t *testing.T) {
	v := New(&fakeModel{answer: "0.0"}, 0.5, logger.NewNopLogger())
	score, err := v.Verify(context.Background(), "anything", nil)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestVerifyModelError(t *testing.T) {
	v := New(&fakeModel{err: errors.New("boom")}, 0.5, logger.NewNopLogger())
	_, err := v.Verify(context.Background(), "reply", []state.Document{{Content: "doc"}})
	assert.Error(t, err)
}

func TestPasses(t *testing.T) {
	v := New(&fakeModel{}, 0.5, logger.NewNopLogger())
	assert.True(t, v.Passes(0.5))
	assert.True(t, v.Passes(0.9))
	assert.False(t, v.Passes(0.49))
}
