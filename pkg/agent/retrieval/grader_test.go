package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
)

func TestFilterVerdictParsing(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		wantRelevant bool
	}{
		{"plain yes", "yes", true},
		{"yes with reasoning", "Yes, the document covers opening hours.", true},
		{"uppercase", "YES", true},
		{"plain no", "no", false},
		{"no with reasoning", "No. The document is about a different branch.", false},
		{"off-script answer", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrader(&stubModel{answer: tt.answer}, logger.NewNopLogger())
			docs := []state.Document{{Content: "We open at 10am."}}

			relevant := g.Filter(context.Background(), docs, "when do you open?")

			assert.Equal(t, tt.wantRelevant, docs[0].Relevant)
			if tt.wantRelevant {
				assert.Len(t, relevant, 1)
			} else {
				assert.Empty(t, relevant)
			}
		})
	}
}

func TestFilterGradingErrorMeansIrrelevant(t *testing.T) {
	g := NewGrader(&stubModel{err: errors.New("model down")}, logger.NewNopLogger())
	docs := []state.Document{{Content: "doc one"}, {Content: "doc two"}}

	relevant := g.Filter(context.Background(), docs, "question")

	assert.Empty(t, relevant)
	assert.False(t, docs[0].Relevant)
	assert.False(t, docs[1].Relevant)
}

func TestFilterTruncatesLongDocumentOnRuneBoundary(t *testing.T) {
	model := &stubModel{answer: "yes"}
	g := NewGrader(model, logger.NewNopLogger())

	// Two-byte runes offset by one leading byte, so a byte-indexed cut
	// would land mid-sequence.
	content := "x" + strings.Repeat("é", 1000)
	docs := []state.Document{{Content: content}}

	relevant := g.Filter(context.Background(), docs, "question")

	assert.Len(t, relevant, 1)
	assert.True(t, utf8.ValidString(model.lastPrompt),
		"truncated document must stay valid UTF-8 in the grading prompt")
}

func TestFilterEmptyInput(t *testing.T) {
	g := NewGrader(&stubModel{answer: "yes"}, logger.NewNopLogger())
	assert.Empty(t, g.Filter(context.Background(), nil, "question"))
}
