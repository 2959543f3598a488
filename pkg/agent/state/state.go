package state

import (
	"time"
)

// SchemaVersion is stamped onto every persisted ThreadState. Checkpoints
// written by an older schema are discarded on load and the thread starts
// from an empty state.
const SchemaVersion = 2

// Route labels produced by the router. Exactly one is assigned per turn.
const (
	RouteDocument       = "document"
	RouteDirect         = "direct"
	RouteRetrieval      = "retrieval"
	RouteExternalSearch = "external_search"
)

// Message is a single conversational exchange entry kept in thread history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a retrieved context snippet plus the grading verdict for the
// current question.
type Document struct {
	Content         string  `json:"content"`
	SourceNamespace string  `json:"source_namespace"`
	SectionID       string  `json:"section_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	Score           float64 `json:"score"`
	Relevant        bool    `json:"relevant"`
}

// ThreadState is the full working state of one conversation thread. It is
// checkpointed after every completed turn and reloaded at the start of the
// next one.
type ThreadState struct {
	SchemaVersion       int        `json:"schema_version"`
	ThreadID            string     `json:"thread_id"`
	UserID              string     `json:"user_id"`
	Messages            []Message  `json:"messages"`
	ConversationSummary string     `json:"conversation_summary,omitempty"`
	CurrentQuestion     string     `json:"current_question"`
	Route               string     `json:"route"`
	Documents           []Document `json:"documents,omitempty"`
	DraftAnswer         string     `json:"draft_answer,omitempty"`
	RewriteCount        int        `json:"rewrite_count"`
	SearchAttempts      int        `json:"search_attempts"`
	Regenerations       int        `json:"regenerations"`
	GroundednessScore   float64    `json:"groundedness_score"`
	SkipVerification    bool       `json:"skip_verification"`
	ImageContexts       []string   `json:"image_contexts,omitempty"`
	Degraded            bool       `json:"degraded"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewThreadState returns an empty state for a thread that has no usable
// checkpoint.
func NewThreadState(threadID, userID string) *ThreadState {
	return &ThreadState{
		SchemaVersion: SchemaVersion,
		ThreadID:      threadID,
		UserID:        userID,
		Messages:      []Message{},
	}
}

// ResetTurn clears the per-turn scratch fields while keeping conversation
// history, so a new turn starts from a clean slate.
func (s *ThreadState) ResetTurn(question string) {
	s.CurrentQuestion = question
	s.Route = ""
	s.Documents = nil
	s.DraftAnswer = ""
	s.RewriteCount = 0
	s.SearchAttempts = 0
	s.Regenerations = 0
	s.GroundednessScore = 0
	s.SkipVerification = false
	s.ImageContexts = nil
	s.Degraded = false
}

// AppendExchange records the user question and assistant answer of a
// completed turn into the history.
func (s *ThreadState) AppendExchange(question, answer string) {
	now := time.Now()
	s.Messages = append(s.Messages,
		Message{Role: "user", Content: question, CreatedAt: now},
		Message{Role: "assistant", Content: answer, CreatedAt: now},
	)
	s.UpdatedAt = now
}

// RelevantDocuments returns only the documents the grader accepted.
func (s *ThreadState) RelevantDocuments() []Document {
	var out []Document
	for _, d := range s.Documents {
		if d.Relevant {
			out = append(out, d)
		}
	}
	return out
}

// Turn is the aggregated unit of work handed to the controller: all text the
// user sent within one inactivity window, with any image descriptions already
// resolved.
type Turn struct {
	TurnID        string    `json:"turn_id"`
	ThreadID      string    `json:"thread_id"`
	UserID        string    `json:"user_id"`
	Text          string    `json:"text"`
	ImageContexts []string  `json:"image_contexts,omitempty"`
	Degraded      bool      `json:"degraded"`
	ReceivedAt    time.Time `json:"received_at"`
}
