package turn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/generate"
	"chat-agent-be/pkg/agent/retrieval"
	"chat-agent-be/pkg/agent/router"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/agent/tools"
	"chat-agent-be/pkg/agent/verify"
	"chat-agent-be/pkg/llm"
	"chat-agent-be/pkg/websearch"
)

// scriptedModel routes each prompt to a per-stage answer queue, keyed off
// the prompt text. The last queued answer repeats once the queue is empty.
type scriptedModel struct {
	mu sync.Mutex

	gradeAnswers   []string
	rewriteAnswers []string
	verifyAnswers  []string
	invokeTexts    []string
	invokeErr      error

	gradeCalls   int
	rewriteCalls int
	verifyCalls  int
	invokeCalls  int
}

func (m *scriptedModel) pop(queue *[]string) string {
	if len(*queue) == 0 {
		return ""
	}
	answer := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return answer
}

func (m *scriptedModel) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case strings.Contains(prompt, "grading whether a retrieved document"):
		m.gradeCalls++
		return m.pop(&m.gradeAnswers), nil
	case strings.Contains(prompt, "Rewrite the following search query"):
		m.rewriteCalls++
		return m.pop(&m.rewriteAnswers), nil
	case strings.Contains(prompt, "supported by a set of source documents"):
		m.verifyCalls++
		return m.pop(&m.verifyAnswers), nil
	}
	return "", fmt.Errorf("unexpected prompt: %.40s", prompt)
}

func (m *scriptedModel) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return "", fmt.Errorf("unexpected Chat call")
}

func (m *scriptedModel) Invoke(_ context.Context, _ []llm.Message, _ []llm.ToolDecl, _ ...llm.Option) (*llm.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invokeCalls++
	if m.invokeErr != nil {
		return nil, m.invokeErr
	}
	return &llm.Completion{Text: m.pop(&m.invokeTexts)}, nil
}

type retrieverFunc func(ctx context.Context, query string, namespaces []string) ([]state.Document, error)

func (f retrieverFunc) Retrieve(ctx context.Context, query string, namespaces []string) ([]state.Document, error) {
	return f(ctx, query, namespaces)
}

type searcherFunc func(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)

func (f searcherFunc) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	return f(ctx, query, maxResults)
}

// memStore is an in-memory checkpoint store.
type memStore struct {
	mu     sync.Mutex
	states map[string]state.ThreadState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: map[string]state.ThreadState{}}
}

func (s *memStore) Load(_ context.Context, threadID string) (*state.ThreadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[threadID]; ok {
		cp := st
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) Save(_ context.Context, st *state.ThreadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.states[st.ThreadID] = *st
	return nil
}

type recordingReplier struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingReplier) SendText(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

type stubProfiles struct {
	mu          sync.Mutex
	preferences map[string]string
}

func (p *stubProfiles) GetProfile(_ context.Context, id string) (*entity.UserProfile, error) {
	return &entity.UserProfile{PlatformUserId: id, Preferences: map[string]string{}}, nil
}

func (p *stubProfiles) SetField(_ context.Context, _, _, _ string) (entity.SaveOutcome, error) {
	return entity.SaveOutcomeSaved, nil
}

func (p *stubProfiles) SavePreference(_ context.Context, _, kind, value string) (entity.SaveOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.preferences == nil {
		p.preferences = map[string]string{}
	}
	p.preferences[kind] = value
	return entity.SaveOutcomeSaved, nil
}

type fixture struct {
	controller *Controller
	model      *scriptedModel
	store      *memStore
	replier    *recordingReplier
	profiles   *stubProfiles
}

func newFixture(model *scriptedModel, docs []state.Document) *fixture {
	nop := logger.NewNopLogger()
	store := newMemStore()
	replier := &recordingReplier{}
	profiles := &stubProfiles{}

	controller := NewController(Config{
		Checkpoints: store,
		Router:      router.New(nil),
		Retriever: retrieverFunc(func(_ context.Context, _ string, _ []string) ([]state.Document, error) {
			return docs, nil
		}),
		Grader:    retrieval.NewGrader(model, nop),
		Rewriter:  retrieval.NewRewriter(model, nil, nop),
		Generator: generate.New(model, tools.NewRegistry(nop), profiles, nop),
		Verifier:  verify.New(model, 0.5, nop),
		Searcher: searcherFunc(func(_ context.Context, _ string, _ int) ([]websearch.Result, error) {
			return nil, nil
		}),
		Replier: replier,
		Bounds: Bounds{
			MaxRewrites:       2,
			MaxSearchAttempts: 2,
			MaxRegenerations:  1,
		},
		Logger: nop,
	})

	return &fixture{
		controller: controller,
		model:      model,
		store:      store,
		replier:    replier,
		profiles:   profiles,
	}
}

func menuTurn(text string) *state.Turn {
	return &state.Turn{
		TurnID:   "turn-1",
		ThreadID: "thread-1",
		UserID:   "user-1",
		Text:     text,
	}
}

func TestProcessRetrievalHappyPath(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:  []string{"yes"},
		verifyAnswers: []string{"0.9"},
		invokeTexts:   []string{"We serve Thai classics, the tom yum is popular."},
	}
	f := newFixture(model, []state.Document{{Content: "Menu: tom yum, pad thai."}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu?"))
	require.NoError(t, err)

	require.Len(t, f.replier.replies, 1)
	assert.Equal(t, "We serve Thai classics, the tom yum is popular.", f.replier.replies[0])

	st := f.store.states["thread-1"]
	assert.Equal(t, state.RouteRetrieval, st.Route)
	assert.Equal(t, 0, st.RewriteCount)
	assert.Equal(t, 0.9, st.GroundednessScore)
	assert.Len(t, st.Messages, 2)
}

func TestProcessRewriteExhaustionTerminates(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:   []string{"no"},
		rewriteAnswers: []string{"menu items list", "full menu with prices"},
		invokeTexts:    []string{"I don't have that information, sorry."},
	}
	f := newFixture(model, []state.Document{{Content: "unrelated text"}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu?"))
	require.NoError(t, err)

	st := f.store.states["thread-1"]
	assert.Equal(t, 2, st.RewriteCount, "rewrites must stop at the bound")
	assert.Equal(t, 2, model.rewriteCalls)
	assert.Equal(t, 1, st.SearchAttempts, "exhausted retrieval falls through to external search once")
	require.Len(t, f.replier.replies, 1)
}

func TestProcessRewriteNoProgressShortCircuits(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:   []string{"no"},
		rewriteAnswers: []string{"What's on the menu?"}, // same as input: no progress
		invokeTexts:    []string{"I don't have that information."},
	}
	f := newFixture(model, []state.Document{{Content: "unrelated"}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu?"))
	require.NoError(t, err)

	st := f.store.states["thread-1"]
	assert.Equal(t, 0, st.RewriteCount)
	assert.Equal(t, 1, model.rewriteCalls)
	require.Len(t, f.replier.replies, 1)
}

func TestProcessDirectRouteSkipsVerification(t *testing.T) {
	model := &scriptedModel{
		invokeTexts: []string{"Noted, I'll remember that!"},
	}
	f := newFixture(model, nil)

	err := f.controller.Process(context.Background(), menuTurn("I like spicy food"))
	require.NoError(t, err)

	st := f.store.states["thread-1"]
	assert.Equal(t, state.RouteDirect, st.Route)
	assert.True(t, st.SkipVerification)
	assert.Equal(t, 0, model.verifyCalls)
	assert.Equal(t, 0, model.gradeCalls)
	require.Len(t, f.replier.replies, 1)
}

func TestProcessMixedTurnRecordsPreference(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:  []string{"yes"},
		verifyAnswers: []string{"0.9"},
		invokeTexts:   []string{"We have a full spicy section on the menu."},
	}
	f := newFixture(model, []state.Document{{Content: "Menu: spicy basil chicken."}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu? I like spicy food."))
	require.NoError(t, err)

	st := f.store.states["thread-1"]
	assert.Equal(t, state.RouteRetrieval, st.Route)
	assert.Equal(t, "spicy food", f.profiles.preferences["food_preference"],
		"preference aside on a retrieval turn must still be recorded")
}

func TestProcessRegenerationBudget(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:  []string{"yes"},
		verifyAnswers: []string{"0.2"},
		invokeTexts:   []string{"First unsupported draft.", "Second unsupported draft."},
	}
	f := newFixture(model, []state.Document{{Content: "Menu: noodles."}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu?"))
	require.NoError(t, err)

	st := f.store.states["thread-1"]
	assert.Equal(t, 1, st.Regenerations)
	assert.Equal(t, 2, model.verifyCalls)

	require.Len(t, f.replier.replies, 1)
	reply := f.replier.replies[0]
	assert.Contains(t, reply, "Second unsupported draft.")
	assert.Contains(t, reply, constant.LowConfidenceDisclaimer)
}

func TestProcessGenerationFailureSendsFallback(t *testing.T) {
	model := &scriptedModel{
		gradeAnswers:  []string{"yes"},
		invokeErr:     fmt.Errorf("model unavailable"),
		verifyAnswers: []string{"0.9"},
	}
	f := newFixture(model, []state.Document{{Content: "Menu: rice."}})

	err := f.controller.Process(context.Background(), menuTurn("What's on the menu?"))
	require.Error(t, err)

	// Exactly one user-visible reply, even on failure.
	require.Len(t, f.replier.replies, 1)
	assert.Equal(t, constant.FallbackReply, f.replier.replies[0])

	// The failed turn is still checkpointed.
	assert.Equal(t, 1, f.store.saves)
}

func TestProcessExternalSearchRoute(t *testing.T) {
	model := &scriptedModel{
		verifyAnswers: []string{"0.9"},
		invokeTexts:   []string{"It's sunny, around 33 degrees."},
	}
	nop := logger.NewNopLogger()
	store := newMemStore()
	replier := &recordingReplier{}

	controller := NewController(Config{
		Checkpoints: store,
		Router:      router.New(nil),
		Retriever: retrieverFunc(func(_ context.Context, _ string, _ []string) ([]state.Document, error) {
			t.Fatal("retriever must not be called on the external route")
			return nil, nil
		}),
		Grader:    retrieval.NewGrader(model, nop),
		Rewriter:  retrieval.NewRewriter(model, nil, nop),
		Generator: generate.New(model, tools.NewRegistry(nop), &stubProfiles{}, nop),
		Verifier:  verify.New(model, 0.5, nop),
		Searcher: searcherFunc(func(_ context.Context, query string, _ int) ([]websearch.Result, error) {
			return []websearch.Result{{Title: "Weather", URL: "https://example.com", Content: "Sunny, 33C", Score: 0.9}}, nil
		}),
		Replier: replier,
		Bounds:  Bounds{MaxRewrites: 2, MaxSearchAttempts: 2, MaxRegenerations: 1},
		Logger:  nop,
	})

	err := controller.Process(context.Background(), menuTurn("What's the weather in Bangkok?"))
	require.NoError(t, err)

	st := store.states["thread-1"]
	assert.Equal(t, state.RouteExternalSearch, st.Route)
	assert.Equal(t, 1, st.SearchAttempts)
	require.Len(t, replier.replies, 1)
}

func TestProcessExternalSearchRespectsBound(t *testing.T) {
	model := &scriptedModel{
		invokeTexts: []string{"I couldn't find any information on that."},
	}
	nop := logger.NewNopLogger()
	store := newMemStore()
	replier := &recordingReplier{}

	controller := NewController(Config{
		Checkpoints: store,
		Router:      router.New(nil),
		Retriever: retrieverFunc(func(_ context.Context, _ string, _ []string) ([]state.Document, error) {
			return nil, nil
		}),
		Grader:    retrieval.NewGrader(model, nop),
		Rewriter:  retrieval.NewRewriter(model, nil, nop),
		Generator: generate.New(model, tools.NewRegistry(nop), &stubProfiles{}, nop),
		Verifier:  verify.New(model, 0.5, nop),
		Searcher: searcherFunc(func(_ context.Context, _ string, _ int) ([]websearch.Result, error) {
			t.Fatal("searcher must not be called when the attempt bound is zero")
			return nil, nil
		}),
		Replier: replier,
		Bounds:  Bounds{MaxRewrites: 2, MaxSearchAttempts: 0, MaxRegenerations: 1},
		Logger:  nop,
	})

	err := controller.Process(context.Background(), menuTurn("What's the weather in Bangkok?"))
	require.NoError(t, err)

	st := store.states["thread-1"]
	assert.Equal(t, state.RouteExternalSearch, st.Route)
	assert.Equal(t, 0, st.SearchAttempts, "attempt counter must not exceed its bound")
	require.Len(t, replier.replies, 1)
}

func TestProcessStatePersistsAcrossTurns(t *testing.T) {
	model := &scriptedModel{
		invokeTexts: []string{"Got it!"},
	}
	f := newFixture(model, nil)
	ctx := context.Background()

	require.NoError(t, f.controller.Process(ctx, menuTurn("I like spicy food")))

	second := menuTurn("I love iced tea")
	second.TurnID = "turn-2"
	require.NoError(t, f.controller.Process(ctx, second))

	st := f.store.states["thread-1"]
	assert.Len(t, st.Messages, 4, "history accumulates across checkpointed turns")
	assert.Equal(t, 0, st.RewriteCount, "per-turn counters reset")
}
