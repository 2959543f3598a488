package router

import (
	"testing"

	"chat-agent-be/pkg/agent/state"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		images    []string
		wantRoute string
	}{
		{
			name:      "plain domain question",
			text:      "What's on the menu today?",
			wantRoute: state.RouteRetrieval,
		},
		{
			name:      "preference statement",
			text:      "I like spicy food",
			wantRoute: state.RouteDirect,
		},
		{
			name:      "preference mixed with domain question routes to retrieval",
			text:      "What's on the menu? I like spicy food.",
			wantRoute: state.RouteRetrieval,
		},
		{
			name:      "booking request",
			text:      "Can I book a table for 4 tomorrow at 7pm?",
			wantRoute: state.RouteDirect,
		},
		{
			name:      "booking beats domain cue",
			text:      "I want to book a table at the riverside branch",
			wantRoute: state.RouteDirect,
		},
		{
			name:      "external question",
			text:      "What's the weather in Bangkok?",
			wantRoute: state.RouteExternalSearch,
		},
		{
			name:      "image attachment wins over everything",
			text:      "I like spicy food, what's this?",
			images:    []string{"a photo of a menu page"},
			wantRoute: state.RouteDocument,
		},
		{
			name:      "no cue falls back to retrieval",
			text:      "Tell me something interesting",
			wantRoute: state.RouteRetrieval,
		},
		{
			name:      "phone number statement",
			text:      "My phone is +66 81 234 5678",
			wantRoute: state.RouteDirect,
		},
		{
			name:      "opening hours question",
			text:      "Until what hour are you open on Sunday?",
			wantRoute: state.RouteRetrieval,
		},
	}

	r := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := &state.Turn{Text: tt.text, ImageContexts: tt.images}
			st := state.NewThreadState("t1", "u1")

			got := r.Route(turn, st)
			if got != tt.wantRoute {
				t.Errorf("Route = %q, want %q", got, tt.wantRoute)
			}
		})
	}
}

func TestRouteIsPure(t *testing.T) {
	r := New(nil)
	turn := &state.Turn{Text: "what's the price of the set menu?"}
	st := state.NewThreadState("t1", "u1")

	first := r.Route(turn, st)
	for i := 0; i < 5; i++ {
		if got := r.Route(turn, st); got != first {
			t.Fatalf("Route not deterministic: %q then %q", first, got)
		}
	}
	if st.Route != "" {
		t.Errorf("Route mutated thread state: %q", st.Route)
	}
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	called := []string{}
	rules := []Rule{
		{
			Name: "first",
			Predicate: func(*state.Turn, *state.ThreadState) bool {
				called = append(called, "first")
				return true
			},
			Label: state.RouteDirect,
		},
		{
			Name: "second",
			Predicate: func(*state.Turn, *state.ThreadState) bool {
				called = append(called, "second")
				return true
			},
			Label: state.RouteExternalSearch,
		},
	}

	r := New(rules)
	got := r.Route(&state.Turn{Text: "anything"}, state.NewThreadState("t1", "u1"))

	if got != state.RouteDirect {
		t.Errorf("Route = %q, want %q", got, state.RouteDirect)
	}
	if len(called) != 1 {
		t.Errorf("evaluated %d rules after a match, want 1", len(called))
	}
}
