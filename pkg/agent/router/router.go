package router

import (
	"strings"

	"chat-agent-be/pkg/agent/state"
)

// Rule pairs a predicate with the route it selects. Rules are evaluated in
// slice order; the first match wins.
type Rule struct {
	Name      string
	Predicate func(turn *state.Turn, st *state.ThreadState) bool
	Label     string
}

// Router classifies a finalized turn into exactly one route. It is a pure
// function of the turn content and the rule table: no I/O, no mutation.
type Router struct {
	rules []Rule
}

func New(rules []Rule) *Router {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Router{rules: rules}
}

// Route returns the label of the first matching rule, falling back to
// retrieval when nothing matches.
func (r *Router) Route(turn *state.Turn, st *state.ThreadState) string {
	for _, rule := range r.rules {
		if rule.Predicate(turn, st) {
			return rule.Label
		}
	}
	return state.RouteRetrieval
}

// Lexical cue classes, checked as lowercase substrings. ORDER MATTERS:
// attachment beats preference beats domain lookup beats external facts.
var (
	preferenceCues = []string{
		"i like", "i love", "i prefer", "i'd rather", "i usually",
		"i always", "i never", "my favorite", "my favourite",
		"i was born", "my birthday", "my phone", "call me",
		"i am allergic", "i'm allergic", "don't like", "i hate",
	}
	bookingCues = []string{
		"book a table", "make a reservation", "reserve a table",
		"i want to book", "i'd like to book", "i want to reserve",
		"cancel my booking", "my reservation",
	}
	domainCues = []string{
		"menu", "price", "how much", "cost", "open", "hour",
		"close", "branch", "location", "address", "where", "promo",
		"discount", "special", "dish", "food", "drink", "parking",
		"delivery", "wifi",
	}
	externalCues = []string{
		"weather", "news", "traffic", "exchange rate", "stock",
		"score", "match result", "holiday today", "what day is",
	}
)

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// DefaultRules builds the production rule table in fixed priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "document_attachment",
			Predicate: func(turn *state.Turn, _ *state.ThreadState) bool {
				return len(turn.ImageContexts) > 0
			},
			Label: state.RouteDocument,
		},
		{
			Name: "preference_statement",
			Predicate: func(turn *state.Turn, _ *state.ThreadState) bool {
				text := strings.ToLower(turn.Text)
				// A preference mixed with a domain question routes by the
				// dominant information-seeking signal.
				if containsAny(text, domainCues) && strings.Contains(text, "?") {
					return false
				}
				return containsAny(text, preferenceCues)
			},
			Label: state.RouteDirect,
		},
		{
			Name: "booking_intent",
			Predicate: func(turn *state.Turn, _ *state.ThreadState) bool {
				return containsAny(strings.ToLower(turn.Text), bookingCues)
			},
			Label: state.RouteDirect,
		},
		{
			Name: "domain_lookup",
			Predicate: func(turn *state.Turn, _ *state.ThreadState) bool {
				return containsAny(strings.ToLower(turn.Text), domainCues)
			},
			Label: state.RouteRetrieval,
		},
		{
			Name: "external_facts",
			Predicate: func(turn *state.Turn, _ *state.ThreadState) bool {
				return containsAny(strings.ToLower(turn.Text), externalCues)
			},
			Label: state.RouteExternalSearch,
		},
	}
}
