package generate

import (
	"testing"
)

func TestExtractPreferences(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantKind  string
		wantValue string
	}{
		{
			name:      "like statement",
			text:      "What's on the menu? I like spicy food.",
			wantKind:  "food_preference",
			wantValue: "spicy food",
		},
		{
			name:      "love statement",
			text:      "I love iced coffee in the morning",
			wantKind:  "drink_preference",
			wantValue: "iced coffee in the morning",
		},
		{
			name:      "usual order",
			text:      "I usually order the chicken rice, is it available?",
			wantKind:  "food_preference",
			wantValue: "the chicken rice",
		},
		{
			name:      "favourite dish",
			text:      "my favourite dish is the tom yum",
			wantKind:  "food_preference",
			wantValue: "the tom yum",
		},
		{
			name:      "seating preference",
			text:      "I prefer a quiet table by the window",
			wantKind:  "seating_preference",
			wantValue: "a quiet table by the window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPreferences(tt.text)
			if len(got) == 0 {
				t.Fatalf("ExtractPreferences(%q) found nothing", tt.text)
			}
			if got[0].Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got[0].Kind, tt.wantKind)
			}
			if got[0].Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", got[0].Value, tt.wantValue)
			}
		})
	}
}

func TestExtractPreferencesNegatives(t *testing.T) {
	for _, text := range []string{
		"What's on the menu?",
		"Do you have parking?",
		"",
		"They like loud music here, right?",
	} {
		if got := ExtractPreferences(text); len(got) != 0 {
			t.Errorf("ExtractPreferences(%q) = %v, want none", text, got)
		}
	}
}

func TestExtractPreferencesDeduplicates(t *testing.T) {
	got := ExtractPreferences("I like spicy food. Really, I like Spicy Food!")
	if len(got) != 1 {
		t.Fatalf("got %d preferences, want 1: %v", len(got), got)
	}
}
