package generate

import (
	"regexp"
	"strings"
)

// ExtractedPreference is one lexical preference signal found in turn text.
type ExtractedPreference struct {
	Kind  string
	Value string
}

var preferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi (?:really )?(?:like|love|prefer|enjoy)\s+([^.,!?\n]+)`),
	regexp.MustCompile(`(?i)\bi (?:usually|always)\s+(?:order|get|have|choose)\s+([^.,!?\n]+)`),
	regexp.MustCompile(`(?i)\bmy favou?rite (?:dish|food|drink|spot|branch)?\s*(?:is|would be)\s+([^.,!?\n]+)`),
}

// ExtractPreferences runs the lightweight lexical pass that catches
// preference statements embedded in turns routed away from the direct
// branch (e.g. "What's on the menu? I like spicy food."). It never calls a
// model.
func ExtractPreferences(text string) []ExtractedPreference {
	var out []ExtractedPreference
	seen := map[string]bool{}

	for _, pattern := range preferencePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(match[1])
			if value == "" || len(value) > 80 {
				continue
			}
			key := strings.ToLower(value)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ExtractedPreference{
				Kind:  classifyPreference(key),
				Value: value,
			})
		}
	}
	return out
}

func classifyPreference(value string) string {
	switch {
	case strings.Contains(value, "seat") || strings.Contains(value, "table") ||
		strings.Contains(value, "quiet") || strings.Contains(value, "outdoor") ||
		strings.Contains(value, "window"):
		return "seating_preference"
	case strings.Contains(value, "drink") || strings.Contains(value, "coffee") ||
		strings.Contains(value, "tea") || strings.Contains(value, "juice"):
		return "drink_preference"
	case strings.Contains(value, "spicy") || strings.Contains(value, "food") ||
		strings.Contains(value, "dish") || strings.Contains(value, "menu") ||
		strings.Contains(value, "vegetarian") || strings.Contains(value, "vegan"):
		return "food_preference"
	default:
		return "general_preference"
	}
}
