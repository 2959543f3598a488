package utils

import (
	"regexp"
	"strings"
)

// Section is one heading-delimited slice of a knowledge document.
type Section struct {
	Id    string
	Title string
	Body  string
}

var headingPattern = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a heading into a stable section identifier.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// SplitSections carves a markdown document along its headings. Text before
// the first heading becomes an "intro" section so nothing is dropped.
func SplitSections(text string) []Section {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Id: "intro", Title: "", Body: strings.TrimSpace(text)}}
	}

	var sections []Section
	if intro := strings.TrimSpace(text[:matches[0][0]]); intro != "" {
		sections = append(sections, Section{Id: "intro", Title: "", Body: intro})
	}

	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}
		sections = append(sections, Section{
			Id:    Slugify(title),
			Title: title,
			Body:  body,
		})
	}

	return sections
}

// SplitText splits a long string into chunks of approximately chunkSize
// characters with an overlap to preserve context at boundaries. Character
// based; runes are used so multi-byte text never gets cut mid-codepoint.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
