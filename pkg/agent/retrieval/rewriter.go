package retrieval

import (
	"context"
	"fmt"
	"strings"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/llm"
)

// Canonicalization maps colloquial phrasing and brand nicknames to the
// formal wording used in the knowledge base. Applied before any model call,
// in declaration order.
type Canonicalization struct {
	From string
	To   string
}

// DefaultCanonicalizations covers the substitutions observed in real guest
// queries. The slice is ordered: longer, more specific phrases first.
func DefaultCanonicalizations() []Canonicalization {
	return []Canonicalization{
		{From: "whats good here", To: "recommended menu items"},
		{From: "what's good here", To: "recommended menu items"},
		{From: "grub", To: "food menu"},
		{From: "till when", To: "closing hours"},
		{From: "how late", To: "closing hours"},
		{From: "open late", To: "closing hours"},
		{From: "cheap eats", To: "affordable menu items"},
		{From: "veggie", To: "vegetarian"},
		{From: "spot", To: "branch location"},
	}
}

// Rewriter reformulates a query when retrieval found nothing relevant. It
// first applies the lexical canonicalization table, then asks the model for
// a paraphrase. The result must differ materially from the input or the
// caller aborts the retry loop.
type Rewriter struct {
	provider llm.LLMProvider
	table    []Canonicalization
	log      logger.ILogger
}

func NewRewriter(provider llm.LLMProvider, table []Canonicalization, log logger.ILogger) *Rewriter {
	if table == nil {
		table = DefaultCanonicalizations()
	}
	return &Rewriter{
		provider: provider,
		table:    table,
		log:      log,
	}
}

// Canonicalize applies only the lexical substitution table. Exposed so it
// can run standalone when the model is unavailable.
func (r *Rewriter) Canonicalize(query string) string {
	result := query
	lower := strings.ToLower(result)
	for _, c := range r.table {
		for {
			idx := strings.Index(lower, c.From)
			if idx < 0 {
				break
			}
			result = result[:idx] + c.To + result[idx+len(c.From):]
			lower = strings.ToLower(result)
		}
	}
	return result
}

// Rewrite returns a materially different query string, or ErrNoProgress when
// neither canonicalization nor the paraphrase changed anything.
func (r *Rewriter) Rewrite(ctx context.Context, query string) (string, error) {
	canonical := r.Canonicalize(query)

	prompt := fmt.Sprintf(constant.QueryRewritePrompt, canonical)
	paraphrased, err := r.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		// Model failure falls back to the lexical result alone.
		r.log.Warn("rewriter", "paraphrase call failed, using canonical form", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		paraphrased = canonical
	} else {
		paraphrased = strings.TrimSpace(strings.Trim(strings.TrimSpace(paraphrased), `"`))
	}

	if paraphrased == "" || sameQuery(paraphrased, query) {
		return query, errs.ErrNoProgress
	}
	return paraphrased, nil
}

func sameQuery(a, b string) bool {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return norm(a) == norm(b)
}
