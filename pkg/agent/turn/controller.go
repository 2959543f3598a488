package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-agent-be/internal/constant"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/agent/generate"
	"chat-agent-be/pkg/agent/retrieval"
	"chat-agent-be/pkg/agent/router"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/agent/verify"
	"chat-agent-be/pkg/checkpoint"
	"chat-agent-be/pkg/websearch"
)

// Phase names of the per-turn state machine, in execution order.
const (
	PhaseRouting        = "routing"
	PhaseRetrieving     = "retrieving"
	PhaseDirect         = "direct"
	PhaseExternalSearch = "external_search"
	PhaseGenerating     = "generating"
	PhaseVerifying      = "verifying"
	PhaseDone           = "done"
)

// Bounds caps every retry loop in the pipeline.
type Bounds struct {
	MaxRewrites       int
	MaxSearchAttempts int
	MaxRegenerations  int
}

// Replier delivers the single reply of a turn to the user.
type Replier interface {
	SendText(ctx context.Context, userID, text string) error
}

// Summarizer folds completed exchanges into the rolling conversation digest.
type Summarizer interface {
	Summarize(ctx context.Context, existing string, recent []state.Message) (string, error)
}

// Historian persists the completed exchange to durable message storage.
// May be nil.
type Historian interface {
	RecordExchange(ctx context.Context, threadID, userID, turnID, question, reply string) error
}

// Observer receives a notification after each completed turn. Used by the
// operations monitor; may be nil.
type Observer interface {
	TurnProcessed(threadID, userID, route, reply string, degraded bool, took time.Duration)
}

// Controller sequences one turn through routing, retrieval, generation, and
// verification, then persists thread state and emits exactly one reply.
type Controller struct {
	checkpoints checkpoint.Store
	router      *router.Router
	retriever   retrieval.Retriever
	grader      *retrieval.Grader
	rewriter    *retrieval.Rewriter
	generator   *generate.Generator
	verifier    *verify.Verifier
	searcher    websearch.Searcher
	replier     Replier
	summarizer  Summarizer
	historian   Historian
	observer    Observer
	bounds      Bounds

	summaryEvery int
	locks        *keyedMutex
	log          logger.ILogger
}

type Config struct {
	Checkpoints  checkpoint.Store
	Router       *router.Router
	Retriever    retrieval.Retriever
	Grader       *retrieval.Grader
	Rewriter     *retrieval.Rewriter
	Generator    *generate.Generator
	Verifier     *verify.Verifier
	Searcher     websearch.Searcher
	Replier      Replier
	Summarizer   Summarizer
	Historian    Historian
	Observer     Observer
	Bounds       Bounds
	SummaryEvery int
	Logger       logger.ILogger
}

func NewController(cfg Config) *Controller {
	if cfg.SummaryEvery <= 0 {
		cfg.SummaryEvery = 10
	}
	return &Controller{
		checkpoints:  cfg.Checkpoints,
		router:       cfg.Router,
		retriever:    cfg.Retriever,
		grader:       cfg.Grader,
		rewriter:     cfg.Rewriter,
		generator:    cfg.Generator,
		verifier:     cfg.Verifier,
		searcher:     cfg.Searcher,
		replier:      cfg.Replier,
		summarizer:   cfg.Summarizer,
		historian:    cfg.Historian,
		observer:     cfg.Observer,
		bounds:       cfg.Bounds,
		summaryEvery: cfg.SummaryEvery,
		locks:        newKeyedMutex(),
		log:          cfg.Logger,
	}
}

// Process runs one turn to completion. All stages for a thread are strictly
// sequential: a second turn for the same thread blocks until this one is
// done. Exactly one reply is sent, even on internal failure.
func (c *Controller) Process(ctx context.Context, turn *state.Turn) error {
	c.locks.Lock(turn.ThreadID)
	defer c.locks.Unlock(turn.ThreadID)

	started := time.Now()

	st, err := c.checkpoints.Load(ctx, turn.ThreadID)
	if err != nil {
		c.log.Error("turn", "checkpoint load failed, starting fresh", map[string]interface{}{
			"thread_id": turn.ThreadID,
			"error":     err.Error(),
		})
	}
	if st == nil {
		st = state.NewThreadState(turn.ThreadID, turn.UserID)
	}

	st.ResetTurn(turn.Text)
	st.ImageContexts = turn.ImageContexts
	st.Degraded = turn.Degraded

	reply, runErr := c.run(ctx, turn, st)
	if runErr != nil {
		// Counters already incremented stay as they are; the turn still
		// terminates with a defined user-visible response.
		c.log.Error("turn", "pipeline failed, sending fallback", map[string]interface{}{
			"thread_id": turn.ThreadID,
			"route":     st.Route,
			"error":     runErr.Error(),
		})
		reply = constant.FallbackReply
	}

	c.finish(ctx, turn, st, reply)

	if c.observer != nil {
		c.observer.TurnProcessed(turn.ThreadID, turn.UserID, st.Route, reply, st.Degraded, time.Since(started))
	}
	return runErr
}

// run walks the state machine up to the generated reply. It mutates st but
// performs no persistence and no delivery.
func (c *Controller) run(ctx context.Context, turn *state.Turn, st *state.ThreadState) (string, error) {
	st.Route = c.router.Route(turn, st)
	c.log.Info("turn", "turn routed", map[string]interface{}{
		"thread_id": turn.ThreadID,
		"route":     st.Route,
	})

	var grounding []state.Document

	switch st.Route {
	case state.RouteDirect, state.RouteDocument:
		st.SkipVerification = true

	case state.RouteExternalSearch:
		if st.SearchAttempts < c.bounds.MaxSearchAttempts {
			st.SearchAttempts++
			grounding = c.externalSearch(ctx, st.CurrentQuestion)
		}

	case state.RouteRetrieval:
		grounding = c.retrieveLoop(ctx, st)
	}

	return c.generateLoop(ctx, turn, st, grounding)
}

// retrieveLoop implements the bounded retrieve/grade/rewrite cycle. It
// returns the grounding documents for generation, which may be empty.
func (c *Controller) retrieveLoop(ctx context.Context, st *state.ThreadState) []state.Document {
	for {
		docs, err := c.retriever.Retrieve(ctx, st.CurrentQuestion, nil)
		if err != nil {
			c.log.Warn("turn", "retrieval call failed", map[string]interface{}{
				"thread_id": st.ThreadID,
				"error":     err.Error(),
			})
			docs = nil
		}

		relevant := c.grader.Filter(ctx, docs, st.CurrentQuestion)
		st.Documents = docs
		if len(relevant) > 0 {
			return relevant
		}

		exhausted := st.RewriteCount >= c.bounds.MaxRewrites
		if !exhausted {
			rewritten, err := c.rewriter.Rewrite(ctx, st.CurrentQuestion)
			if err != nil {
				if !errors.Is(err, errs.ErrNoProgress) {
					c.log.Warn("turn", "rewrite failed", map[string]interface{}{
						"thread_id": st.ThreadID,
						"error":     err.Error(),
					})
				}
				exhausted = true
			} else {
				st.CurrentQuestion = rewritten
				st.RewriteCount++
				continue
			}
		}

		if exhausted {
			if st.SearchAttempts < c.bounds.MaxSearchAttempts {
				st.SearchAttempts++
				return c.externalSearch(ctx, st.CurrentQuestion)
			}
			// RetrievalEmpty: recovered locally into an explicit
			// "no information" answer by the grounded generator.
			return nil
		}
	}
}

// externalSearch wraps web results as grounding documents. A search failure
// degrades to empty grounding.
func (c *Controller) externalSearch(ctx context.Context, query string) []state.Document {
	results, err := c.searcher.Search(ctx, query, 3)
	if err != nil {
		c.log.Warn("turn", "external search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	docs := make([]state.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, state.Document{
			Content:         r.Content,
			SourceNamespace: "web",
			Title:           r.Title,
			SectionID:       r.URL,
			Score:           r.Score,
			Relevant:        true,
		})
	}
	return docs
}

// generateLoop produces the draft answer and runs bounded groundedness
// verification. Retries replace the draft, never append to it.
func (c *Controller) generateLoop(ctx context.Context, turn *state.Turn, st *state.ThreadState, grounding []state.Document) (string, error) {
	for {
		var (
			draft string
			err   error
		)
		if st.SkipVerification {
			draft, err = c.generator.Direct(ctx, turn, st)
		} else {
			draft, err = c.generator.Grounded(ctx, turn, st, grounding)
		}
		if err != nil {
			return "", err
		}
		st.DraftAnswer = draft

		if st.SkipVerification || len(grounding) == 0 {
			break
		}

		score, err := c.verifier.Verify(ctx, draft, grounding)
		if err != nil {
			c.log.Warn("turn", "verification failed, accepting draft", map[string]interface{}{
				"thread_id": st.ThreadID,
				"error":     err.Error(),
			})
			break
		}
		st.GroundednessScore = score
		if c.verifier.Passes(score) {
			break
		}

		if st.Regenerations >= c.bounds.MaxRegenerations {
			// Budget exhausted: keep the last draft, lower the confidence.
			st.DraftAnswer = fmt.Sprintf("%s\n\n%s", draft, constant.LowConfidenceDisclaimer)
			break
		}
		st.Regenerations++
		c.log.Info("turn", "groundedness below threshold, regenerating", map[string]interface{}{
			"thread_id": st.ThreadID,
			"score":     score,
		})
	}

	// Mixed turns routed away from direct still record preference signals.
	if st.Route != state.RouteDirect {
		c.generator.RunPreferencePass(ctx, turn)
	}

	return st.DraftAnswer, nil
}

// finish is the Done state: append the exchange, refresh the summary when
// due, persist the checkpoint, and deliver the reply.
func (c *Controller) finish(ctx context.Context, turn *state.Turn, st *state.ThreadState, reply string) {
	st.AppendExchange(turn.Text, reply)

	if c.summarizer != nil && len(st.Messages) >= c.summaryEvery && len(st.Messages)%c.summaryEvery == 0 {
		recent := st.Messages
		if len(recent) > c.summaryEvery {
			recent = recent[len(recent)-c.summaryEvery:]
		}
		summary, err := c.summarizer.Summarize(ctx, st.ConversationSummary, recent)
		if err != nil {
			c.log.Warn("turn", "summary update failed", map[string]interface{}{
				"thread_id": st.ThreadID,
				"error":     err.Error(),
			})
		} else {
			st.ConversationSummary = summary
		}
	}

	if err := c.checkpoints.Save(ctx, st); err != nil {
		c.log.Error("turn", "checkpoint save failed", map[string]interface{}{
			"thread_id": st.ThreadID,
			"error":     err.Error(),
		})
	}

	if c.historian != nil {
		if err := c.historian.RecordExchange(ctx, st.ThreadID, turn.UserID, turn.TurnID, turn.Text, reply); err != nil {
			c.log.Warn("turn", "exchange not persisted to history", map[string]interface{}{
				"thread_id": st.ThreadID,
				"error":     err.Error(),
			})
		}
	}

	if err := c.replier.SendText(ctx, turn.UserID, reply); err != nil {
		c.log.Error("turn", "reply delivery failed", map[string]interface{}{
			"thread_id": st.ThreadID,
			"user_id":   turn.UserID,
			"error":     err.Error(),
		})
	}
}
