package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/events"
	"chat-agent-be/pkg/llm"
)

// TopicTurnReady is the internal bus topic carrying assembled turns.
const TopicTurnReady = "turn.ready"

const imageInstruction = "Describe what this image shows in two or three sentences, focusing on any text, dishes, or documents visible. The description will be used to answer a restaurant guest's question."

// bufferEntry is one raw event waiting in an open window.
type bufferEntry struct {
	kind      string
	payload   string
	timestamp time.Time
}

// window is the per-(user, thread) debounce state. Guarded by the
// aggregator mutex; the timer fires at most one flush per window.
type window struct {
	userID   string
	threadID string
	entries  []bufferEntry
	timer    *time.Timer
}

// Aggregator buffers inbound events behind a per-thread debounce timer.
// Each new event resets the timer; on expiry the buffered events become one
// Turn. Image events are analyzed concurrently and joined before the Turn is
// published, so image context is always complete before generation.
type Aggregator struct {
	mu      sync.Mutex
	windows map[string]*window

	publisher    message.Publisher
	vision       llm.VisionProvider
	window       time.Duration
	imageTimeout time.Duration
	log          logger.ILogger
}

func New(
	publisher message.Publisher,
	vision llm.VisionProvider,
	inactivityWindow time.Duration,
	imageTimeout time.Duration,
	log logger.ILogger,
) *Aggregator {
	if inactivityWindow <= 0 {
		inactivityWindow = 5 * time.Second
	}
	if imageTimeout <= 0 {
		imageTimeout = 20 * time.Second
	}
	return &Aggregator{
		windows:      map[string]*window{},
		publisher:    publisher,
		vision:       vision,
		window:       inactivityWindow,
		imageTimeout: imageTimeout,
		log:          log,
	}
}

func windowKey(userID, threadID string) string {
	return userID + ":" + threadID
}

// Submit buffers one inbound event and (re)arms the debounce timer for its
// thread.
func (a *Aggregator) Submit(msg events.InboundMessage) {
	key := windowKey(msg.UserID, msg.ThreadID)

	a.mu.Lock()
	defer a.mu.Unlock()

	w, ok := a.windows[key]
	if !ok {
		w = &window{
			userID:   msg.UserID,
			threadID: msg.ThreadID,
		}
		a.windows[key] = w
	}

	w.entries = append(w.entries, bufferEntry{
		kind:      msg.Kind,
		payload:   msg.Payload,
		timestamp: msg.Timestamp,
	})

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(a.window, func() {
		a.flush(key)
	})
}

// Flush forces an immediate window close for a thread. Used by tests and
// shutdown.
func (a *Aggregator) Flush(userID, threadID string) {
	a.flush(windowKey(userID, threadID))
}

// flush consumes the window's buffer, runs the image sub-pipeline, and
// publishes exactly one Turn.
func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	w, ok := a.windows[key]
	if !ok || len(w.entries) == 0 {
		delete(a.windows, key)
		a.mu.Unlock()
		return
	}
	entries := w.entries
	userID, threadID := w.userID, w.threadID
	delete(a.windows, key)
	a.mu.Unlock()

	var texts []string
	var images []string
	for _, e := range entries {
		if e.kind == "image" {
			images = append(images, e.payload)
		} else {
			texts = append(texts, e.payload)
		}
	}

	imageContexts, degraded := a.analyzeImages(images)

	turn := &state.Turn{
		TurnID:        uuid.New().String(),
		ThreadID:      threadID,
		UserID:        userID,
		Text:          strings.Join(texts, "\n"),
		ImageContexts: imageContexts,
		Degraded:      degraded,
		ReceivedAt:    time.Now(),
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		a.log.Error("aggregator", "turn marshal failed", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return
	}

	if err := a.publisher.Publish(TopicTurnReady, message.NewMessage(turn.TurnID, payload)); err != nil {
		a.log.Error("aggregator", "turn publish failed", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return
	}

	a.log.Info("aggregator", "window flushed", map[string]interface{}{
		"thread_id": threadID,
		"events":    len(entries),
		"images":    len(images),
		"degraded":  degraded,
	})
}

// analyzeImages fans the image references out to the vision provider and
// joins all results before returning. A hard timeout bounds the whole batch;
// whatever finished in time is kept and the loss is reported as a soft
// degradation, never as a blocked turn.
func (a *Aggregator) analyzeImages(imageURLs []string) ([]string, bool) {
	if len(imageURLs) == 0 {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.imageTimeout)
	defer cancel()

	results := make([]string, len(imageURLs))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range imageURLs {
		i, url := i, url
		g.Go(func() error {
			desc, err := a.vision.Describe(gctx, url, imageInstruction)
			if err != nil {
				// Individual failure degrades to a missing context.
				a.log.Warn("aggregator", "image analysis failed", map[string]interface{}{
					"image": url,
					"error": err.Error(),
				})
				return nil
			}
			results[i] = desc
			return nil
		})
	}
	_ = g.Wait()

	degraded := false
	var contexts []string
	for i, desc := range results {
		if desc == "" {
			degraded = true
			contexts = append(contexts, fmt.Sprintf("(image %d could not be analyzed)", i+1))
			continue
		}
		contexts = append(contexts, desc)
	}
	return contexts, degraded
}

// Shutdown flushes every open window immediately.
func (a *Aggregator) Shutdown() {
	a.mu.Lock()
	keys := make([]string, 0, len(a.windows))
	for key, w := range a.windows {
		if w.timer != nil {
			w.timer.Stop()
		}
		keys = append(keys, key)
	}
	a.mu.Unlock()

	for _, key := range keys {
		a.flush(key)
	}
}
