package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/events"
)

type stubVision struct {
	descriptions map[string]string
	delay        time.Duration
}

func (v *stubVision) Describe(ctx context.Context, imageURL string, _ string) (string, error) {
	if v.delay > 0 {
		select {
		case <-time.After(v.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	desc, ok := v.descriptions[imageURL]
	if !ok {
		return "", errors.New("vision failed")
	}
	return desc, nil
}

func textMessage(userID, threadID, text string) events.InboundMessage {
	return events.InboundMessage{
		UserID:    userID,
		ThreadID:  threadID,
		Kind:      "text",
		Payload:   text,
		Timestamp: time.Now(),
	}
}

func imageMessage(userID, threadID, url string) events.InboundMessage {
	return events.InboundMessage{
		UserID:    userID,
		ThreadID:  threadID,
		Kind:      "image",
		Payload:   url,
		Timestamp: time.Now(),
	}
}

func subscribeTurns(t *testing.T, pubSub *gochannel.GoChannel) <-chan *message.Message {
	t.Helper()
	msgs, err := pubSub.Subscribe(context.Background(), TopicTurnReady)
	require.NoError(t, err)
	return msgs
}

func receiveTurn(t *testing.T, msgs <-chan *message.Message) *state.Turn {
	t.Helper()
	select {
	case msg := <-msgs:
		msg.Ack()
		var turn state.Turn
		require.NoError(t, json.Unmarshal(msg.Payload, &turn))
		return &turn
	case <-time.After(3 * time.Second):
		t.Fatal("no turn published")
		return nil
	}
}

func TestFlushJoinsBufferedText(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	agg := New(pubSub, &stubVision{}, time.Hour, time.Second, logger.NewNopLogger())
	agg.Submit(textMessage("u1", "t1", "Hi!"))
	agg.Submit(textMessage("u1", "t1", "What's on the menu?"))
	agg.Submit(textMessage("u1", "t1", "I like spicy food"))
	agg.Flush("u1", "t1")

	turn := receiveTurn(t, msgs)
	assert.Equal(t, "u1", turn.UserID)
	assert.Equal(t, "t1", turn.ThreadID)
	assert.Equal(t, "Hi!\nWhat's on the menu?\nI like spicy food", turn.Text)
	assert.False(t, turn.Degraded)
	assert.NotEmpty(t, turn.TurnID)
}

func TestDebounceTimerFlushes(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	agg := New(pubSub, &stubVision{}, 50*time.Millisecond, time.Second, logger.NewNopLogger())
	agg.Submit(textMessage("u1", "t1", "first"))
	// A second message inside the window resets the timer.
	time.Sleep(20 * time.Millisecond)
	agg.Submit(textMessage("u1", "t1", "second"))

	turn := receiveTurn(t, msgs)
	assert.Equal(t, "first\nsecond", turn.Text)
}

func TestThreadsAggregateIndependently(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	agg := New(pubSub, &stubVision{}, time.Hour, time.Second, logger.NewNopLogger())
	agg.Submit(textMessage("u1", "t1", "thread one text"))
	agg.Submit(textMessage("u2", "t2", "thread two text"))

	agg.Flush("u2", "t2")
	turn := receiveTurn(t, msgs)
	assert.Equal(t, "t2", turn.ThreadID)
	assert.Equal(t, "thread two text", turn.Text)

	agg.Flush("u1", "t1")
	turn = receiveTurn(t, msgs)
	assert.Equal(t, "t1", turn.ThreadID)
}

func TestImageAnalysisCompletesBeforePublish(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	vision := &stubVision{
		descriptions: map[string]string{
			"http://img/1": "a photo of the lunch menu",
			"http://img/2": "a photo of the dining room",
		},
		delay: 30 * time.Millisecond,
	}
	agg := New(pubSub, vision, time.Hour, time.Second, logger.NewNopLogger())
	agg.Submit(textMessage("u1", "t1", "what are these?"))
	agg.Submit(imageMessage("u1", "t1", "http://img/1"))
	agg.Submit(imageMessage("u1", "t1", "http://img/2"))
	agg.Flush("u1", "t1")

	turn := receiveTurn(t, msgs)
	require.Len(t, turn.ImageContexts, 2)
	assert.Equal(t, "a photo of the lunch menu", turn.ImageContexts[0])
	assert.Equal(t, "a photo of the dining room", turn.ImageContexts[1])
	assert.False(t, turn.Degraded)
}

func TestImageFailureDegradesTurn(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	vision := &stubVision{
		descriptions: map[string]string{
			"http://img/ok": "a menu page",
		},
	}
	agg := New(pubSub, vision, time.Hour, time.Second, logger.NewNopLogger())
	agg.Submit(imageMessage("u1", "t1", "http://img/ok"))
	agg.Submit(imageMessage("u1", "t1", "http://img/broken"))
	agg.Flush("u1", "t1")

	turn := receiveTurn(t, msgs)
	require.Len(t, turn.ImageContexts, 2)
	assert.Equal(t, "a menu page", turn.ImageContexts[0])
	assert.Contains(t, turn.ImageContexts[1], "could not be analyzed")
	assert.True(t, turn.Degraded)
}

func TestImageTimeoutDegradesTurn(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	vision := &stubVision{
		descriptions: map[string]string{"http://img/slow": "never seen"},
		delay:        time.Second,
	}
	agg := New(pubSub, vision, time.Hour, 30*time.Millisecond, logger.NewNopLogger())
	agg.Submit(textMessage("u1", "t1", "check this"))
	agg.Submit(imageMessage("u1", "t1", "http://img/slow"))
	agg.Flush("u1", "t1")

	turn := receiveTurn(t, msgs)
	assert.True(t, turn.Degraded)
	require.Len(t, turn.ImageContexts, 1)
	assert.True(t, strings.Contains(turn.ImageContexts[0], "could not be analyzed"))
}

func TestFlushOnEmptyWindowIsNoop(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	msgs := subscribeTurns(t, pubSub)

	agg := New(pubSub, &stubVision{}, time.Hour, time.Second, logger.NewNopLogger())
	agg.Flush("u1", "t1")

	select {
	case msg := <-msgs:
		t.Fatalf("unexpected turn published: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}
