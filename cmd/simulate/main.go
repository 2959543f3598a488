package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"chat-agent-be/pkg/messenger"

	"github.com/fatih/color"
)

// simulate drives a running agent end to end: it posts Messenger-style
// webhook bursts at the ingress and runs a local Send API sink so replies
// land back in this terminal. Point the agent at the sink with
// MESSENGER_SEND_API_BASE=http://localhost:<sink-port> before starting it.

type burst struct {
	label    string
	messages []string
	// gap between messages inside the burst; keep it under the
	// inactivity window so the burst aggregates into one turn.
	gap time.Duration
}

var script = []burst{
	{
		label:    "menu question with a preference aside",
		messages: []string{"Hi!", "What's on the menu?", "I like spicy food by the way"},
		gap:      800 * time.Millisecond,
	},
	{
		label:    "profile detail",
		messages: []string{"I'm 34 and my number is +66 81 234 5678"},
	},
	{
		label:    "booking request",
		messages: []string{"Can I book a table for 4 tomorrow at 7pm at the riverside branch?"},
	},
	{
		label:    "external lookup",
		messages: []string{"What's the weather like in Bangkok right now?"},
	},
}

func main() {
	agentURL := flag.String("agent", "http://localhost:3000/api/webhook", "webhook endpoint of the running agent")
	sinkPort := flag.Int("sink-port", 9009, "local port for the Send API sink")
	userID := flag.String("user", "sim-user-1", "platform user id to impersonate")
	wait := flag.Duration("wait", 30*time.Second, "how long to wait for replies after each burst")
	flag.Parse()

	replies := make(chan string, 16)
	go runSendSink(*sinkPort, replies)

	color.Cyan("🚀 Conversation simulation against %s", *agentURL)
	color.Cyan("   Send API sink listening on :%d", *sinkPort)

	client := &http.Client{Timeout: 10 * time.Second}

	for _, b := range script {
		color.Yellow("\n[%s]", b.label)
		for _, text := range b.messages {
			fmt.Printf("USER: %s\n", text)
			if err := postWebhook(client, *agentURL, *userID, text); err != nil {
				color.Red("webhook post failed: %v", err)
				return
			}
			if b.gap > 0 {
				time.Sleep(b.gap)
			}
		}

		select {
		case reply := <-replies:
			color.Green("AGENT: %s", reply)
		case <-time.After(*wait):
			color.Red("no reply within %s", *wait)
		}
	}

	color.Cyan("\nDone.")
}

func postWebhook(client *http.Client, url, userID, text string) error {
	payload := messenger.WebhookPayload{
		Object: "page",
		Entry: []messenger.WebhookEntry{{
			ID:   "sim-page",
			Time: time.Now().UnixMilli(),
			Messaging: []messenger.MessagingEvent{{
				Sender:    messenger.Principal{ID: userID},
				Recipient: messenger.Principal{ID: "sim-page"},
				Timestamp: time.Now().UnixMilli(),
				Message: &messenger.ReceivedMessage{
					MID:  fmt.Sprintf("sim-%d", time.Now().UnixNano()),
					Text: text,
				},
			}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// runSendSink accepts Send API calls the agent makes and forwards the
// message text to the terminal.
func runSendSink(port int, replies chan<- string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/messages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			replies <- req.Message.Text
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message_id":"sim"}`))
	})

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), mux))
}
