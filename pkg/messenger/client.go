package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client sends replies through the Messenger Send API.
type Client struct {
	baseURL   string
	pageToken string
	client    *http.Client
}

func NewClient(baseURL, pageToken string) *Client {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}
	return &Client{
		baseURL:   baseURL,
		pageToken: pageToken,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	Recipient Principal   `json:"recipient"`
	Message   sendMessage `json:"message"`
}

type sendMessage struct {
	Text string `json:"text"`
}

// SendText delivers one text message to a user.
func (c *Client) SendText(ctx context.Context, userID, text string) error {
	reqBody := sendRequest{
		Recipient: Principal{ID: userID},
		Message:   sendMessage{Text: text},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, c.pageToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send api error, code %d, body %s", resp.StatusCode, string(body))
	}
	return nil
}
