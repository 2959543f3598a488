package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CreateRequest is the payload the reservation API expects.
type CreateRequest struct {
	BranchName  string `json:"branch_name"`
	GuestCount  int    `json:"guest_count"`
	BookingTime string `json:"booking_time"`
	Phone       string `json:"phone"`
	Name        string `json:"name,omitempty"`
	Note        string `json:"note,omitempty"`
}

// CreateResponse carries the external booking reference.
type CreateResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

// Client talks to the external reservation API. Authenticated with a static
// API key header.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/reservations", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("reservation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("reservation api error, code %d, body %s", resp.StatusCode, string(body))
	}

	var parsed CreateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
