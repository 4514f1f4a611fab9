package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freerange/chatwidget/backend/internal/model/chat"
)

const askPath = "/ask"

// FallbackReply is returned when the backend answers with neither a reply
// text nor an image preview payload.
const FallbackReply = "I'm sorry, I couldn't process that request."

var (
	// ErrTimeout reports that the upstream missed the relay budget.
	ErrTimeout = errors.New("relay: upstream timed out")
	// ErrTransport covers every failure between us and a decoded body:
	// DNS, connection resets, malformed response payloads.
	ErrTransport = errors.New("relay: transport failure")
)

// UpstreamError reports a non-success HTTP status from the backend.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("relay: upstream returned status %d", e.Status)
}

// Client posts chat turns to the question-answering backend. Every send
// runs under the same timeout budget; the caller's context is honored on
// top of it.
type Client struct {
	baseURL string
	storeID int64
	timeout time.Duration
	http    *http.Client
}

// NewClient targets the backend at baseURL with the given store identity
// and per-request budget.
func NewClient(baseURL string, storeID int64, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		storeID: storeID,
		timeout: timeout,
		http:    &http.Client{},
	}
}

type askRequest struct {
	Question  string `json:"question"`
	OrderName string `json:"order_name"`
	SessionID string `json:"session_id"`
	StoreID   int64  `json:"store_id"`
	// Historical wire name; the widget sends the last eight entries.
	History []chat.Message `json:"last_five_messages"`
}

type askResponse struct {
	Response      string          `json:"response"`
	ImagesPreview json.RawMessage `json:"imagespreview_data"`
}

// Send runs one question through the backend and returns the reply text.
// Failures map to ErrTimeout, *UpstreamError or ErrTransport; nothing else
// escapes. An image preview payload comes back re-serialized inside a
// fenced json block so the content parser recognizes it.
func (c *Client) Send(ctx context.Context, question, sessionID string, history []chat.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if history == nil {
		history = []chat.Message{}
	}
	body, err := json.Marshal(askRequest{
		Question:  question,
		OrderName: "",
		SessionID: sessionID,
		StoreID:   c.storeID,
		History:   history,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+askPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", sessionID)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Status: resp.StatusCode}
	}

	var payload askResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if len(payload.ImagesPreview) > 0 && string(payload.ImagesPreview) != "null" {
		wrapped, err := json.Marshal(map[string]json.RawMessage{
			"imagespreview_data": payload.ImagesPreview,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return "```json\n" + string(wrapped) + "\n```", nil
	}

	if payload.Response == "" {
		return FallbackReply, nil
	}
	return payload.Response, nil
}
