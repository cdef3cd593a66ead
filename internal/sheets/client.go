package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrDisabled = errors.New("spreadsheet forwarding is not configured")
	ErrRejected = errors.New("spreadsheet rejected the booking")
)

// Client posts payloads to the spreadsheet web app. An empty URL disables it.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send delivers one payload. Only a JSON body with success=true counts as
// delivered; the web app answers 200 even when its script fails.
func (c *Client) Send(ctx context.Context, p Payload) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("%w: unreadable response: %v", ErrRejected, err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrRejected, out.Message)
	}
	return nil
}
