package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSMSSender posts messages to an SMS gateway's REST endpoint.
type HTTPSMSSender struct {
	baseURL    string
	from       string
	httpClient *http.Client
}

func NewHTTPSMSSender(baseURL, from string, timeout time.Duration) *HTTPSMSSender {
	return &HTTPSMSSender{
		baseURL:    baseURL,
		from:       from,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPSMSSender) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"from": c.from,
		"to":   to,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
