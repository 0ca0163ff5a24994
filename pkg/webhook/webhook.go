package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrEventTopicNotAllowed = errors.New("event topic not allowed")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
)

// HTTPClient represents an interface for the Webhook to send events with.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// EventLog is the body that will be sent to the Webhook.URL
type EventLog struct {
	Topics     []string  `json:"topics"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Webhook sends an EventLog via POST request to a specified URL
// if one of the event's topics is allowed.
type Webhook struct {
	ID            string
	HTTPClient    HTTPClient
	URL           string
	AllowedTopics []string
}

func (webhook Webhook) allowsEvent(e EventLog) bool {
	for _, at := range webhook.AllowedTopics {
		for _, et := range e.Topics {
			if at == et {
				return true
			}
		}
	}
	return false
}

// DispatchEvent marshals the given EventLog into JSON
// and sends it in a POST request to the Webhook.URL.
func (webhook Webhook) DispatchEvent(ctx context.Context, e EventLog) error {
	if !webhook.allowsEvent(e) {
		return ErrEventTopicNotAllowed
	}

	bb, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(bb))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := webhook.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	// The body has to be drained and closed for the connection to be reused.
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}

	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	return nil
}
