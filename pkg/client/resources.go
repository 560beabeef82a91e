package client

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/Sternrassler/pulse-api-client/pkg/pagination"
)

// Collection paths served by the Pulse API.
const (
	PathEvents = "/events"
	PathPeople = "/people"
)

// Event is one record of the events collection.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	PersonID   string         `json:"person_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Person is one record of the people collection.
type Person struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	Traits    map[string]any `json:"traits,omitempty"`
}

// PageFunc adapts the client into the pagination engine's fetch capability,
// decoding each record of a page into T. A record that fails to decode fails
// the whole page, so a malformed page never emits a partial prefix.
func PageFunc[T any](c *Client) pagination.FetchFunc[T] {
	return func(ctx context.Context, pageURL string) (pagination.Page[T], error) {
		raw, err := c.FetchPage(ctx, pageURL)
		if err != nil {
			return pagination.Page[T]{}, err
		}

		records := make([]T, 0, len(raw.Data))
		for _, data := range raw.Data {
			var record T
			if err := json.Unmarshal(data, &record); err != nil {
				pulseRequestErrorsTotal.WithLabelValues(reasonDecode).Inc()
				return pagination.Page[T]{}, &APIError{
					URL:     pageURL,
					Message: "decode record",
					Err:     err,
				}
			}
			records = append(records, record)
		}
		return pagination.Page[T]{Data: records, Next: raw.Next}, nil
	}
}

// Items traverses the collection at path under policy, decoding every record
// into T. The path is joined to the configured base URL for the first
// request; afterwards the server's cursor URLs are followed verbatim. The
// zero Policy falls back to ByPages with the client's default page count.
func Items[T any](ctx context.Context, c *Client, path string, policy pagination.Policy) iter.Seq2[T, error] {
	policy = policy.Or(pagination.ByPages(c.config.DefaultMaxPages))
	return pagination.Sequence(ctx, c.config.BaseURL+path, policy, PageFunc[T](c))
}

// Events traverses the events collection under policy.
func (c *Client) Events(ctx context.Context, policy pagination.Policy) iter.Seq2[Event, error] {
	return Items[Event](ctx, c, PathEvents, policy)
}

// People traverses the people collection under policy.
func (c *Client) People(ctx context.Context, policy pagination.Policy) iter.Seq2[Person, error] {
	return Items[Person](ctx, c, PathPeople, policy)
}
