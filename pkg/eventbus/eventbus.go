// Package eventbus defines the pattern-routed publish/subscribe primitive
// used to carry checkout events between services. Delivery is at-least-once:
// a subscriber may see the same envelope more than once, so every handler
// attached to a bus must be idempotent.
package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope is a routed message. Source and DetailType are the routing tags;
// Detail carries the JSON payload.
type Envelope struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
	Time       time.Time       `json:"time"`
}

// NewEnvelope marshals detail and wraps it with routing tags.
func NewEnvelope(source, detailType string, detail any) (Envelope, error) {
	data, err := json.Marshal(detail)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Source:     source,
		DetailType: detailType,
		Detail:     data,
		Time:       time.Now().UTC(),
	}, nil
}

// Publisher is the write side of a channel.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Handler processes one delivery. Returning an error signals the channel
// to redeliver; returning nil acknowledges the message.
type Handler func(ctx context.Context, env Envelope) error

// Pattern selects envelopes by routing tags. An empty field matches any
// value.
type Pattern struct {
	Source     string
	DetailType string
}

// Matches reports whether env's routing tags satisfy the pattern.
func (p Pattern) Matches(env Envelope) bool {
	if p.Source != "" && p.Source != env.Source {
		return false
	}
	if p.DetailType != "" && p.DetailType != env.DetailType {
		return false
	}
	return true
}
