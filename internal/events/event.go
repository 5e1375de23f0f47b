// Package events defines the change notifications emitted by the token
// server and publishes them to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types. They double as AMQP routing keys.
const (
	TypeTokenCreated          = "token.created"
	TypeSubscriptionsReplaced = "subscriptions.replaced"
	TypeSnapshot              = "snapshot"
)

// Event is a change notification. Tokens are masked so that event consumers
// never see a usable credential.
type Event struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Token     string    `json:"token,omitempty"`
	Count     int       `json:"count"`
}

// New returns an event of the given type for token with a fresh id.
func New(typ, token string, count int) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Token:     MaskToken(token),
		Count:     count,
	}
}

// MaskToken keeps the first four characters of a token.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return token
	}
	return token[:4] + "..."
}

// Publisher delivers events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
