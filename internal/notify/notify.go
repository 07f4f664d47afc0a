// Package notify sends out-of-band messages (confirmation codes) to users.
//
// Every sender is best-effort: callers log a failed Send and carry on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Message is a single plain-text email.
type Message struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Recipient string `json:"recipient"`
}

// Notifier delivers a message to its recipient.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the process log instead of mailing them.
type LogNotifier struct {
	From string
}

// Send implements Notifier.
func (n LogNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("mail from=%s to=%s subject=%q body=%q", n.From, msg.Recipient, msg.Subject, msg.Body)
	return nil
}

// Publisher puts an encoded message on a queue.
type Publisher interface {
	PublishMail(body []byte) error
}

// QueueNotifier hands messages to a queue; a consumer performs delivery.
type QueueNotifier struct {
	publisher Publisher
}

// NewQueueNotifier creates a QueueNotifier publishing through p.
func NewQueueNotifier(p Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: p}
}

// Send implements Notifier.
func (n *QueueNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail message: %w", err)
	}
	return n.publisher.PublishMail(body)
}

// DecodeMessage parses a queued message produced by QueueNotifier.
func DecodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode mail message: %w", err)
	}
	if msg.Recipient == "" {
		return Message{}, fmt.Errorf("mail message has no recipient")
	}
	return msg, nil
}

// Deliver decodes a queued message and sends it through n. It is the body
// of the mail queue consumer.
func Deliver(ctx context.Context, n Notifier, body []byte) error {
	msg, err := DecodeMessage(body)
	if err != nil {
		return err
	}
	return n.Send(ctx, msg)
}
