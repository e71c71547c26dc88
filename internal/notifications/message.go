package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message kinds carried through the notification pipeline
const (
	KindPromotionOffer      = "PROMOTION_OFFER"
	KindExpiryNotice        = "EXPIRY_NOTICE"
	KindConfirmationReceipt = "CONFIRMATION_RECEIPT"
)

// Message is the wire format for an outbound email, both on the Kafka
// topic and at the SMTP sender.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh ID and timestamp
func NewMessage(kind, recipient, subject, body string) *Message {
	return &Message{
		ID:        uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// ToJSON serializes the message for the Kafka topic
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON deserializes a message consumed from the Kafka topic
func MessageFromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification message: %w", err)
	}
	return &m, nil
}

// PartitionKey routes all mail for one recipient to the same partition,
// keeping delivery order stable per family.
func (m *Message) PartitionKey() string {
	return m.Recipient
}
