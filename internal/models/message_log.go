package models

import "time"

// MessageChannel identifies the delivery channel of a notification
type MessageChannel string

const (
	ChannelEmail    MessageChannel = "email"
	ChannelWhatsApp MessageChannel = "whatsapp"
)

// MessageStatus is the outcome of one delivery attempt
type MessageStatus string

const (
	MessageSent   MessageStatus = "sent"
	MessageFailed MessageStatus = "failed"
)

// MessageLog is one append-only audit row per notification attempt.
// Rows are never mutated after insertion.
type MessageLog struct {
	ID           ID             `json:"id" db:"id"`
	BookingID    ID             `json:"booking_id" db:"booking_id"`
	UserID       ID             `json:"user_id,omitempty" db:"user_id"`
	Channel      MessageChannel `json:"message_type" db:"message_type"`
	Provider     string         `json:"provider" db:"provider"`
	Status       MessageStatus  `json:"status" db:"status"`
	CostAmount   float64        `json:"cost_amount" db:"cost_amount"`
	ErrorMessage string         `json:"error_message,omitempty" db:"error_message"`
	SentAt       time.Time      `json:"sent_at" db:"sent_at"`
}
