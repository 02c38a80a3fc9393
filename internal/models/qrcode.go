package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// QRCode is one issued ticket: an opaque ticket number, the encoded
// payload embedded in the scannable image, and single-use state.
type QRCode struct {
	ID           ID        `json:"id" db:"id"`
	BookingID    ID        `json:"booking_id" db:"booking_id"`
	UserID       ID        `json:"user_id,omitempty" db:"user_id"`
	TicketNumber string    `json:"ticket_number" db:"ticket_number"`
	QRData       string    `json:"qr_data" db:"qr_data"`
	QRCodeURL    string    `json:"qr_code_url" db:"qr_code_url"`
	ExpiryDate   time.Time `json:"expiry_date" db:"expiry_date"`
	IsUsed       bool      `json:"is_used" db:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty" db:"used_at"`
	UsedBy       string    `json:"used_by,omitempty" db:"used_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TicketPayload is the portable content encoded into a ticket's QR
// image, so scan-time verification does not strictly require a store
// lookup.
type TicketPayload struct {
	TicketNumber string `json:"ticketNumber"`
	BookingID    string `json:"bookingId"`
	PassType     string `json:"passType"`
	EventDate    string `json:"eventDate"`
}

// Encode serializes the payload to the JSON string embedded in the QR image.
func (p TicketPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket payload: %w", err)
	}
	return string(b), nil
}

// DecodeTicketPayload parses an encoded payload. Non-JSON input is
// treated as a bare ticket number, matching what older scanner builds
// send.
func DecodeTicketPayload(data string) TicketPayload {
	var p TicketPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil || p.TicketNumber == "" {
		return TicketPayload{TicketNumber: data}
	}
	return p
}
