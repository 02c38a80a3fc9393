package models

import "time"

// ScanResult is the outcome of a scan attempt
type ScanResult string

const (
	ScanAccepted ScanResult = "accepted"
	ScanRejected ScanResult = "rejected"
)

// QRScan is the audit row for a ticket's scan history. One row per
// ticket number; repeat scans bump the attempt counter instead of being
// dropped, so rejected scans stay visible to the admin surface.
type QRScan struct {
	ID            ID         `json:"id" db:"id"`
	BookingID     ID         `json:"booking_id" db:"booking_id"`
	TicketNumber  string     `json:"ticket_number" db:"ticket_number"`
	UsedAt        time.Time  `json:"used_at" db:"used_at"`
	Attempts      int        `json:"attempts" db:"attempts"`
	LastResult    ScanResult `json:"last_result" db:"last_result"`
	LastAttemptAt time.Time  `json:"last_attempt_at" db:"last_attempt_at"`
}
