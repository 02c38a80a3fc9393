package models

import "time"

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
)

// Payment ties a booking to a payment-provider order. At most one
// payment per booking reaches captured.
type Payment struct {
	ID                ID            `json:"id" db:"id"`
	BookingID         ID            `json:"booking_id" db:"booking_id"`
	RazorpayOrderID   string        `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID string        `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`
	Amount            int64         `json:"amount" db:"amount"` // Integer rupees
	Currency          string        `json:"currency" db:"currency"`
	Status            PaymentStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}
