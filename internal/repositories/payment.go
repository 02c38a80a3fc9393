package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dandiya-ticketing-platform/internal/models"
)

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, razorpay_order_id, COALESCE(razorpay_payment_id, ''),
	amount, currency, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.RazorpayOrderID,
		&p.RazorpayPaymentID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a payment row in created status tied to a provider order
func (r *PaymentRepository) Create(bookingID models.ID, orderID string, amount int64, currency string) (*models.Payment, error) {
	query := `
		INSERT INTO payments (booking_id, razorpay_order_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.db.QueryRow(query, bookingID, orderID, amount, currency, models.PaymentCreated, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment for booking %d: %w", bookingID, err)
	}

	return payment, nil
}

// CaptureByOrder atomically transitions the (booking, order) payment to
// captured and records the provider payment id. Returns
// models.ErrPaymentNotFound when no created row matches.
func (r *PaymentRepository) CaptureByOrder(bookingID models.ID, orderID, providerPaymentID string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET razorpay_payment_id = $1, status = $2, updated_at = $3
		WHERE booking_id = $4 AND razorpay_order_id = $5
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.db.QueryRow(query, providerPaymentID, models.PaymentCaptured, time.Now(), bookingID, orderID))
	if err == sql.ErrNoRows {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to capture payment for booking %d: %w", bookingID, err)
	}

	return payment, nil
}

// InsertCaptured inserts an already-captured payment row. Used by the
// confirm fallback when the order was minted before store connectivity
// existed; the unique (booking_id, razorpay_order_id) index rejects
// duplicate confirmations.
func (r *PaymentRepository) InsertCaptured(bookingID models.ID, orderID, providerPaymentID string, amount int64, currency string) (*models.Payment, error) {
	query := `
		INSERT INTO payments (booking_id, razorpay_order_id, razorpay_payment_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.db.QueryRow(query, bookingID, orderID, providerPaymentID, amount, currency, models.PaymentCaptured, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to insert captured payment for booking %d: %w", bookingID, err)
	}

	return payment, nil
}

// LatestByBooking returns the newest payment for a booking
func (r *PaymentRepository) LatestByBooking(bookingID models.ID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := scanPayment(r.db.QueryRow(query, bookingID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNoPaymentForBooking
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest payment for booking %d: %w", bookingID, err)
	}

	return payment, nil
}

