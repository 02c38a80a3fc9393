package services

import (
	"fmt"
	"log"
	"time"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/monitoring"
	"dandiya-ticketing-platform/internal/pricing"
	"dandiya-ticketing-platform/internal/repositories"
)

// PaymentStore interface for payment data operations
type PaymentStore interface {
	Create(bookingID models.ID, orderID string, amount int64, currency string) (*models.Payment, error)
	CaptureByOrder(bookingID models.ID, orderID, providerPaymentID string) (*models.Payment, error)
	InsertCaptured(bookingID models.ID, orderID, providerPaymentID string, amount int64, currency string) (*models.Payment, error)
	LatestByBooking(bookingID models.ID) (*models.Payment, error)
}

// BookingPaymentStore is the slice of booking operations the payment
// flow needs.
type BookingPaymentStore interface {
	GetByID(id models.ID) (*models.Booking, error)
	GetPricingInputs(id models.ID) (models.PassType, int, error)
	Confirm(id models.ID, amount int64, paymentID string) (*models.Booking, error)
	UpdatePaymentRef(id models.ID, paymentID string) error
}

// PaymentService drives a booking from pending to confirmed: it
// creates the provider order with a server-computed amount, verifies
// the checkout callback, captures the payment, confirms the booking,
// and then triggers issuance and notification. Side effects after
// confirmation never fail the confirmation response.
type PaymentService struct {
	payments      PaymentStore
	bookings      BookingPaymentStore
	razorpay      *RazorpayService
	tickets       *TicketService
	notifications *NotificationService
	fallback      *repositories.FallbackStore
	health        *HealthService
	currency      string
}

// NewPaymentService creates a new payment orchestrator
func NewPaymentService(
	payments PaymentStore,
	bookings BookingPaymentStore,
	razorpay *RazorpayService,
	tickets *TicketService,
	notifications *NotificationService,
	fallback *repositories.FallbackStore,
	health *HealthService,
	currency string,
) *PaymentService {
	if currency == "" {
		currency = "INR"
	}
	return &PaymentService{
		payments:      payments,
		bookings:      bookings,
		razorpay:      razorpay,
		tickets:       tickets,
		notifications: notifications,
		fallback:      fallback,
		health:        health,
		currency:      currency,
	}
}

// CreateOrderRequest carries the checkout inputs. Nothing but the
// booking id is accepted; the amount and pass type are always taken
// from the booking row so a tampered request cannot change the price.
type CreateOrderRequest struct {
	BookingID string `json:"booking_id"`
}

// OrderResponse is handed back to the checkout client
type OrderResponse struct {
	OrderID  string    `json:"order_id"`
	Amount   int64     `json:"amount"` // rupees
	Currency string    `json:"currency"`
	KeyID    string    `json:"key_id"`
	Booking  models.ID `json:"booking_id"`
}

// CreateOrder prices the booking and opens a provider order for it
func (s *PaymentService) CreateOrder(req *CreateOrderRequest) (*OrderResponse, error) {
	if req.BookingID == "" {
		return nil, &models.ValidationError{
			Fields:  []string{"booking_id"},
			Message: "The following fields are required: booking_id",
		}
	}
	bookingID, err := models.ParseID(req.BookingID)
	if err != nil {
		return nil, &models.ValidationError{
			Fields:  []string{"booking_id"},
			Message: fmt.Sprintf("booking_id must be numeric (got %q)", req.BookingID),
		}
	}

	amount, err := s.resolveAmount(bookingID)
	if err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("booking_%d", bookingID)
	order, err := s.razorpay.CreateOrder(amount, receipt, map[string]string{
		"booking_id": fmt.Sprintf("%d", bookingID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	monitoring.PaymentOrders.Inc()

	s.recordOrder(bookingID, order.ID, amount)

	return &OrderResponse{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: s.currency,
		KeyID:    s.razorpay.KeyID(),
		Booking:  bookingID,
	}, nil
}

// resolveAmount computes the authoritative charge for an order by
// re-running the booking's own stored pass type and quantity through
// the pricing engine. Client-supplied amounts or pass types are never
// consulted.
func (s *PaymentService) resolveAmount(bookingID models.ID) (int64, error) {
	if s.health.DatabaseAvailable() {
		pt, numTickets, err := s.bookings.GetPricingInputs(bookingID)
		if err == nil {
			return priceTotal(pt, numTickets)
		}
		if !repositories.IsConnectivityError(err) {
			return 0, err
		}
		s.health.MarkUnavailable()
	}

	booking, err := s.fallback.GetBooking(bookingID)
	if err != nil {
		return 0, err
	}
	return priceTotal(booking.PassType, booking.NumTickets)
}

func priceTotal(passType models.PassType, quantity int) (int64, error) {
	breakdown, err := pricing.Calculate(passType, quantity)
	if err != nil {
		return 0, models.ErrUnsupportedPassType
	}
	return breakdown.TotalAmount, nil
}

// recordOrder persists the created payment row; in degraded mode it
// lands in the fallback store instead.
func (s *PaymentService) recordOrder(bookingID models.ID, orderID string, amount int64) {
	if s.health.DatabaseAvailable() {
		_, err := s.payments.Create(bookingID, orderID, amount, s.currency)
		if err == nil {
			if err := s.bookings.UpdatePaymentRef(bookingID, orderID); err != nil {
				log.Printf("⚠️ Failed to stamp payment ref on booking %d: %v", bookingID, err)
			}
			return
		}
		if repositories.IsConnectivityError(err) {
			s.health.MarkUnavailable()
		}
		log.Printf("⚠️ Payment insert failed for booking %d, keeping in memory: %v", bookingID, err)
	}

	now := time.Now()
	s.fallback.StorePayment(&models.Payment{
		ID:              models.ID(now.UnixMilli()),
		BookingID:       bookingID,
		RazorpayOrderID: orderID,
		Amount:          amount,
		Currency:        s.currency,
		Status:          models.PaymentCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// ConfirmRequest carries the checkout callback fields
type ConfirmRequest struct {
	BookingID         string `json:"booking_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// ConfirmResponse reports the confirmed booking and what the side
// effects managed to do.
type ConfirmResponse struct {
	Booking       *models.Booking  `json:"booking"`
	Payment       *models.Payment  `json:"payment"`
	Tickets       []*models.QRCode `json:"tickets"`
	PDFURL        string           `json:"pdf_url,omitempty"`
	Notifications DispatchReport   `json:"notifications"`
}

// ErrSignatureMismatch rejects a confirmation whose callback signature
// does not verify against the API secret.
var ErrSignatureMismatch = fmt.Errorf("payment signature verification failed")

// ConfirmPayment verifies and captures a payment, confirms its
// booking, and fires ticket issuance and notifications.
func (s *PaymentService) ConfirmPayment(req *ConfirmRequest, users []*models.BookingUser) (*ConfirmResponse, error) {
	var missing []string
	if req.BookingID == "" {
		missing = append(missing, "booking_id")
	}
	if req.RazorpayOrderID == "" {
		missing = append(missing, "razorpay_order_id")
	}
	if req.RazorpayPaymentID == "" {
		missing = append(missing, "razorpay_payment_id")
	}
	if len(missing) > 0 {
		return nil, &models.ValidationError{
			Fields:  missing,
			Message: "The following fields are required: " + joinList(missing),
		}
	}

	bookingID, err := models.ParseID(req.BookingID)
	if err != nil {
		return nil, &models.ValidationError{
			Fields:  []string{"booking_id"},
			Message: fmt.Sprintf("booking_id must be numeric (got %q)", req.BookingID),
		}
	}

	if !s.razorpay.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		monitoring.PaymentConfirmations.WithLabelValues("signature_rejected").Inc()
		return nil, ErrSignatureMismatch
	}

	payment, booking, err := s.capture(bookingID, req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		monitoring.PaymentConfirmations.WithLabelValues("failed").Inc()
		return nil, err
	}
	monitoring.PaymentConfirmations.WithLabelValues("confirmed").Inc()

	resp := &ConfirmResponse{Booking: booking, Payment: payment}

	// Side effects from here on are best effort; the payment is
	// already captured and must be reported as such.
	issued, err := s.tickets.IssueTickets(booking, users)
	if err != nil {
		log.Printf("⚠️ Ticket issuance failed for booking %d: %v", booking.ID, err)
		return resp, nil
	}
	resp.Tickets = issued.Tickets
	resp.PDFURL = issued.PDFURL
	resp.Notifications = s.notifications.SendTicketNotifications(booking, users, issued)

	return resp, nil
}

// capture flips the payment to captured and the booking to confirmed,
// in the database when it is reachable and in the fallback store when
// not.
func (s *PaymentService) capture(bookingID models.ID, orderID, providerPaymentID string) (*models.Payment, *models.Booking, error) {
	if s.health.DatabaseAvailable() {
		payment, err := s.payments.CaptureByOrder(bookingID, orderID, providerPaymentID)
		if err == models.ErrPaymentNotFound {
			// The order row never made it to the database, most
			// likely created during an outage window. Record the
			// capture with an unknown amount rather than losing it,
			// and make the gap loud for reconciliation.
			log.Printf("🚨 Capturing payment %s for booking %d with no recorded order amount - needs reconciliation", providerPaymentID, bookingID)
			payment, err = s.payments.InsertCaptured(bookingID, orderID, providerPaymentID, 0, s.currency)
		}
		if err == nil {
			booking, cerr := s.bookings.Confirm(bookingID, payment.Amount, providerPaymentID)
			if cerr != nil {
				return nil, nil, fmt.Errorf("payment captured but booking confirmation failed: %w", cerr)
			}
			return payment, booking, nil
		}
		if !repositories.IsConnectivityError(err) {
			return nil, nil, err
		}
		s.health.MarkUnavailable()
		log.Printf("⚠️ Payment capture hit connectivity error, falling back: %v", err)
	}

	return s.captureFallback(bookingID, orderID, providerPaymentID)
}

func (s *PaymentService) captureFallback(bookingID models.ID, orderID, providerPaymentID string) (*models.Payment, *models.Booking, error) {
	payment, err := s.fallback.LatestPayment(bookingID)
	if err != nil {
		now := time.Now()
		payment = &models.Payment{
			ID:              models.ID(now.UnixMilli()),
			BookingID:       bookingID,
			RazorpayOrderID: orderID,
			Amount:          0,
			Currency:        s.currency,
			CreatedAt:       now,
		}
		log.Printf("🚨 Capturing payment %s for booking %d with no recorded order amount - needs reconciliation", providerPaymentID, bookingID)
	}
	payment.RazorpayPaymentID = providerPaymentID
	payment.Status = models.PaymentCaptured
	payment.UpdatedAt = time.Now()
	s.fallback.StorePayment(payment)

	if err := s.fallback.UpdateBookingStatus(bookingID, models.BookingConfirmed, payment.Amount); err != nil {
		// Confirmation can arrive for a booking created before the
		// outage; synthesize the shell so ticket issuance has
		// something to hang off.
		now := time.Now()
		s.fallback.StoreBooking(&models.Booking{
			ID:          bookingID,
			Status:      models.BookingConfirmed,
			NumTickets:  1,
			PassType:    models.PassFemale,
			FinalAmount: payment.Amount,
			BookingDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	booking, err := s.fallback.GetBooking(bookingID)
	if err != nil {
		return nil, nil, err
	}
	return payment, booking, nil
}

// ResendNotifications re-sends the ticket bundle for a booking that
// is already confirmed and paid.
func (s *PaymentService) ResendNotifications(booking *models.Booking, users []*models.BookingUser) (DispatchReport, error) {
	if booking.Status != models.BookingConfirmed {
		return DispatchReport{}, models.ErrBookingNotConfirmed
	}

	if err := s.requirePayment(booking); err != nil {
		return DispatchReport{}, err
	}

	tickets, err := s.tickets.TicketsForBooking(booking)
	if err != nil {
		return DispatchReport{}, err
	}
	if len(tickets) == 0 {
		return DispatchReport{}, models.ErrTicketNotFound
	}

	issued := &IssueResult{Tickets: tickets}
	primary := models.PrimaryUser(users)
	if pdfBytes, perr := s.tickets.pdf.GenerateTicketsPDF(booking, primary, tickets); perr == nil {
		issued.PDFBytes = pdfBytes
	} else {
		log.Printf("⚠️ Ticket PDF re-render failed for booking %d: %v", booking.ID, perr)
	}

	return s.notifications.SendTicketNotifications(booking, users, issued), nil
}

func (s *PaymentService) requirePayment(booking *models.Booking) error {
	if !booking.IsMock && s.health.DatabaseAvailable() {
		payment, err := s.payments.LatestByBooking(booking.ID)
		if err == nil {
			if payment.Status != models.PaymentCaptured {
				return models.ErrNoPaymentForBooking
			}
			return nil
		}
		if !repositories.IsConnectivityError(err) {
			return err
		}
		s.health.MarkUnavailable()
	}

	payment, err := s.fallback.LatestPayment(booking.ID)
	if err != nil {
		return err
	}
	if payment.Status != models.PaymentCaptured {
		return models.ErrNoPaymentForBooking
	}
	return nil
}

func joinList(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
