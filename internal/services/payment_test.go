package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/config"
	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/repositories"
)

type mockPaymentStore struct {
	created  []*models.Payment
	captured []*models.Payment
	orderAmt map[string]int64
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{orderAmt: make(map[string]int64)}
}

func (m *mockPaymentStore) Create(bookingID models.ID, orderID string, amount int64, currency string) (*models.Payment, error) {
	p := &models.Payment{
		ID:              models.ID(len(m.created) + 1),
		BookingID:       bookingID,
		RazorpayOrderID: orderID,
		Amount:          amount,
		Currency:        currency,
		Status:          models.PaymentCreated,
	}
	m.created = append(m.created, p)
	m.orderAmt[orderID] = amount
	return p, nil
}

func (m *mockPaymentStore) CaptureByOrder(bookingID models.ID, orderID, providerPaymentID string) (*models.Payment, error) {
	amount, ok := m.orderAmt[orderID]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	p := &models.Payment{
		BookingID:         bookingID,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: providerPaymentID,
		Amount:            amount,
		Status:            models.PaymentCaptured,
	}
	m.captured = append(m.captured, p)
	return p, nil
}

func (m *mockPaymentStore) InsertCaptured(bookingID models.ID, orderID, providerPaymentID string, amount int64, currency string) (*models.Payment, error) {
	p := &models.Payment{
		BookingID:         bookingID,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: providerPaymentID,
		Amount:            amount,
		Currency:          currency,
		Status:            models.PaymentCaptured,
	}
	m.captured = append(m.captured, p)
	return p, nil
}

func (m *mockPaymentStore) LatestByBooking(bookingID models.ID) (*models.Payment, error) {
	for i := len(m.captured) - 1; i >= 0; i-- {
		if m.captured[i].BookingID == bookingID {
			return m.captured[i], nil
		}
	}
	for i := len(m.created) - 1; i >= 0; i-- {
		if m.created[i].BookingID == bookingID {
			return m.created[i], nil
		}
	}
	return nil, models.ErrNoPaymentForBooking
}

type mockBookingPaymentStore struct {
	passType   models.PassType
	numTickets int
	confirmed  *models.Booking
	missing    bool
}

func (m *mockBookingPaymentStore) GetByID(id models.ID) (*models.Booking, error) {
	if m.missing {
		return nil, models.ErrBookingNotFound
	}
	return &models.Booking{ID: id, PassType: m.passType, NumTickets: m.numTickets, Status: models.BookingPending}, nil
}

func (m *mockBookingPaymentStore) GetPricingInputs(id models.ID) (models.PassType, int, error) {
	if m.missing {
		return "", 0, models.ErrBookingNotFound
	}
	return m.passType, m.numTickets, nil
}

func (m *mockBookingPaymentStore) Confirm(id models.ID, amount int64, paymentID string) (*models.Booking, error) {
	m.confirmed = &models.Booking{
		ID:          id,
		PassType:    m.passType,
		NumTickets:  m.numTickets,
		Status:      models.BookingConfirmed,
		FinalAmount: amount,
		PaymentID:   paymentID,
		BookingDate: time.Now(),
	}
	return m.confirmed, nil
}

func (m *mockBookingPaymentStore) UpdatePaymentRef(id models.ID, paymentID string) error {
	return nil
}

func newPaymentService(t *testing.T, payments PaymentStore, bookings BookingPaymentStore, fallback *repositories.FallbackStore, health *HealthService) *PaymentService {
	t.Helper()
	razorpay := NewRazorpayService(config.RazorpayConfig{}) // mock mode
	tickets := newTicketService(t, &mockQRStore{}, newMemoryStorage(), fallback, health)
	email, whatsapp := mockChannelServices()
	notifications := NewNotificationService(email, whatsapp, &mockMessageLogStore{}, health)
	return NewPaymentService(payments, bookings, razorpay, tickets, notifications, fallback, health, "INR")
}

func TestPaymentServiceCreateOrderRepricesFromBooking(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: models.PassCouple, numTickets: 2}
	svc := newPaymentService(t, payments, bookings, repositories.NewFallbackStore(), healthyHealth(t))

	resp, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "11"})
	require.NoError(t, err)
	assert.Equal(t, int64(1398), resp.Amount, "amount comes from server-side pricing, never the client")
	assert.Equal(t, "INR", resp.Currency)
	assert.NotEmpty(t, resp.OrderID)
	require.Len(t, payments.created, 1)
	assert.Equal(t, int64(1398), payments.created[0].Amount)
}

func TestPaymentServiceCreateOrderIgnoresTamperedAmounts(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: models.PassCouple, numTickets: 6}
	svc := newPaymentService(t, payments, bookings, repositories.NewFallbackStore(), healthyHealth(t))

	// Bulk pricing from the stored booking row: 6 couple passes land on the
	// flat 300/pass rate. A checkout request carries only the booking id, so
	// there is nothing for a tampered client to reprice with.
	resp, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "12"})
	require.NoError(t, err)
	assert.Equal(t, int64(1800), resp.Amount)
	require.Len(t, payments.created, 1)
	assert.Equal(t, int64(1800), payments.created[0].Amount)
}

func TestPaymentServiceCreateOrderRejectsUnknownStoredPassType(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: "vip", numTickets: 1}
	svc := newPaymentService(t, payments, bookings, repositories.NewFallbackStore(), healthyHealth(t))

	_, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "13"})
	assert.ErrorIs(t, err, models.ErrUnsupportedPassType)
	assert.Empty(t, payments.created)
}

func TestPaymentServiceConfirmHappyPath(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: models.PassFemale, numTickets: 1}
	svc := newPaymentService(t, payments, bookings, repositories.NewFallbackStore(), healthyHealth(t))

	order, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "21"})
	require.NoError(t, err)

	users := []*models.BookingUser{
		{ID: 1, BookingID: 21, Name: "Asha", Email: "asha@example.com", Phone: "9876543210", IsPrimary: true},
	}
	resp, err := svc.ConfirmPayment(&ConfirmRequest{
		BookingID:         "21",
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_1",
	}, users)
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, resp.Booking.Status)
	assert.Equal(t, int64(399), resp.Booking.FinalAmount)
	assert.Equal(t, models.PaymentCaptured, resp.Payment.Status)
	require.Len(t, resp.Tickets, 1)
	assert.True(t, resp.Notifications.EmailSent)
	assert.True(t, resp.Notifications.WhatsAppSent)
}

func TestPaymentServiceConfirmUnknownOrderCapturesZeroAmount(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: models.PassMale, numTickets: 1}
	svc := newPaymentService(t, payments, bookings, repositories.NewFallbackStore(), healthyHealth(t))

	resp, err := svc.ConfirmPayment(&ConfirmRequest{
		BookingID:         "31",
		RazorpayOrderID:   "order_never_recorded",
		RazorpayPaymentID: "pay_test_2",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Payment.Amount, "unrecorded orders capture with zero amount for reconciliation")
	assert.Equal(t, models.BookingConfirmed, resp.Booking.Status)
}

func TestPaymentServiceConfirmValidation(t *testing.T) {
	svc := newPaymentService(t, newMockPaymentStore(), &mockBookingPaymentStore{}, repositories.NewFallbackStore(), degradedHealth())

	_, err := svc.ConfirmPayment(&ConfirmRequest{}, nil)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.Contains(t, err.Error(), "razorpay_order_id")
}

func TestPaymentServiceDegradedConfirmUsesFallback(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreBooking(&models.Booking{
		ID: 1756723200123, PassType: models.PassCouple, NumTickets: 2,
		Status: models.BookingPending, BookingDate: time.Now(),
	})
	svc := newPaymentService(t, newMockPaymentStore(), &mockBookingPaymentStore{}, fallback, degradedHealth())

	order, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "1756723200123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1398), order.Amount)

	resp, err := svc.ConfirmPayment(&ConfirmRequest{
		BookingID:         "1756723200123",
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_offline_1",
	}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Booking.IsMock)
	assert.Equal(t, models.BookingConfirmed, resp.Booking.Status)
	assert.Equal(t, models.PaymentCaptured, resp.Payment.Status)
	assert.Len(t, resp.Tickets, 2)
}

func TestPaymentServiceResendRequiresConfirmedAndPaid(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	svc := newPaymentService(t, newMockPaymentStore(), &mockBookingPaymentStore{}, fallback, healthyHealth(t))

	pending := &models.Booking{ID: 61, Status: models.BookingPending}
	_, err := svc.ResendNotifications(pending, nil)
	assert.ErrorIs(t, err, models.ErrBookingNotConfirmed)

	confirmed := &models.Booking{ID: 62, Status: models.BookingConfirmed, NumTickets: 1, BookingDate: time.Now()}
	_, err = svc.ResendNotifications(confirmed, nil)
	assert.ErrorIs(t, err, models.ErrNoPaymentForBooking)
}

func TestPaymentServiceResendSendsAgain(t *testing.T) {
	payments := newMockPaymentStore()
	bookings := &mockBookingPaymentStore{passType: models.PassFemale, numTickets: 1}
	fallback := repositories.NewFallbackStore()
	health := healthyHealth(t)

	razorpay := NewRazorpayService(config.RazorpayConfig{})
	qrStore := &mockQRStore{}
	tickets := NewTicketService(qrStore, NewQRService(), NewPDFService("Test Event"), newMemoryStorage(), fallback, health)
	email, whatsapp := mockChannelServices()
	logs := &mockMessageLogStore{}
	notifications := NewNotificationService(email, whatsapp, logs, health)
	svc := NewPaymentService(payments, bookings, razorpay, tickets, notifications, fallback, health, "INR")

	order, err := svc.CreateOrder(&CreateOrderRequest{BookingID: "71"})
	require.NoError(t, err)

	users := []*models.BookingUser{{ID: 1, BookingID: 71, Name: "Asha", Email: "a@b.c", IsPrimary: true}}
	resp, err := svc.ConfirmPayment(&ConfirmRequest{
		BookingID:         "71",
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_test_71",
	}, users)
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)

	before := len(logs.entries)
	report, err := svc.ResendNotifications(resp.Booking, users)
	require.NoError(t, err)
	assert.True(t, report.EmailSent)
	assert.Greater(t, len(logs.entries), before)
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", joinList(nil))
	assert.Equal(t, "a", joinList([]string{"a"}))
	assert.Equal(t, "a, b, c", joinList([]string{"a", "b", "c"}))
}
