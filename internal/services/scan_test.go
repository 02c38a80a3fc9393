package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/repositories"
)

type mockTicketLookupStore struct {
	tickets map[string]*repositories.TicketDetails
}

func newMockTicketLookupStore() *mockTicketLookupStore {
	return &mockTicketLookupStore{tickets: make(map[string]*repositories.TicketDetails)}
}

func (m *mockTicketLookupStore) add(ticketNumber string, status models.BookingStatus, expiry time.Time) *repositories.TicketDetails {
	details := &repositories.TicketDetails{
		QRCode: &models.QRCode{
			BookingID:    1,
			TicketNumber: ticketNumber,
			ExpiryDate:   expiry,
		},
		PassType:      models.PassFemale,
		BookingDate:   time.Now().AddDate(0, 0, 7),
		BookingStatus: status,
		UserName:      "Asha",
	}
	m.tickets[ticketNumber] = details
	return details
}

func (m *mockTicketLookupStore) GetByTicketNumber(ticketNumber string) (*repositories.TicketDetails, error) {
	details, ok := m.tickets[ticketNumber]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	return details, nil
}

func (m *mockTicketLookupStore) MarkUsed(ticketNumber, usedBy string) (*models.QRCode, error) {
	details, ok := m.tickets[ticketNumber]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	if details.IsUsed {
		return nil, models.ErrTicketAlreadyUsed
	}
	now := time.Now()
	details.IsUsed = true
	details.UsedAt = &now
	details.UsedBy = usedBy
	return details.QRCode, nil
}

type mockScanAuditStore struct {
	records []models.ScanResult
}

func (m *mockScanAuditStore) Record(bookingID models.ID, ticketNumber string, result models.ScanResult) error {
	m.records = append(m.records, result)
	return nil
}

func TestScanServiceVerifyValidTicket(t *testing.T) {
	store := newMockTicketLookupStore()
	store.add("tkt-1", models.BookingConfirmed, time.Now().AddDate(0, 0, 30))
	svc := NewScanService(store, &mockScanAuditStore{}, repositories.NewFallbackStore(), healthyHealth(t))

	result, err := svc.Verify("tkt-1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Asha", result.UserName)
	assert.False(t, result.Mock)
}

func TestScanServiceVerifyRejections(t *testing.T) {
	store := newMockTicketLookupStore()
	svc := NewScanService(store, &mockScanAuditStore{}, repositories.NewFallbackStore(), healthyHealth(t))

	store.add("pending", models.BookingPending, time.Now().AddDate(0, 0, 30))
	result, err := svc.Verify("pending")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "booking not confirmed", result.Reason)

	store.add("expired", models.BookingConfirmed, time.Now().AddDate(0, 0, -1))
	result, err = svc.Verify("expired")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "ticket expired", result.Reason)

	used := store.add("used", models.BookingConfirmed, time.Now().AddDate(0, 0, 30))
	used.IsUsed = true
	result, err = svc.Verify("used")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "ticket already used", result.Reason)

	_, err = svc.Verify("unknown")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestScanServiceMarkUsedOnce(t *testing.T) {
	store := newMockTicketLookupStore()
	store.add("tkt-2", models.BookingConfirmed, time.Now().AddDate(0, 0, 30))
	audit := &mockScanAuditStore{}
	svc := NewScanService(store, audit, repositories.NewFallbackStore(), healthyHealth(t))

	result, err := svc.MarkUsed("tkt-2", "Gate A")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.IsUsed)
	assert.Equal(t, "Gate A", result.UsedBy)

	// The second scan of the same ticket is rejected and audited
	_, err = svc.MarkUsed("tkt-2", "Gate B")
	assert.ErrorIs(t, err, models.ErrTicketAlreadyUsed)

	require.Len(t, audit.records, 2)
	assert.Equal(t, models.ScanAccepted, audit.records[0])
	assert.Equal(t, models.ScanRejected, audit.records[1])
}

func TestScanServiceDecodesJSONPayload(t *testing.T) {
	store := newMockTicketLookupStore()
	store.add("tkt-3", models.BookingConfirmed, time.Now().AddDate(0, 0, 30))
	svc := NewScanService(store, &mockScanAuditStore{}, repositories.NewFallbackStore(), healthyHealth(t))

	payload := models.TicketPayload{TicketNumber: "tkt-3", BookingID: "1", PassType: "female", EventDate: "2025-09-27"}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	result, err := svc.Verify(encoded)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "tkt-3", result.TicketNumber)
}

func TestScanServiceDegradedTrustsPayload(t *testing.T) {
	svc := NewScanService(newMockTicketLookupStore(), &mockScanAuditStore{}, repositories.NewFallbackStore(), degradedHealth())

	payload := models.TicketPayload{TicketNumber: "offline-1", BookingID: "42", PassType: "couple", EventDate: "2025-09-27"}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	result, err := svc.Verify(encoded)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Mock, "degraded verification is flagged for the operator")
	assert.Equal(t, models.ID(42), result.BookingID)
}

func TestScanServiceFindsFallbackIssuedTicket(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreQRCode(&models.QRCode{BookingID: 500, TicketNumber: "mem-1"})
	svc := NewScanService(newMockTicketLookupStore(), &mockScanAuditStore{}, fallback, healthyHealth(t))

	payload := models.TicketPayload{TicketNumber: "mem-1", BookingID: "500"}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	result, err := svc.Verify(encoded)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Mock)
}

func TestScanServiceFallbackTicketAdmittedOnce(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreQRCode(&models.QRCode{BookingID: 600, TicketNumber: "mem-2"})
	audit := &mockScanAuditStore{}
	svc := NewScanService(newMockTicketLookupStore(), audit, fallback, healthyHealth(t))

	payload := models.TicketPayload{TicketNumber: "mem-2", BookingID: "600"}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	result, err := svc.MarkUsed(encoded, "Gate A")
	require.NoError(t, err)
	assert.True(t, result.IsUsed)
	assert.Equal(t, "Gate A", result.UsedBy)

	_, err = svc.MarkUsed(encoded, "Gate B")
	assert.ErrorIs(t, err, models.ErrTicketAlreadyUsed)
	assert.Equal(t, []models.ScanResult{models.ScanAccepted, models.ScanRejected}, audit.records)

	verify, err := svc.Verify(encoded)
	require.NoError(t, err)
	assert.False(t, verify.Valid)
	assert.Equal(t, "ticket already used", verify.Reason)
}

func TestScanServiceDegradedAdmissionConsumesFallbackTicket(t *testing.T) {
	fallback := repositories.NewFallbackStore()
	fallback.StoreQRCode(&models.QRCode{BookingID: 700, TicketNumber: "mem-3"})
	svc := NewScanService(newMockTicketLookupStore(), &mockScanAuditStore{}, fallback, degradedHealth())

	payload := models.TicketPayload{TicketNumber: "mem-3", BookingID: "700"}
	encoded, err := payload.Encode()
	require.NoError(t, err)

	result, err := svc.MarkUsed(encoded, "Gate A")
	require.NoError(t, err)
	assert.True(t, result.IsUsed)

	_, err = svc.MarkUsed(encoded, "Gate A")
	assert.ErrorIs(t, err, models.ErrTicketAlreadyUsed)
}
