package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dandiya-ticketing-platform/internal/models"
)

func TestPDFService_GenerateTicketsPDF(t *testing.T) {
	service := NewPDFService("Malang Raas Dandiya 2025")

	booking := &models.Booking{
		ID:          42,
		BookingDate: time.Date(2025, 9, 27, 18, 0, 0, 0, time.UTC),
		NumTickets:  2,
		PassType:    models.PassCouple,
		Status:      models.BookingConfirmed,
		TotalAmount: 1398,
		FinalAmount: 1398,
		CreatedAt:   time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	primary := &models.BookingUser{
		ID:        7,
		BookingID: 42,
		Name:      "Asha Patel",
		Email:     "asha@example.com",
		IsPrimary: true,
	}
	tickets := []*models.QRCode{
		{BookingID: 42, TicketNumber: "a1b2c3d4-0001", ExpiryDate: time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)},
		{BookingID: 42, TicketNumber: "a1b2c3d4-0002", ExpiryDate: time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)},
	}

	pdfBytes, err := service.GenerateTicketsPDF(booking, primary, tickets)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)

	pdf := string(pdfBytes)
	assert.True(t, strings.HasPrefix(pdf, "%PDF-1.4"), "should start with PDF header")
	assert.Contains(t, pdf, "%%EOF")
	assert.Contains(t, pdf, "Booking ID: 42")
	assert.Contains(t, pdf, "Couple Pass")
	assert.Contains(t, pdf, "Asha Patel")
	assert.Contains(t, pdf, "a1b2c3d4-0001")
	assert.Contains(t, pdf, "a1b2c3d4-0002")
}

func TestPDFService_NoPrimaryUser(t *testing.T) {
	service := NewPDFService("Malang Raas Dandiya 2025")

	booking := &models.Booking{
		ID:          9,
		BookingDate: time.Date(2025, 9, 28, 18, 0, 0, 0, time.UTC),
		NumTickets:  1,
		PassType:    models.PassFemale,
		FinalAmount: 399,
	}

	pdfBytes, err := service.GenerateTicketsPDF(booking, nil, []*models.QRCode{
		{BookingID: 9, TicketNumber: "solo-0001", ExpiryDate: time.Now().AddDate(0, 0, 30)},
	})
	require.NoError(t, err)
	assert.Contains(t, string(pdfBytes), "Female Pass")
	assert.NotContains(t, string(pdfBytes), "Booked By")
}

func TestPDFService_EscapesSpecialCharacters(t *testing.T) {
	service := NewPDFService("Event (2025)")

	booking := &models.Booking{
		ID:          1,
		BookingDate: time.Now(),
		NumTickets:  1,
		PassType:    models.PassMale,
	}
	primary := &models.BookingUser{Name: "A (B) \\ C"}

	pdfBytes, err := service.GenerateTicketsPDF(booking, primary, []*models.QRCode{
		{TicketNumber: "t-1", ExpiryDate: time.Now()},
	})
	require.NoError(t, err)
	assert.Contains(t, string(pdfBytes), `A \(B\) \\ C`)
}
