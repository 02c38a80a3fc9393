package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/services"
)

// BookingHandler handles the public booking and checkout flow
type BookingHandler struct {
	bookings *services.BookingService
	payments *services.PaymentService
	scans    *services.ScanService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, payments *services.PaymentService, scans *services.ScanService) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		payments: payments,
		scans:    scans,
	}
}

// CreateBooking handles POST /api/bookings/create
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	booking, err := h.bookings.CreateBooking(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	data := map[string]interface{}{"booking": booking}
	if booking.IsMock {
		data["mock"] = true
	}
	respondOK(w, http.StatusCreated, data)
}

// AddUser handles POST /api/bookings/add-users
func (h *BookingHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.bookings.AddUser(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, &models.ValidationError{Fields: []string{"id"}, Message: "invalid booking id"})
		return
	}

	booking, err := h.bookings.GetBooking(id)
	if err != nil {
		respondError(w, err)
		return
	}

	users, err := h.bookings.GetUsers(id)
	if err != nil {
		users = nil
	}

	data := map[string]interface{}{"booking": booking, "users": users}
	if booking.IsMock {
		data["mock"] = true
	}
	respondOK(w, http.StatusOK, data)
}

// CreatePayment handles POST /api/bookings/create-payment
func (h *BookingHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	order, err := h.payments.CreateOrder(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{"order": order})
}

// ConfirmPayment handles POST /api/bookings/confirm-payment
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req services.ConfirmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	users := h.usersFor(req.BookingID)

	result, err := h.payments.ConfirmPayment(&req, users)
	if err != nil {
		respondError(w, err)
		return
	}

	data := map[string]interface{}{
		"booking":       result.Booking,
		"payment":       result.Payment,
		"qrCodes":       result.Tickets,
		"notifications": result.Notifications,
	}
	if result.PDFURL != "" {
		data["pdf_url"] = result.PDFURL
	}
	if result.Booking != nil && result.Booking.IsMock {
		data["mock"] = true
	}
	respondOK(w, http.StatusOK, data)
}

// QRDetails handles POST /api/bookings/qr-details
func (h *BookingHandler) QRDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketNumber string `json:"ticket_number"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TicketNumber == "" {
		respondError(w, &models.ValidationError{
			Fields:  []string{"ticket_number"},
			Message: "The following fields are required: ticket_number",
		})
		return
	}

	result, err := h.scans.Verify(req.TicketNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{"ticket": result})
}

// MarkUsed handles POST /api/bookings/mark-used, the legacy gate
// endpoint that predates the authenticated scanner surface
func (h *BookingHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketNumber string `json:"ticket_number"`
		StaffName    string `json:"staff_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TicketNumber == "" {
		respondError(w, &models.ValidationError{
			Fields:  []string{"ticket_number"},
			Message: "The following fields are required: ticket_number",
		})
		return
	}

	staffName := req.StaffName
	if staffName == "" {
		staffName = "Gate Staff"
	}

	result, err := h.scans.MarkUsed(req.TicketNumber, staffName)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{"ticket": result})
}

// ResendNotifications handles POST /api/bookings/resend-notifications
func (h *BookingHandler) ResendNotifications(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := models.ParseID(req.BookingID)
	if err != nil {
		respondError(w, &models.ValidationError{
			Fields:  []string{"booking_id"},
			Message: "invalid booking id",
		})
		return
	}

	booking, err := h.bookings.GetBooking(id)
	if err != nil {
		respondError(w, err)
		return
	}
	users := h.usersFor(req.BookingID)

	report, err := h.payments.ResendNotifications(booking, users)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{"notifications": report})
}

func (h *BookingHandler) usersFor(rawID string) []*models.BookingUser {
	id, err := models.ParseID(rawID)
	if err != nil {
		return nil
	}
	users, err := h.bookings.GetUsers(id)
	if err != nil {
		return nil
	}
	return users
}
