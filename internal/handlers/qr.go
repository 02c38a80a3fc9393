package handlers

import (
	"net/http"

	"dandiya-ticketing-platform/internal/middleware"
	"dandiya-ticketing-platform/internal/models"
	"dandiya-ticketing-platform/internal/services"
)

// QRHandler backs the verifier app used at the gate
type QRHandler struct {
	scans *services.ScanService
}

// NewQRHandler creates a new QR handler
func NewQRHandler(scans *services.ScanService) *QRHandler {
	return &QRHandler{scans: scans}
}

type scanRequest struct {
	QRCode    string `json:"qr_code"`
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
}

func (req *scanRequest) validate() error {
	if req.QRCode == "" {
		return &models.ValidationError{
			Fields:  []string{"qr_code"},
			Message: "The following fields are required: qr_code",
		}
	}
	return nil
}

// Verify handles POST /api/qr/verify. It answers whether a scanned
// code would admit without consuming the ticket.
func (h *QRHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.scans.Verify(req.QRCode)
	if err != nil {
		respondError(w, err)
		return
	}

	data := map[string]interface{}{"ticket": result}
	if result.Mock {
		data["mock"] = true
	}
	respondOK(w, http.StatusOK, data)
}

// MarkUsed handles POST /api/qr/mark-used. The staff identity comes
// from the authenticated token when present, else the request body.
func (h *QRHandler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	staffName := req.StaffName
	if claims := middleware.StaffFromContext(r.Context()); claims != nil && claims.Name != "" {
		staffName = claims.Name
	}
	if staffName == "" {
		staffName = "Gate Staff"
	}

	result, err := h.scans.MarkUsed(req.QRCode, staffName)
	if err != nil {
		respondError(w, err)
		return
	}

	data := map[string]interface{}{"ticket": result}
	if result.Mock {
		data["mock"] = true
	}
	respondOK(w, http.StatusOK, data)
}
