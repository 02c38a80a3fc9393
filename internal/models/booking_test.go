package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookingCreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BookingCreateRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid request",
			req: BookingCreateRequest{
				BookingDate: "2025-10-20",
				NumTickets:  2,
				PassType:    PassCouple,
			},
			wantErr: false,
		},
		{
			name: "valid request with RFC3339 date",
			req: BookingCreateRequest{
				BookingDate: "2025-10-20T18:30:00Z",
				NumTickets:  1,
				PassType:    PassFemale,
			},
			wantErr: false,
		},
		{
			name:    "all fields missing",
			req:     BookingCreateRequest{},
			wantErr: true,
			errMsg:  "The following fields are required: booking_date, num_tickets, pass_type",
		},
		{
			name: "missing pass_type only",
			req: BookingCreateRequest{
				BookingDate: "2025-10-20",
				NumTickets:  2,
			},
			wantErr: true,
			errMsg:  "The following fields are required: pass_type",
		},
		{
			name: "invalid pass_type",
			req: BookingCreateRequest{
				BookingDate: "2025-10-20",
				NumTickets:  2,
				PassType:    "vip",
			},
			wantErr: true,
		},
		{
			name: "unparseable date",
			req: BookingCreateRequest{
				BookingDate: "not-a-date",
				NumTickets:  2,
				PassType:    PassKids,
			},
			wantErr: true,
		},
		{
			name: "negative tickets",
			req: BookingCreateRequest{
				BookingDate: "2025-10-20",
				NumTickets:  -3,
				PassType:    PassMale,
			},
			wantErr: true,
			errMsg:  "num_tickets must be a positive integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.errMsg)
			}
			if tt.wantErr && !IsValidation(err) {
				t.Errorf("Validate() returned non-validation error %T", err)
			}
		})
	}
}

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{"pending to confirmed", BookingPending, BookingConfirmed, true},
		{"pending to cancelled", BookingPending, BookingCancelled, true},
		{"confirmed is terminal", BookingConfirmed, BookingCancelled, false},
		{"confirmed cannot revert", BookingConfirmed, BookingPending, false},
		{"cancelled is terminal", BookingCancelled, BookingConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			if got := b.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s) = %v, want %v", tt.to, got, tt.want)
			}
		})
	}
}

func TestBooking_Validate(t *testing.T) {
	valid := Booking{
		NumTickets:     2,
		PassType:       PassCouple,
		Status:         BookingPending,
		TotalAmount:    1398,
		DiscountAmount: 0,
		FinalAmount:    1398,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid booking failed validation: %v", err)
	}

	broken := valid
	broken.FinalAmount = 1000
	if err := broken.Validate(); err == nil {
		t.Error("expected amount invariant violation to fail validation")
	}

	zero := valid
	zero.NumTickets = 0
	if err := zero.Validate(); err == nil {
		t.Error("expected zero tickets to fail validation")
	}
}

func TestID_JSONRoundTrip(t *testing.T) {
	// Offline booking ids are millisecond timestamps, which can exceed
	// float64 precision as plain JSON numbers.
	original := ID(1756723200123)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"1756723200123"` {
		t.Errorf("ID marshaled as %s, want quoted string", data)
	}

	var decoded ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip produced %d, want %d", decoded, original)
	}
}

func TestPrimaryUser(t *testing.T) {
	first := &BookingUser{ID: 1, Name: "First"}
	flagged := &BookingUser{ID: 2, Name: "Primary", IsPrimary: true}

	if got := PrimaryUser([]*BookingUser{first, flagged}); got != flagged {
		t.Errorf("PrimaryUser picked %v, want the flagged user", got)
	}
	if got := PrimaryUser([]*BookingUser{first}); got != first {
		t.Errorf("PrimaryUser picked %v, want the first user", got)
	}
	if got := PrimaryUser(nil); got != nil {
		t.Errorf("PrimaryUser on empty slice = %v, want nil", got)
	}
}

func TestTicketPayload_RoundTrip(t *testing.T) {
	payload := TicketPayload{
		TicketNumber: "a4f7c2e1-9b3d-4e6f-8a1b-2c3d4e5f6a7b",
		BookingID:    "42",
		PassType:     string(PassCouple),
		EventDate:    time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}

	encoded, err := payload.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded := DecodeTicketPayload(encoded)
	if decoded.TicketNumber != payload.TicketNumber {
		t.Errorf("ticket number %q, want %q", decoded.TicketNumber, payload.TicketNumber)
	}
	if decoded.BookingID != payload.BookingID {
		t.Errorf("booking id %q, want %q", decoded.BookingID, payload.BookingID)
	}
}

func TestDecodeTicketPayload_PlainString(t *testing.T) {
	decoded := DecodeTicketPayload("TKT-12345")
	if decoded.TicketNumber != "TKT-12345" {
		t.Errorf("plain string decode = %q, want the raw value as ticket number", decoded.TicketNumber)
	}
}
