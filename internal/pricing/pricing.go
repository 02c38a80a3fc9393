// Package pricing computes ticket prices. Everything here is pure:
// the same inputs always produce the same breakdown regardless of
// calling context (booking creation, order computation, re-pricing).
package pricing

import (
	"fmt"

	"dandiya-ticketing-platform/internal/models"
)

// passPricing holds the unit price structure for one pass type
type passPricing struct {
	Base          int64
	BulkThreshold int
	BulkPrice     int64
}

// Single-day ticket pricing for Malang Raas Dandiya 2025
var ticketPricing = map[models.PassType]passPricing{
	models.PassFemale: {Base: 399, BulkThreshold: 6, BulkPrice: 300},
	models.PassCouple: {Base: 699, BulkThreshold: 6, BulkPrice: 300},
	models.PassKids:   {Base: 99, BulkThreshold: 6, BulkPrice: 300},
	models.PassFamily: {Base: 1300, BulkThreshold: 6, BulkPrice: 300},
	models.PassMale:   {Base: 699, BulkThreshold: 6, BulkPrice: 300},
}

// Breakdown is the price computation result for one booking
type Breakdown struct {
	BasePrice       int64 `json:"basePrice"`
	FinalPrice      int64 `json:"finalPrice"`
	DiscountApplied bool  `json:"discountApplied"`
	TotalAmount     int64 `json:"totalAmount"`
	Savings         int64 `json:"savings"`
}

// Calculate returns the price breakdown for a pass type and quantity.
// Quantity is coerced to a minimum of 1. When the quantity reaches the
// bulk threshold, the unit price drops to a flat bulk price (not a
// percentage discount) and savings records the difference.
func Calculate(passType models.PassType, quantity int) (Breakdown, error) {
	p, ok := ticketPricing[passType]
	if !ok {
		return Breakdown{}, &models.ValidationError{
			Fields:  []string{"pass_type"},
			Message: fmt.Sprintf("invalid pricing for %s", passType),
		}
	}

	q := int64(quantity)
	if q < 1 {
		q = 1
	}

	if p.BulkThreshold > 0 && q >= int64(p.BulkThreshold) {
		return Breakdown{
			BasePrice:       p.Base,
			FinalPrice:      p.BulkPrice,
			DiscountApplied: true,
			TotalAmount:     p.BulkPrice * q,
			Savings:         (p.Base - p.BulkPrice) * q,
		}, nil
	}

	return Breakdown{
		BasePrice:   p.Base,
		FinalPrice:  p.Base,
		TotalAmount: p.Base * q,
	}, nil
}
