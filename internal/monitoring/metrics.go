// Package monitoring exposes the platform's Prometheus collectors.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts bookings by pass type and store backend
	// ("database" or "fallback").
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dandiya_bookings_created_total",
		Help: "Number of bookings created, by pass type and backing store.",
	}, []string{"pass_type", "store"})

	// PaymentOrders counts payment orders handed to the provider
	PaymentOrders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dandiya_payment_orders_total",
		Help: "Number of payment orders created.",
	})

	// PaymentConfirmations counts confirmation outcomes
	// ("confirmed", "signature_rejected", "failed").
	PaymentConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dandiya_payment_confirmations_total",
		Help: "Number of payment confirmation attempts, by outcome.",
	}, []string{"outcome"})

	// TicketScans counts gate scan attempts by result
	TicketScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dandiya_ticket_scans_total",
		Help: "Number of ticket verification attempts, by result.",
	}, []string{"result"})

	// NotificationAttempts counts delivery attempts by channel and outcome
	NotificationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dandiya_notification_attempts_total",
		Help: "Number of notification delivery attempts, by channel and outcome.",
	}, []string{"channel", "outcome"})

	// DegradedRequests counts requests served from the fallback path
	DegradedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dandiya_degraded_requests_total",
		Help: "Number of requests served in degraded mode, by endpoint group.",
	}, []string{"endpoint"})
)
