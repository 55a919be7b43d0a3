// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RentalsCreated counts admitted rental requests by initial status.
	RentalsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ukrlibrary_rentals_created_total",
		Help: "Rental requests created, labelled by initial status.",
	}, []string{"status"})

	// RentalTransitions counts status transitions by target.
	RentalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ukrlibrary_rental_transitions_total",
		Help: "Rental status transitions, labelled by target status.",
	}, []string{"target"})

	// QueuePromotions counts waitlist entries promoted to pending on return.
	QueuePromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukrlibrary_queue_promotions_total",
		Help: "Queued reservations promoted to pending.",
	})
)
