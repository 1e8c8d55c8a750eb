package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "persist_failures_total",
		Help:      "Cart snapshots that could not be written to the session store.",
	})

	cartLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cart",
		Name:      "load_failures_total",
		Help:      "Cart snapshots that could not be read from the session store.",
	})

	reviewsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "reviews",
		Name:      "submissions_total",
		Help:      "Review submissions by outcome.",
	}, []string{"outcome"})

	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders committed at checkout.",
	})
)
