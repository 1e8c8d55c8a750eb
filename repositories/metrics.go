package repositories

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var txRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "storefront",
	Subsystem: "db",
	Name:      "tx_retries_total",
	Help:      "Transactions re-run after a serialization failure or deadlock.",
}, []string{"unit"})
