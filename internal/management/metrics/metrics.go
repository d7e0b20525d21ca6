package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Requests counts catalogue API requests by operation and outcome class.
var Requests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalogue_requests_total",
		Help: "Catalogue API requests by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// BooksCreated counts books inserted into the catalogue.
var BooksCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalogue_books_created_total",
		Help: "Books created in the catalogue.",
	},
)
