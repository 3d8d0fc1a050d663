package v1

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinoosan/bookkeeper/internal/service/report"
)

const namespace = "bookkeeper"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
	transactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_recorded_total",
		Help:      "Transactions recorded through the API",
	})
	transactionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_deleted_total",
		Help:      "Transactions deleted through the API",
	})
	validationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_validation_failures_total",
		Help:      "Transactions rejected at entry",
	})
	bookOutOfBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "book_out_of_balance",
		Help:      "1 when the balance sheet does not balance",
	})
	danglingReferences = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dangling_references",
		Help:      "Transaction legs naming an account outside the chart",
	})
	overflowedLegs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overflowed_legs",
		Help:      "Transaction legs left out of balances because they did not fit",
	})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := strconv.Itoa(ww.Status())
		httpRequestsTotal.WithLabelValues(r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}

func setOutOfBalance(out bool) {
	if out {
		bookOutOfBalance.Set(1)
		return
	}
	bookOutOfBalance.Set(0)
}

func recordIntegrity(in report.Integrity) {
	setOutOfBalance(!in.Balanced)
	danglingReferences.Set(float64(len(in.Dangling)))
	overflowedLegs.Set(float64(len(in.Overflows)))
}
