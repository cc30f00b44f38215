package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal   prometheus.Counter
	LoanTransitionTotal *prometheus.CounterVec
	PaymentsTotal       *prometheus.CounterVec
	LoansByStatus       *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_management_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_management_loans_created_total",
				Help: "Total number of loan applications created.",
			},
		),
		LoanTransitionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_management_loan_transitions_total",
				Help: "Total number of loan lifecycle transitions.",
			},
			[]string{"from", "to"},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_management_payments_total",
				Help: "Total number of payment attempts by outcome.",
			},
			[]string{"status"},
		),
		LoansByStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loan_management_loans_by_status",
				Help: "Current number of loans per lifecycle status.",
			},
			[]string{"status"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordLoanTransition(from, to string) {
	Business.LoanTransitionTotal.WithLabelValues(from, to).Inc()
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func SetLoansByStatus(status string, count int64) {
	Business.LoansByStatus.WithLabelValues(status).Set(float64(count))
}
