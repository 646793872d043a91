package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coinvest",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinvest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	DepositEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "deposits",
			Name:      "events_total",
			Help:      "Deposit lifecycle events by outcome.",
		},
		[]string{"event"}, // submitted, confirmed, rejected
	)

	WithdrawalEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "withdrawals",
			Name:      "events_total",
			Help:      "Withdrawal lifecycle events by outcome.",
		},
		[]string{"event"}, // requested, approved, rejected, completed
	)

	roiCredited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "investments",
			Name:      "roi_credited_total",
			Help:      "Sum of ROI amounts credited by admins.",
		},
	)

	referralBonusPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "referrals",
			Name:      "bonus_paid_total",
			Help:      "Sum of referral bonuses credited.",
		},
	)

	maturedInvestments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinvest",
			Subsystem: "investments",
			Name:      "matured_total",
			Help:      "Investments moved to completed by the maturity sweep.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		DepositEvents,
		WithdrawalEvents,
		roiCredited,
		referralBonusPaid,
		maturedInvestments,
	)
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted returns a func that records the finished request.
func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func ROICredited(amount decimal.Decimal) {
	roiCredited.Add(amount.InexactFloat64())
}

func ReferralBonusPaid(amount decimal.Decimal) {
	referralBonusPaid.Add(amount.InexactFloat64())
}

func InvestmentsMatured(n int64) {
	maturedInvestments.Add(float64(n))
}
