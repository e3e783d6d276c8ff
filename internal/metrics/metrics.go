package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

// Recorder owns its registry so that several applications can live in one
// process, which the handler tests rely on.
type Recorder struct {
	registry *prometheus.Registry

	entriesPosted   *prometheus.CounterVec
	entryAmount     *prometheus.HistogramVec
	rejections      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	clients         prometheus.Counter
	accountsOpened  *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		entriesPosted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_posted_total",
				Help: "Total number of ledger entries posted",
			},
			[]string{"kind"},
		),
		entryAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_entry_amount",
				Help:    "Absolute amount of posted ledger entries",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
			[]string{"kind"},
		),
		rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_rejected_total",
				Help: "Total number of operations an account refused",
			},
			[]string{"operation"},
		),
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_milliseconds",
				Help:    "HTTP request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"method"},
		),
		clients: f.NewCounter(
			prometheus.CounterOpts{
				Name: "clients_registered_total",
				Help: "Total number of registered clients",
			},
		),
		accountsOpened: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_opened_total",
				Help: "Total number of opened accounts",
			},
			[]string{"kind"},
		),
	}
}

// EntryPosted makes the recorder a bank observer.
func (r *Recorder) EntryPosted(_ string, e account.Entry) {
	kind := string(e.Kind)
	amount, _ := e.Amount.Abs().Float64()

	r.entriesPosted.WithLabelValues(kind).Inc()
	r.entryAmount.WithLabelValues(kind).Observe(amount)
}

func (r *Recorder) OperationRejected(operation string) {
	r.rejections.WithLabelValues(operation).Inc()
}

func (r *Recorder) ClientRegistered() {
	r.clients.Inc()
}

func (r *Recorder) AccountOpened(kind account.Kind) {
	r.accountsOpened.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) RequestServed(method string, status int, took time.Duration) {
	r.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method).Observe(float64(took.Milliseconds()))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
