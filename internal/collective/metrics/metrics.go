package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for collective onboarding.
// Tracks creations by strategy and approval state, failures by error code,
// best-effort side-effect failures, and critical path durations.
type Metrics struct {
	CollectivesCreated   *prometheus.CounterVec
	CreateFailures       *prometheus.CounterVec
	SideEffectFailures   *prometheus.CounterVec
	VerificationFailures *prometheus.CounterVec
	UsersProvisioned     prometheus.Counter
	CreateDuration       prometheus.Histogram
	GetAccountDuration   prometheus.Histogram
	CacheLookups         *prometheus.CounterVec
}

// New registers all collective metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CollectivesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opencollective_collectives_created_total",
			Help: "Total number of collectives created",
		}, []string{"strategy", "approval"}),
		CreateFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opencollective_collective_create_failures_total",
			Help: "Collective creations rejected or failed, by error code",
		}, []string{"code"}),
		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opencollective_collective_side_effect_failures_total",
			Help: "Post-commit side effects that failed, by effect",
		}, []string{"effect"}),
		VerificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opencollective_github_verification_failures_total",
			Help: "Automated host verifications that failed, by category",
		}, []string{"category"}),
		UsersProvisioned: factory.NewCounter(prometheus.CounterOpts{
			Name: "opencollective_users_provisioned_total",
			Help: "Users created just in time during collective onboarding",
		}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "opencollective_create_collective_duration_seconds",
			Help:    "Duration of CreateCollective operations (includes remote verification)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GetAccountDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "opencollective_get_account_duration_seconds",
			Help:    "Duration of GetAccountWithHost operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opencollective_account_cache_lookups_total",
			Help: "Account view cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementCreated(strategy string, approved bool) {
	approval := "none"
	switch {
	case approved:
		approval = "approved"
	case strategy != "none":
		approval = "pending"
	}
	m.CollectivesCreated.WithLabelValues(strategy, approval).Inc()
}

func (m *Metrics) IncrementCreateFailure(code string) {
	m.CreateFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementSideEffectFailure(effect string) {
	m.SideEffectFailures.WithLabelValues(effect).Inc()
}

func (m *Metrics) IncrementVerificationFailure(category string) {
	if category == "" {
		category = "unknown"
	}
	m.VerificationFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) IncrementUserProvisioned() {
	m.UsersProvisioned.Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveCreate records the duration of a CreateCollective operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveGetAccount records the duration of a GetAccountWithHost operation.
func (m *Metrics) ObserveGetAccount(start time.Time) {
	m.GetAccountDuration.Observe(time.Since(start).Seconds())
}
