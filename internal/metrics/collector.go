// Package metrics provides internal Prometheus instrumentation for the
// orchestration engine. It is internal and should not be imported by
// external projects.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric vector the engine records against.
type Collector struct {
	AgentInvocations    *prometheus.CounterVec
	AgentInvocationTime *prometheus.HistogramVec

	VotesTotal *prometheus.CounterVec

	DeliberationRounds      *prometheus.CounterVec
	DeliberationTermination *prometheus.CounterVec
	TokensUsed              *prometheus.CounterVec

	mu         sync.Mutex
	registered bool
}

// NewCollector registers the engine's metric vectors against reg. Passing
// a nil registry is not supported; callers that want metrics disabled
// should use Noop instead of constructing a Collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		AgentInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conclave_agent_invocations_total",
			Help: "Number of agent invocations by agent id and outcome.",
		}, []string{"agent_id", "outcome"}),

		AgentInvocationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conclave_agent_invocation_duration_seconds",
			Help:    "Latency of agent invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent_id"}),

		VotesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conclave_votes_total",
			Help: "Number of voting strategy invocations by strategy and outcome.",
		}, []string{"strategy", "outcome"}),

		DeliberationRounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conclave_deliberation_rounds_total",
			Help: "Number of deliberation rounds run by mode.",
		}, []string{"mode"}),

		DeliberationTermination: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conclave_deliberation_termination_total",
			Help: "Number of deliberations terminated by reason.",
		}, []string{"reason"}),

		TokensUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conclave_tokens_used_total",
			Help: "Tokens consumed by agent invocations.",
		}, []string{"agent_id"}),

		registered: true,
	}
}

// Noop returns a Collector backed by a private registry, suitable for
// callers that want instrumentation code paths to run without exporting
// metrics anywhere (e.g. EngineConfig.Telemetry.Enabled == false).
func Noop() *Collector {
	return NewCollector(prometheus.NewRegistry())
}
