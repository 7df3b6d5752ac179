package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type KeeperMetrics struct {
	actionsExecuted   *prometheus.CounterVec
	actionFailures    prometheus.Counter
	submissionRetries prometheus.Counter
	lastTickGauge     prometheus.Gauge
}

func NewKeeperMetrics(namespace string) *KeeperMetrics {
	m := KeeperMetrics{
		actionsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_actions_executed_total", namespace),
			Help: "The total number of successfully executed actions by kind",
		}, []string{"action"}),
		actionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_action_failures_total", namespace),
			Help: "The total number of account cycles that ended in an error",
		}),
		submissionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_submission_retries_total", namespace),
			Help: "The total number of transaction submission retries",
		}),
		lastTickGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_last_tick_unix", namespace),
			Help: "The unix timestamp of the last scheduler tick",
		}),
	}
	return &m
}

func (m *KeeperMetrics) IncActionExecuted(action string) {
	m.actionsExecuted.WithLabelValues(action).Inc()
}

func (m *KeeperMetrics) IncActionFailure() {
	m.actionFailures.Inc()
}

func (m *KeeperMetrics) IncSubmissionRetry() {
	m.submissionRetries.Inc()
}

func (m *KeeperMetrics) SetLastTick(t time.Time) {
	m.lastTickGauge.Set(float64(t.Unix()))
}
