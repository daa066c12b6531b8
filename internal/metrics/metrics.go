// Package metrics регистрирует счётчики приложения в реестре Prometheus
// по умолчанию, который отдается на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookEvents счётчик обработанных событий вебхука по типу и исходу
// (processed, skipped, failed).
var WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "course_platform_webhook_events_total",
	Help: "Webhook events by type and outcome",
}, []string{"event_type", "outcome"})

// GateDecisions счётчик решений access gate (ready, redirect_signin,
// redirect_expired, error).
var GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "course_platform_gate_decisions_total",
	Help: "Access gate decisions",
}, []string{"decision"})
