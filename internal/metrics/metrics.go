package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prbot_commands_total",
			Help: "Total number of in-scope commands handled, by command",
		},
		[]string{"command"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prbot_submissions_total",
			Help: "Total number of submission attempts by result",
		},
		[]string{"result"},
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prbot_reconciliations_total",
			Help: "Total number of daily reconciliations by outcome",
		},
		[]string{"outcome"},
	)

	MissingUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prbot_missing_users",
			Help: "Number of users reported missing by the last reconciliation",
		},
	)

	SendErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prbot_send_errors_total",
			Help: "Total number of messages that could not be delivered after retries",
		},
	)
)

// Submission results.
const (
	SubmissionRecorded   = "recorded"
	SubmissionRejected   = "rejected"
	SubmissionNotFound   = "not_found"
	SubmissionExempt     = "exempt"
	SubmissionNoUsername = "no_username"
	SubmissionFailed     = "store_error"
)
