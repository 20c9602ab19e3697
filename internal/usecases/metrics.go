package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskSubmissions counts proof submissions by task kind and outcome.
	TaskSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blip_dashboard_task_submissions_total",
			Help: "Total number of task proof submissions",
		},
		[]string{"kind", "outcome"},
	)

	// PointsCredited counts points added to the session after verified tasks.
	PointsCredited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blip_dashboard_points_credited_total",
			Help: "Total number of points credited locally after task verification",
		},
		[]string{"kind"},
	)

	// WalletLinkAttempts counts wallet binding attempts by outcome.
	WalletLinkAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blip_dashboard_wallet_link_attempts_total",
			Help: "Total number of wallet link attempts",
		},
		[]string{"outcome"},
	)

	// VerificationChecks counts identity-provider verification checks by result.
	VerificationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blip_dashboard_email_verification_checks_total",
			Help: "Total number of email verification checks against the identity provider",
		},
		[]string{"result"},
	)
)

// Metric outcome labels
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
	outcomeConflict = "conflict"
	outcomeInvalid  = "invalid"
)
