// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_webhook_events_total",
			Help: "Payment webhook deliveries by outcome.",
		},
		[]string{"outcome"}, // processed, duplicate, rejected, ignored, failed
	)

	RoleChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_role_changes_total",
			Help: "Local role transitions by origin.",
		},
		[]string{"origin"}, // derivation, ban, unban, sweep, admin
	)

	RoleSyncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatekeeper_role_sync_failures_total",
			Help: "Directory role sync calls that returned an error.",
		},
	)

	Sweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatekeeper_reconcile_sweeps_total",
			Help: "Completed expiry reconciliation sweeps.",
		},
	)

	SweepDowngrades = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatekeeper_reconcile_downgrades_total",
			Help: "Accounts downgraded from VIP by the sweep.",
		},
	)

	SweepsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatekeeper_reconcile_sweeps_skipped_total",
			Help: "Sweep ticks skipped because a sweep was still running.",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		WebhookEvents,
		RoleChanges,
		RoleSyncFailures,
		Sweeps,
		SweepDowngrades,
		SweepsSkipped,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
