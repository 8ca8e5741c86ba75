// Package metrics exposes Prometheus collectors for room activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tambola_rooms_active",
		Help: "Rooms currently held in memory",
	})

	draws = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_draws_total",
			Help: "Numbers drawn, by mode",
		},
		[]string{"mode"},
	)

	claims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_claims_total",
			Help: "Prize claims by prize and outcome",
		},
		[]string{"prize", "outcome"},
	)

	gamesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tambola_games_completed_total",
			Help: "Games that reached the completed state, by reason",
		},
		[]string{"reason"},
	)
)

func RoomOpened() { roomsActive.Inc() }
func RoomClosed() { roomsActive.Dec() }

// RecordDraw counts one drawn number. mode is "auto" or "manual".
func RecordDraw(mode string) {
	draws.WithLabelValues(mode).Inc()
}

// RecordClaim counts a claim attempt.
// outcome: "won" | "rejected" | "already_claimed" | "not_enabled"
func RecordClaim(prize, outcome string) {
	if prize == "" {
		prize = "unknown"
	}
	claims.WithLabelValues(prize, outcome).Inc()
}

func RecordGameCompleted(reason string) {
	gamesCompleted.WithLabelValues(reason).Inc()
}
