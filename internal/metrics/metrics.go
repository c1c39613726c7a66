package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quiz"

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Open websocket connections.",
	})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Client commands processed, by type and result (applied or rejected).",
	}, []string{"type", "result"})

	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "State fan-outs to all connections.",
	})

	DroppedClients = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_clients_total",
		Help:      "Connections dropped because their outbox was full.",
	})

	GamesWon = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_won_total",
		Help:      "first_to games that reached their target score.",
	})
)

func ObserveCommand(cmdType string, err error) {
	result := "applied"
	if err != nil {
		result = "rejected"
	}
	Commands.WithLabelValues(cmdType, result).Inc()
}
