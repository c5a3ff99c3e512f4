package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Current number of registered WebSocket connections.",
	})

	wsRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_rooms_active",
		Help: "Current number of rooms with at least one subscriber.",
	})

	wsBroadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_broadcasts_total",
		Help: "Messages fanned out to rooms, by event type.",
	}, []string{"type"})

	wsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_frames_dropped_total",
		Help: "Frames dropped because a connection queue was full.",
	})
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsBroadcasts, wsDropped)
}
