package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codebuds",
		Name:      "ws_connections",
		Help:      "Current number of websocket connections",
	})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codebuds",
		Name:      "active_rooms",
		Help:      "Current number of rooms in the directory",
	})

	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codebuds",
		Name:      "ws_frames_total",
		Help:      "Total number of inbound websocket frames by action",
	}, []string{"action"})

	kicksDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codebuds",
		Name:      "kicks_denied_total",
		Help:      "Kick requests dropped because the requester was not the host",
	})
)

func ClientConnected()    { connectedClients.Inc() }
func ClientDisconnected() { connectedClients.Dec() }

func RoomCreated() { activeRooms.Inc() }
func RoomDeleted() { activeRooms.Dec() }

func FrameReceived(action string) { framesTotal.WithLabelValues(action).Inc() }

func KickDenied() { kicksDenied.Inc() }

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
