package mcvhost

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcvhost_connections_total",
			Help: "Connections accepted per listener",
		},
		[]string{"listener"},
	)

	RoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcvhost_routed_total",
			Help: "Connections forwarded to a vhost backend",
		},
		[]string{"listener", "vhost"},
	)

	UnknownVhostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcvhost_unknown_vhost_total",
			Help: "Handshakes naming a host no vhost is configured for",
		},
		[]string{"listener"},
	)

	StaticPingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcvhost_static_pings_total",
			Help: "Status queries answered from the static ping settings",
		},
		[]string{"listener"},
	)
)
