package gateway

import (
	"errors"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/prometheus"
)

var (
	dispatchTotal = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "herald",
		Subsystem: "gateway",
		Name:      "dispatch_total",
		Help:      "Channel action dispatches by channel, action and outcome.",
	}, []string{"channel", "action", "outcome"})

	dispatchSeconds = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "herald",
		Subsystem: "gateway",
		Name:      "dispatch_seconds",
		Help:      "Channel action dispatch latency.",
		Buckets:   prom.DefBuckets,
	}, []string{"channel", "action"})
)

func init() {
	prometheus.GetRegistry().MustRegister(dispatchTotal, dispatchSeconds)
}

func observeDispatch(channelID string, kind channel.ActionKind, took time.Duration, err error) {
	dispatchTotal.WithLabelValues(channelID, string(kind), dispatchOutcome(err)).Inc()
	dispatchSeconds.WithLabelValues(channelID, string(kind)).Observe(took.Seconds())
}

// dispatchOutcome buckets a dispatch result for the outcome label.
func dispatchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, params.ErrInvalid):
		return "invalid"
	case errors.Is(err, channel.ErrUnsupportedAction):
		return "unsupported"
	default:
		return "error"
	}
}
