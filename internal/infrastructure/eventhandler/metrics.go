package eventhandler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thek4n/clipstash/internal/domain/event"
)

// MetricsEventHandler counts domain events in prometheus metrics.
type MetricsEventHandler struct {
	clips    *prometheus.CounterVec
	swept    prometheus.Counter
	apikeys  *prometheus.CounterVec
	hitsLost prometheus.Counter
}

// NewMetricsEventHandler registers metrics in reg.
func NewMetricsEventHandler(reg prometheus.Registerer) *MetricsEventHandler {
	factory := promauto.With(reg)

	return &MetricsEventHandler{
		clips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipstash_clip_operations_total",
				Help: "no. of successful clip operations",
			},
			[]string{"operation", "privileged"},
		),
		swept: factory.NewCounter(prometheus.CounterOpts{
			Name: "clipstash_clips_swept_total",
			Help: "no. of expired clips removed by sweep",
		}),
		apikeys: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipstash_apikey_operations_total",
				Help: "no. of apikey operations",
			},
			[]string{"operation", "effective"},
		),
		hitsLost: factory.NewCounter(prometheus.CounterOpts{
			Name: "clipstash_hits_increment_failures_total",
			Help: "no. of clip views whose hit was not counted",
		}),
	}
}

// SubscribedEvents returns prototypes of events handled by MetricsEventHandler.
func SubscribedEvents() []event.Event {
	return []event.Event{
		event.NewClipCreatedEvent("", false, false),
		event.NewClipViewedEvent("", false),
		event.NewClipUpdatedEvent("", false, false),
		event.NewClipDeletedEvent("", false),
		event.NewHitsIncrementLostEvent(""),
		event.NewClipsSweptEvent(0),
		event.NewAPIKeyCreatedEvent(),
		event.NewAPIKeyRevokedEvent(false),
	}
}

// Notify implementation of abstract method EventHandler.Notify.
func (h *MetricsEventHandler) Notify(ev event.Event) {
	switch e := ev.(type) {
	case event.ClipEvent:
		if e.Name() == event.HitsIncrementLost {
			h.hitsLost.Inc()
			return
		}
		h.clips.WithLabelValues(operation(e.Name()), boolLabel(e.Privileged())).Inc()
	case event.ClipsSweptEvent:
		h.swept.Add(float64(e.Removed()))
	case event.APIKeyEvent:
		h.apikeys.WithLabelValues(operation(e.Name()), boolLabel(e.Effective())).Inc()
	}
}

func operation(name string) string {
	switch name {
	case event.ClipCreatedName, event.APIKeyCreatedName:
		return "create"
	case event.ClipViewedName:
		return "view"
	case event.ClipUpdatedName:
		return "update"
	case event.ClipDeletedName:
		return "delete"
	case event.APIKeyRevokedName:
		return "revoke"
	default:
		return name
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
