package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	OpensAccepted     prometheus.Counter
	OpensRejectedBot  prometheus.Counter
	OpensRejectedSelf prometheus.Counter
	OpensRejectedDup  prometheus.Counter
	OpensUnknown      prometheus.Counter
	OpensStoreErrors  prometheus.Counter
	AdsServed         prometheus.Counter
	AdsFallback       prometheus.Counter
	PixelDuration     prometheus.Histogram
	TrackedMessages   prometheus.Gauge
	OpenedMessages    prometheus.Gauge
	ActiveAds         prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		OpensAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_accepted_total",
			Help: "Total number of pixel fetches counted as genuine opens",
		}),
		OpensRejectedBot: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_rejected_bot_total",
			Help: "Total number of pixel fetches rejected by the bot filter",
		}),
		OpensRejectedSelf: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_rejected_sender_total",
			Help: "Total number of pixel fetches suppressed as sender self-views",
		}),
		OpensRejectedDup: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_rejected_duplicate_total",
			Help: "Total number of pixel fetches rejected by the session lock",
		}),
		OpensUnknown: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_unknown_message_total",
			Help: "Total number of pixel fetches for unknown message ids",
		}),
		OpensStoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_opens_store_errors_total",
			Help: "Total number of open events dropped due to storage failures",
		}),
		AdsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_ads_served_total",
			Help: "Total number of sponsor placements served",
		}),
		AdsFallback: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_beacon_ads_fallback_total",
			Help: "Total number of placements that fell back to the house ad",
		}),
		PixelDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mail_beacon_pixel_duration_seconds",
			Help:    "Time spent handling pixel fetches",
			Buckets: prometheus.DefBuckets,
		}),
		TrackedMessages: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_beacon_tracked_messages",
			Help: "Number of registered tracked messages",
		}),
		OpenedMessages: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_beacon_opened_messages",
			Help: "Number of tracked messages with at least one accepted open",
		}),
		ActiveAds: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_beacon_active_ads",
			Help: "Number of active sponsor ads under their view cap",
		}),
	}
}
