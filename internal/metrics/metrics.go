package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	recordsForwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "records_forwarded_total",
		Help:      "Total records forwarded from redirected streams to the log sink.",
	}, []string{"tag"})

	bytesForwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "forwarded_bytes_total",
		Help:      "Total bytes forwarded from redirected streams to the log sink.",
	}, []string{"tag"})

	recordsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "records_dropped_total",
		Help:      "Total records dropped because the sink buffer was full.",
	}, []string{"tag"})

	recordsTruncated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "records_truncated_total",
		Help:      "Total records truncated to the sink payload limit.",
	}, []string{"tag"})

	threadKills = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "thread_kills_total",
		Help:      "Total forced thread termination requests delivered.",
	})

	threadKillWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Name:      "thread_kill_warnings_total",
		Help:      "Total termination requests whose target still existed after the grace period.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cradle",
		Name:      "build_info",
		Help:      "Build metadata for the running cradle binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(
		recordsForwarded,
		bytesForwarded,
		recordsDropped,
		recordsTruncated,
		threadKills,
		threadKillWarnings,
		buildInfo,
	)
}

// Registry returns the Prometheus registry containing all cradle metrics.
func Registry() *prometheus.Registry {
	return registry
}

// AddRecordForwarded accounts one record of the given size forwarded for a tag.
func AddRecordForwarded(tag string, bytes int) {
	if tag == "" {
		tag = "unknown"
	}
	recordsForwarded.WithLabelValues(tag).Inc()
	if bytes > 0 {
		bytesForwarded.WithLabelValues(tag).Add(float64(bytes))
	}
}

// AddRecordsDropped accounts records discarded for a tag.
func AddRecordsDropped(tag string, n int) {
	if n <= 0 {
		return
	}
	if tag == "" {
		tag = "unknown"
	}
	recordsDropped.WithLabelValues(tag).Add(float64(n))
}

// IncrementRecordTruncated accounts one record clipped to the payload limit.
func IncrementRecordTruncated(tag string) {
	if tag == "" {
		tag = "unknown"
	}
	recordsTruncated.WithLabelValues(tag).Inc()
}

// IncrementThreadKill accounts one delivered termination request.
func IncrementThreadKill() {
	threadKills.Inc()
}

// IncrementThreadKillWarning accounts one post-grace liveness warning.
func IncrementThreadKillWarning() {
	threadKillWarnings.Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
