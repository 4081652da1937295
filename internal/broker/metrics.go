package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broker's Prometheus instruments. Observability is
// not named in any Non-goal, so it is carried as ambient
// infrastructure exposed on a /metrics endpoint registered alongside
// the API router.
type Metrics struct {
	RegistrySize          *prometheus.GaugeVec
	BindingEngineRestarts prometheus.Counter
	UploadBytesTotal      prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RegistrySize: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "boardswarmd_registry_size",
			Help: "Number of entries currently registered, by resource kind.",
		}, []string{"kind"}),
		BindingEngineRestarts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "boardswarmd_binding_engine_restarts_total",
			Help: "Number of times a device's binding-engine goroutine was (re)started.",
		}),
		UploadBytesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "boardswarmd_upload_bytes_total",
			Help: "Total bytes accepted across all uploader sessions.",
		}),
	}
}

// Metrics returns the broker's metric instruments, for wiring into the
// upload handler and the /metrics endpoint.
func (b *Broker) Metrics() *Metrics { return b.metrics }

func (b *Broker) recordRegistrySizes() {
	b.metrics.RegistrySize.WithLabelValues("actuator").Set(float64(b.actuators.Len()))
	b.metrics.RegistrySize.WithLabelValues("console").Set(float64(b.consoles.Len()))
	b.metrics.RegistrySize.WithLabelValues("uploader").Set(float64(b.uploaders.Len()))
	b.metrics.RegistrySize.WithLabelValues("device").Set(float64(b.devices.Len()))
}
