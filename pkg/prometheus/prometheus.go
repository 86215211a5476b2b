package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/questx-lab/secretsanta/internal/common"
)

// MetricPrefix namespaces the service metrics, runtime metrics keep their
// usual go_ and process_ names.
const MetricPrefix = "santa_"

// NewRegistry registers the request, lock and mail metrics of the service
// under MetricPrefix next to the runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := prometheus.WrapRegistererWithPrefix(MetricPrefix, registry)
	for _, counter := range common.PromCounters {
		service.MustRegister(counter)
	}

	for _, histogram := range common.PromHistograms {
		service.MustRegister(histogram)
	}

	return registry
}

func NewHandler() http.Handler {
	return promhttp.HandlerFor(NewRegistry(), promhttp.HandlerOpts{})
}
