package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the learncenter collectors together with the Go
// runtime defaults. A collector failing to gather does not blank the scrape.
func MetricsHandler() fiber.Handler {
	return metricsHandler(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func metricsHandler(registerer prometheus.Registerer, gatherer prometheus.Gatherer) fiber.Handler {
	RegisterMetrics()
	handler := promhttp.InstrumentMetricHandler(registerer, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}))
	return adaptor.HTTPHandler(handler)
}
