package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesRatingCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	RegisterMetrics()
	require.NoError(t, registry.Register(ratingBuildsTotal))
	require.NoError(t, registry.Register(ratingCacheLookups))

	RatingBuilds().Inc()
	RatingCacheLookups().WithLabelValues("hit").Inc()

	app := fiber.New()
	app.Get("/metrics", metricsHandler(registry, registry))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "lc_rating_builds_total")
	require.Contains(t, string(body), `lc_rating_cache_lookups_total{result="hit"}`)
	require.Contains(t, string(body), "promhttp_metric_handler_requests_total")
}
