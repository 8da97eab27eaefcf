package observe

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitProvider registers a global MeterProvider backed by the Prometheus
// exporter and returns it together with a shutdown function.
func InitProvider() (*sdkmetric.MeterProvider, func(context.Context) error, error) {
	promExp, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExp))
	otel.SetMeterProvider(mp)

	return mp, mp.Shutdown, nil
}

// Handler serves the Prometheus text exposition of the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
