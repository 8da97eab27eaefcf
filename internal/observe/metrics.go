// Package observe provides the server's observability primitives:
// OpenTelemetry metric instruments, a Prometheus exporter bridge and HTTP
// middleware that records request latency.
//
// Tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dmitrijs2005/talkscribe"

// Metrics holds the OpenTelemetry instruments used by the server. The OTel
// types handle their own synchronisation.
type Metrics struct {
	// ASRDuration tracks the upstream speech-to-text call latency.
	ASRDuration metric.Float64Histogram

	// ASRRequests counts relay calls. Attributes: status.
	ASRRequests metric.Int64Counter

	// TranslationRequests counts translation attempts. Attributes: provider, status.
	TranslationRequests metric.Int64Counter

	// TranscriptsCreated counts persisted transcripts.
	TranscriptsCreated metric.Int64Counter

	// AuthFailures counts rejected logins and tokens. Attributes: reason.
	AuthFailures metric.Int64Counter

	// HTTPRequestDuration tracks handler time. Attributes: method, path, status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ASRDuration, err = m.Float64Histogram("talkscribe.asr.duration",
		metric.WithDescription("Latency of the hosted speech-to-text call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ASRRequests, err = m.Int64Counter("talkscribe.asr.requests",
		metric.WithDescription("Total ASR relay requests by status."),
	); err != nil {
		return nil, err
	}
	if met.TranslationRequests, err = m.Int64Counter("talkscribe.translation.requests",
		metric.WithDescription("Total translation attempts by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptsCreated, err = m.Int64Counter("talkscribe.transcripts.created",
		metric.WithDescription("Total transcripts persisted."),
	); err != nil {
		return nil, err
	}
	if met.AuthFailures, err = m.Int64Counter("talkscribe.auth.failures",
		metric.WithDescription("Total rejected authentication attempts by reason."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("talkscribe.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}
