// Package metrics exposes OpenTelemetry instruments for message operations and
// HTTP traffic through a Prometheus scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Provider owns the meter provider and the registry the scrape handler reads.
type Provider struct {
	meterProvider *metric.MeterProvider
	exporter      *promexporter.Exporter
	registry      *prometheus.Registry
}

// ProviderOption configures NewProvider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	runtimeCollectors bool
}

// WithRuntimeCollectors also registers the Go runtime and process collectors.
func WithRuntimeCollectors() ProviderOption {
	return func(o *providerOptions) {
		o.runtimeCollectors = true
	}
}

// NewProvider creates a meter provider backed by a private Prometheus registry.
// The namespace is only informational here; instruments carry it as a name prefix.
func NewProvider(namespace string, opts ...ProviderOption) (*Provider, error) {
	var options providerOptions
	for _, opt := range opts {
		opt(&options)
	}

	registry := prometheus.NewRegistry()
	if options.runtimeCollectors {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("failed to register go collector: %w", err)
		}
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: namespace,
		})); err != nil {
			return nil, fmt.Errorf("failed to register process collector: %w", err)
		}
	}

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(exporter),
	)

	return &Provider{
		meterProvider: meterProvider,
		exporter:      exporter,
		registry:      registry,
	}, nil
}

// Handler serves the registry in Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// MeterProvider returns the provider used to create instruments.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
