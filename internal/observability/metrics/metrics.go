package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	priceCalculations    metric.Int64Counter
	discountApplications metric.Int64Counter
	bundleRecomputes     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "mentorly"
	}
	meter := provider.Meter(name)

	priceCalculations, err := meter.Int64Counter("mentorly_price_calculations_total")
	if err != nil {
		return nil, err
	}
	discountApplications, err := meter.Int64Counter("mentorly_discount_applications_total")
	if err != nil {
		return nil, err
	}
	bundleRecomputes, err := meter.Int64Counter("mentorly_bundle_recomputes_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		priceCalculations:    priceCalculations,
		discountApplications: discountApplications,
		bundleRecomputes:     bundleRecomputes,
	}, nil
}

// RecordPriceCalculation increments session price calculation counts.
func (m *Metrics) RecordPriceCalculation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.priceCalculations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", strings.TrimSpace(outcome)),
	))
}

// RecordDiscountApplication increments discount application counts.
func (m *Metrics) RecordDiscountApplication(ctx context.Context, ruleType string, applied bool) {
	if m == nil {
		return
	}
	m.discountApplications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rule_type", strings.TrimSpace(ruleType)),
		attribute.Bool("applied", applied),
	))
}

// RecordBundleRecompute increments bundle final price recompute counts.
func (m *Metrics) RecordBundleRecompute(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.bundleRecomputes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
	))
}
