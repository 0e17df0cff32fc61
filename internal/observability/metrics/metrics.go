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
}

// Metrics exposes pricing instruments. A nil *Metrics records nothing.
type Metrics struct {
	quotes          metric.Int64Counter
	quoteDuration   metric.Float64Histogram
	discounts       metric.Int64Counter
	ruleResolutions metric.Int64Counter
	priceCache      metric.Int64Counter
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

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the pricing instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "orderpricing"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("orderpricing_quotes_total")
	if err != nil {
		return nil, err
	}
	quoteDuration, err := meter.Float64Histogram("orderpricing_quote_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	discounts, err := meter.Int64Counter("orderpricing_discounts_total")
	if err != nil {
		return nil, err
	}
	ruleResolutions, err := meter.Int64Counter("orderpricing_shipping_rule_resolutions_total")
	if err != nil {
		return nil, err
	}
	priceCache, err := meter.Int64Counter("orderpricing_product_price_cache_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:          quotes,
		quoteDuration:   quoteDuration,
		discounts:       discounts,
		ruleResolutions: ruleResolutions,
		priceCache:      priceCache,
	}, nil
}

// RecordQuote records one order quote and its latency.
func (m *Metrics) RecordQuote(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.quoteDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDiscount increments discount outcomes by source (coupon, auto, gift_card).
func (m *Metrics) RecordDiscount(ctx context.Context, source, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("source", strings.TrimSpace(source)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.discounts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRuleResolution increments conditional shipping rule resolutions.
func (m *Metrics) RecordRuleResolution(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.ruleResolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPriceCache increments product price cache hits and misses.
func (m *Metrics) RecordPriceCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	attrs := FilterAttributes(attribute.String("outcome", outcome))
	m.priceCache.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Workspace and entity ids are deliberately absent.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome": {},
	"source":  {},
	"mode":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
