package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumeforge/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds the settings the manager needs at init time.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds every custom instrument Resumeforge records.
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	ResumesScored        metric.Int64Counter
	ResumesOptimized     metric.Int64Counter
	KeywordsExtracted    metric.Int64Counter
	OptimizationAttempts metric.Int64Histogram
	ScoreImprovement     metric.Int64Histogram

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager owns the tracer and meter providers and the
// custom instruments built on top of them.
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config // nested settings (OTLP, metrics toggles)
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewObservabilityManager wires up tracing and metrics. When observability
// is disabled it returns an inert manager whose methods are all no-ops.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

func (om *ObservabilityManager) initTracing() error {
	exporter, err := om.selectSpanExporter()
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// selectSpanExporter picks the span destination: stdout in development,
// OTLP when an endpoint is configured, otherwise a discard exporter.
func (om *ObservabilityManager) selectSpanExporter() (trace.SpanExporter, error) {
	switch {
	case om.config.ConsoleOutput:
		var opts []stdouttrace.Option
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled:
		return om.createOTLPExporter()
	default:
		return discardSpanExporter{}, nil
	}
}

func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		mpOpts = append(mpOpts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(mpOpts...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders collects one reader per enabled export path. With
// nothing enabled it falls back to a manual reader so instrument creation
// still succeeds.
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	for _, build := range []func() (sdkmetric.Reader, error){
		om.buildConsoleReader,
		om.buildOTLPReader,
		om.buildPrometheusReader,
	} {
		reader, err := build()
		if err != nil {
			return nil, err
		}
		if reader != nil {
			readers = append(readers, reader)
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

func (om *ObservabilityManager) buildConsoleReader() (sdkmetric.Reader, error) {
	if !om.config.ConsoleOutput {
		return nil, nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func (om *ObservabilityManager) buildOTLPReader() (sdkmetric.Reader, error) {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil, nil
	}

	reader, err := om.createOTLPMetricsReader()
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	return reader, nil
}

// buildPrometheusReader also starts the scrape endpoint as a side effect,
// since the reader is useless without a server to expose it.
func (om *ObservabilityManager) buildPrometheusReader() (sdkmetric.Reader, error) {
	if !om.config.Prometheus.Enabled {
		return nil, nil
	}

	reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if reader == nil {
		return nil, nil
	}

	om.prometheusServer = mux
	if err := StartPrometheusServer(mux, om.config.Prometheus.Port); err != nil {
		return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
	}
	return reader, nil
}

func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initCustomMetrics registers every instrument in Metrics against the
// service meter.
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	var err error
	om.metrics.AIProcessingTime, err = meter.Float64Histogram(
		"resumeforge_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create metric resumeforge_ai_processing_duration_seconds: %w", err)
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&om.metrics.AIRequestCount, "resumeforge_ai_requests_total", "Total number of AI requests"},
		{&om.metrics.AIErrorCount, "resumeforge_ai_errors_total", "Total number of AI request errors"},
		{&om.metrics.ResumesScored, "resumeforge_resumes_scored_total", "Total number of resumes scored"},
		{&om.metrics.ResumesOptimized, "resumeforge_resumes_optimized_total", "Total number of resumes optimized"},
		{&om.metrics.KeywordsExtracted, "resumeforge_keywords_extracted_total", "Total number of keyword extractions"},
		{&om.metrics.RateLimitHits, "resumeforge_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return fmt.Errorf("failed to create metric %s: %w", c.name, err)
		}
	}

	histograms := []struct {
		dst  *metric.Int64Histogram
		name string
		desc string
		unit string
	}{
		{&om.metrics.AITokenUsage, "resumeforge_ai_token_usage_total", "Token usage for AI requests (input, output, total)", "tokens"},
		{&om.metrics.OptimizationAttempts, "resumeforge_optimization_attempts", "Regeneration attempts used per optimization run", ""},
		{&om.metrics.ScoreImprovement, "resumeforge_score_improvement", "Score improvement achieved per optimization run", ""},
	}
	for _, h := range histograms {
		opts := []metric.Int64HistogramOption{metric.WithDescription(h.desc)}
		if h.unit != "" {
			opts = append(opts, metric.WithUnit(h.unit))
		}
		if *h.dst, err = meter.Int64Histogram(h.name, opts...); err != nil {
			return fmt.Errorf("failed to create metric %s: %w", h.name, err)
		}
	}

	return nil
}

// GetMetrics returns the registered instruments. Before initialization it
// returns an empty Metrics whose record helpers all no-op.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware wraps handlers with otelhttp instrumentation, or passes
// them through untouched when observability is disabled.
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer scoped to name, or a noop tracer when disabled.
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes and stops every provider this manager started.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AIOperationResult carries the outcome of an instrumented AI call.
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage mirrors the token counts reported by the model API.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperationWithTokens runs fn inside a span and records duration,
// request/error counters, and token usage for the operation.
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult, om *ObservabilityManager) error {
	if m.AIProcessingTime == nil {
		// Instruments were never registered, run the call untracked.
		result := fn(ctx)
		if result != nil {
			return result.Error
		}
		return nil
	}

	metricsEnabled := m.isMetricsEnabled(om)

	tracer := otel.Tracer("resumeforge.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if metricsEnabled {
		m.recordAIMetrics(ctx, operation, err, duration, result, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func (m *Metrics) isMetricsEnabled(om *ObservabilityManager) bool {
	if om == nil || om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.Metrics.Enabled
}

func (m *Metrics) recordAIMetrics(ctx context.Context, operation string, err error, duration float64, result *AIOperationResult, span oteltrace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.recordTokenUsage(ctx, result, attrs, span)

	span.SetAttributes(attrs...)
}

// recordTokenUsage splits the usage report into one histogram sample per
// token type and mirrors the raw counts onto the span.
func (m *Metrics) recordTokenUsage(ctx context.Context, result *AIOperationResult, attrs []attribute.KeyValue, span oteltrace.Span) {
	if result == nil || result.TokenUsage == nil || m.AITokenUsage == nil {
		return
	}
	usage := result.TokenUsage

	for _, sample := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		tokenAttrs := append(attrs, attribute.String("token_type", sample.tokenType))
		m.AITokenUsage.Record(ctx, sample.value, metric.WithAttributes(tokenAttrs...))
	}

	// Token counts always go on the trace, even when metrics are off.
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
}

// RecordBusinessMetric increments the counter matching metricType. Unknown
// types are ignored.
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, om *ObservabilityManager, attributes ...attribute.KeyValue) {
	if !m.isMetricsEnabled(om) {
		return
	}

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case "resume_scored":
		counter = m.ResumesScored
	case "resume_optimized":
		counter = m.ResumesOptimized
	case "keywords_extracted":
		counter = m.KeywordsExtracted
	case "rate_limit_hit":
		counter = m.RateLimitHits
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordOptimizationRun records the attempt count and score delta for a
// finished optimization run.
func (m *Metrics) RecordOptimizationRun(ctx context.Context, attempts, improvement int, reachedTarget bool, om *ObservabilityManager) {
	if !m.isMetricsEnabled(om) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("reached_target", reachedTarget),
	}
	if m.OptimizationAttempts != nil {
		m.OptimizationAttempts.Record(ctx, int64(attempts), metric.WithAttributes(attrs...))
	}
	if m.ScoreImprovement != nil {
		m.ScoreImprovement.Record(ctx, int64(improvement), metric.WithAttributes(attrs...))
	}
}

// discardSpanExporter drops spans when no real exporter is configured.
type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (discardSpanExporter) Shutdown(context.Context) error                          { return nil }

func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	opts, err := otlpTraceOptions(om.fullConfig)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	opts, err := otlpMetricOptions(om.fullConfig)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

func otlpTraceOptions(cfg *config.Config) ([]otlptracehttp.Option, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}
	otlp := cfg.Observability.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}
	return opts, nil
}

func otlpMetricOptions(cfg *config.Config) ([]otlpmetrichttp.Option, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}
	otlp := cfg.Observability.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}
	return opts, nil
}

func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return "resumeforge-1"
}

func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
