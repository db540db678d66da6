package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/docsync/server/observability"

// HTTPTelemetry instruments the API surface: one server span per request
// plus request count, duration and in-flight instruments. The route
// attribute uses the chi route pattern, not the raw path, so link and
// document IDs never blow up metric cardinality.
type HTTPTelemetry struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	inFlight        metric.Int64UpDownCounter
}

// NewHTTPTelemetry creates the HTTP instrumentation
func NewHTTPTelemetry() (*HTTPTelemetry, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"docsync.http.request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"docsync.http.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"docsync.http.in_flight",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPTelemetry{
		tracer:          otel.Tracer(instrumentationName),
		propagator:      otel.GetTextMapPropagator(),
		requestCount:    requestCount,
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}, nil
}

// Middleware wraps the handler chain with tracing and metrics
func (t *HTTPTelemetry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := t.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := t.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.host", r.Host),
				attribute.String("net.peer.ip", r.RemoteAddr),
			),
		)
		defer span.End()

		t.inFlight.Add(ctx, 1)
		defer t.inFlight.Add(ctx, -1)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", sw.status),
		}
		t.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		t.requestDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(attrs...))

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", sw.status),
		)
		if sw.status >= 400 {
			span.SetStatus(codes.Error, http.StatusText(sw.status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}

// statusWriter captures the response status for span and metric attributes.
// It must keep hijacking available or the websocket upgrade on /ws/events
// breaks.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
