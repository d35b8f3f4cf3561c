package app

import (
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTracerProvider installs a global tracer provider so service spans get
// real trace and span ids, which slogx copies onto every log line written
// inside them.
func newTracerProvider(ratio float64) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(ratio)),
	)
	otel.SetTracerProvider(tp)
	return tp
}
