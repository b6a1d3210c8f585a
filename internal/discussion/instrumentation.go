package discussion

import (
	"go.opentelemetry.io/otel"
)

const scopeName = "symposium/internal/discussion"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
)
