package basinexport

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/basinexport")
var meter = otel.Meter("services/basinexport")
