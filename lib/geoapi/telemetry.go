package geoapi

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("lib/geoapi")
