package geoapi

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Table is a server-side handle to a filtered feature collection. the
// features themselves never leave the platform.
type Table struct {
	Id           string `json:"id"`
	FeatureCount int    `json:"featureCount"`
}

// Geometry is a server-side handle to a computed geometry.
type Geometry struct {
	Id   string `json:"id"`
	Type string `json:"type"`
}

// FilterTable selects the features of a catalog asset whose `property`
// is one of `values`. missing values are not an error, the caller
// should compare FeatureCount against len(values).
func (c *Client) FilterTable(ctx context.Context, asset, property string, values []string) (Table, error) {
	ctx, span := tracer.Start(ctx, "client:FilterTable")
	defer span.End()

	span.SetAttributes(
		attribute.String("asset", asset),
		attribute.String("property", property),
		attribute.Int("values", len(values)),
	)

	var out struct {
		Table Table `json:"table"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"project": c.Project,
			"asset":   asset,
			"filter": map[string]any{
				"property": property,
				"values":   values,
			},
		}).
		SetResult(&out).
		Post("/v1/tables:filter")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to filter table")
		return Table{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Table{}, err
	}
	return out.Table, nil
}

// FilterTableBounds selects the features of a catalog asset that
// intersect a geometry handle.
func (c *Client) FilterTableBounds(ctx context.Context, asset string, bounds Geometry) (Table, error) {
	ctx, span := tracer.Start(ctx, "client:FilterTableBounds")
	defer span.End()

	span.SetAttributes(
		attribute.String("asset", asset),
		attribute.String("geometry", bounds.Id),
	)

	var out struct {
		Table Table `json:"table"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"project":  c.Project,
			"asset":    asset,
			"geometry": bounds.Id,
		}).
		SetResult(&out).
		Post("/v1/tables:filterBounds")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to filter table by bounds")
		return Table{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Table{}, err
	}
	return out.Table, nil
}

// UnionTable dissolves all features of a table into a single geometry.
func (c *Client) UnionTable(ctx context.Context, table Table) (Geometry, error) {
	ctx, span := tracer.Start(ctx, "client:UnionTable")
	defer span.End()

	span.SetAttributes(attribute.String("table", table.Id))

	var out struct {
		Geometry Geometry `json:"geometry"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"project": c.Project,
			"table":   table.Id,
		}).
		SetResult(&out).
		Post("/v1/tables:union")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to union table")
		return Geometry{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Geometry{}, err
	}
	return out.Geometry, nil
}

// AggregateProperty returns the distinct values a property takes over
// an entire catalog asset. used to diagnose identifier typos.
func (c *Client) AggregateProperty(ctx context.Context, asset, property string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:AggregateProperty")
	defer span.End()

	span.SetAttributes(
		attribute.String("asset", asset),
		attribute.String("property", property),
	)

	var out struct {
		Values []string `json:"values"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"project":  c.Project,
			"asset":    asset,
			"property": property,
		}).
		SetResult(&out).
		Post("/v1/tables:aggregate")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to aggregate property")
		return nil, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out.Values, nil
}
