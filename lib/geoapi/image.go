package geoapi

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Image is a server-side handle to a raster computation.
type Image struct {
	Id string `json:"id"`
}

// ClipImage clips a raster catalog asset to a geometry handle. the
// clip executes lazily on the platform, the returned handle is only
// materialized by an export.
func (c *Client) ClipImage(ctx context.Context, asset string, region Geometry) (Image, error) {
	ctx, span := tracer.Start(ctx, "client:ClipImage")
	defer span.End()

	span.SetAttributes(
		attribute.String("asset", asset),
		attribute.String("geometry", region.Id),
	)

	var out struct {
		Image Image `json:"image"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"project":  c.Project,
			"asset":    asset,
			"geometry": region.Id,
		}).
		SetResult(&out).
		Post("/v1/images:clip")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clip image")
		return Image{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Image{}, err
	}
	return out.Image, nil
}
