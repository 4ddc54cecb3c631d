package geoapi

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TaskState string

const (
	TaskPending   TaskState = "PENDING"
	TaskReady     TaskState = "READY"
	TaskRunning   TaskState = "RUNNING"
	TaskCompleted TaskState = "COMPLETED"
	TaskFailed    TaskState = "FAILED"
	TaskCancelled TaskState = "CANCELLED"
)

// Terminal reports whether the task will never change state again.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// Destination names where the platform materializes an export inside
// its attached cloud storage.
type Destination struct {
	Bucket     string `json:"bucket"`
	Folder     string `json:"folder"`
	FilePrefix string `json:"filePrefix"`
	// "GEOTIFF" for rasters, "SHP" or "GEOJSON" for tables
	Format string `json:"format"`
}

type ImageExport struct {
	Image       Image
	Destination Destination
	// output resolution in meters per pixel
	Scale float64
	// server-side guard against accidentally exporting the continent
	MaxPixels int64
}

type TableExport struct {
	Table       Table
	Destination Destination
}

// Task is the platform's handle to an asynchronous export job.
type Task struct {
	Id             string    `json:"id"`
	State          TaskState `json:"state"`
	Progress       float64   `json:"progress"`
	DestinationUri string    `json:"destinationUri"`
	Error          string    `json:"error"`
}

func (c *Client) ExportImage(ctx context.Context, req ImageExport) (Task, error) {
	ctx, span := tracer.Start(ctx, "client:ExportImage")
	defer span.End()

	span.SetAttributes(
		attribute.String("image", req.Image.Id),
		attribute.String("bucket", req.Destination.Bucket),
		attribute.String("folder", req.Destination.Folder),
	)

	return c.submitExport(ctx, span, "/v1/exports:image", map[string]any{
		"project":     c.Project,
		"image":       req.Image.Id,
		"destination": req.Destination,
		"scale":       req.Scale,
		"maxPixels":   req.MaxPixels,
	})
}

func (c *Client) ExportTable(ctx context.Context, req TableExport) (Task, error) {
	ctx, span := tracer.Start(ctx, "client:ExportTable")
	defer span.End()

	span.SetAttributes(
		attribute.String("table", req.Table.Id),
		attribute.String("bucket", req.Destination.Bucket),
		attribute.String("folder", req.Destination.Folder),
	)

	return c.submitExport(ctx, span, "/v1/exports:table", map[string]any{
		"project":     c.Project,
		"table":       req.Table.Id,
		"destination": req.Destination,
	})
}

func (c *Client) submitExport(ctx context.Context, span trace.Span, path string, body map[string]any) (Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit export")
		return Task{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Task{}, err
	}
	span.SetAttributes(attribute.String("task", out.Task.Id))
	return out.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	ctx, span := tracer.Start(ctx, "client:GetTask")
	defer span.End()

	span.SetAttributes(attribute.String("task", id))

	var out struct {
		Task Task `json:"task"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v1/exports/" + id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch task")
		return Task{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Task{}, err
	}
	return out.Task, nil
}

func (c *Client) CancelTask(ctx context.Context, id string) (Task, error) {
	ctx, span := tracer.Start(ctx, "client:CancelTask")
	defer span.End()

	span.SetAttributes(attribute.String("task", id))

	var out struct {
		Task Task `json:"task"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetResult(&out).
		Post("/v1/exports/" + id + ":cancel")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to cancel task")
		return Task{}, err
	}
	if res.IsError() {
		err := apiError(res)
		span.SetStatus(codes.Error, err.Error())
		return Task{}, err
	}
	return out.Task, nil
}
