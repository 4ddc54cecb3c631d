package basinexport

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"time"

	"hydroclip/lib/geoapi"
	"hydroclip/services/basinexport/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var ErrUnknownRegion = fmt.Errorf("region is not present in the configuration")
var ErrNoBasins = fmt.Errorf("no watershed boundaries matched the configured HUC identifiers")

type Service struct {
	client           *geoapi.Client
	db               *sql.DB
	qry              *db.Queries
	config           Config
	submittedCounter metric.Int64Counter
}

func NewService(client *geoapi.Client, database *sql.DB, config Config) (Service, error) {
	submittedCounter, err := meter.Int64Counter(
		"export_jobs_submitted_total",
		metric.WithDescription("The total amount of export jobs submitted to the platform."),
	)
	if err != nil {
		return Service{}, err
	}
	return Service{
		client:           client,
		db:               database,
		qry:              db.New(database),
		config:           config,
		submittedCounter: submittedCounter,
	}, nil
}

func (s Service) Regions() map[string][]string {
	return s.config.Regions
}

// RegionReport summarizes one export run: which identifiers matched,
// which were unknown (with closest-catalog suggestions), and the two
// submitted tasks.
type RegionReport struct {
	RunId         string
	Region        string
	Requested     int
	Matched       int
	Unknown       []UnknownId
	DemTask       geoapi.Task
	FlowlinesTask geoapi.Task
}

// ExportRegion runs the whole workflow for one configured region:
// select the watershed boundaries by HUC id, union them, bounds-filter
// the hydrography collection, clip the DEM, then submit one raster and
// one table export. both jobs are recorded in the manifest under a
// fresh run id.
func (s Service) ExportRegion(ctx context.Context, region string) (RegionReport, error) {
	ctx, span := tracer.Start(ctx, "ExportRegion")
	defer span.End()

	span.SetAttributes(attribute.String("region", region))

	ids, ok := s.config.Regions[region]
	if !ok {
		span.SetStatus(codes.Error, ErrUnknownRegion.Error())
		return RegionReport{}, fmt.Errorf("%q: %w", region, ErrUnknownRegion)
	}

	report := RegionReport{
		RunId:     uuid.NewString(),
		Region:    region,
		Requested: len(ids),
	}

	basins, err := s.client.FilterTable(ctx, s.config.Catalog.WatershedAsset, s.config.Catalog.HucProperty, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to filter watershed boundaries")
		return report, err
	}
	report.Matched = basins.FeatureCount

	if basins.FeatureCount < len(ids) {
		report.Unknown = s.diagnoseUnknownIds(ctx, ids)
	}
	if basins.FeatureCount == 0 {
		span.SetStatus(codes.Error, ErrNoBasins.Error())
		return report, ErrNoBasins
	}

	boundary, err := s.client.UnionTable(ctx, basins)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to union watershed boundaries")
		return report, err
	}

	flowlines, err := s.client.FilterTableBounds(ctx, s.config.Catalog.HydrographyAsset, boundary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to filter hydrography by bounds")
		return report, err
	}

	dem, err := s.client.ClipImage(ctx, s.config.Catalog.DemAsset, boundary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clip dem")
		return report, err
	}

	// each job is written to the manifest as soon as the platform
	// accepts it, a later submission failure must not orphan a task
	// that is already running remotely
	report.DemTask, err = s.client.ExportImage(ctx, geoapi.ImageExport{
		Image:       dem,
		Destination: s.destination(region, region+"_dem", s.config.Export.ImageFormat),
		Scale:       s.config.Export.Scale,
		MaxPixels:   s.config.Export.MaxPixels,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit dem export")
		return report, err
	}
	err = s.recordJob(ctx, report, report.DemTask, "dem")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record dem job in manifest")
		return report, err
	}
	s.submittedCounter.Add(ctx, 1)

	report.FlowlinesTask, err = s.client.ExportTable(ctx, geoapi.TableExport{
		Table:       flowlines,
		Destination: s.destination(region, region+"_flowlines", s.config.Export.TableFormat),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit flowlines export")
		return report, err
	}
	err = s.recordJob(ctx, report, report.FlowlinesTask, "flowlines")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record flowlines job in manifest")
		return report, err
	}
	s.submittedCounter.Add(ctx, 1)

	return report, nil
}

func (s Service) destination(region, prefix, format string) geoapi.Destination {
	return geoapi.Destination{
		Bucket:     s.config.Export.Bucket,
		Folder:     path.Join(s.config.Export.Folder, region),
		FilePrefix: prefix,
		Format:     format,
	}
}

func (s Service) diagnoseUnknownIds(ctx context.Context, requested []string) []UnknownId {
	ctx, span := tracer.Start(ctx, "diagnoseUnknownIds")
	defer span.End()

	catalog, err := s.client.AggregateProperty(
		ctx, s.config.Catalog.WatershedAsset, s.config.Catalog.HucProperty,
	)
	if err != nil {
		// diagnostics only, the export decision is made from the
		// feature count
		span.RecordError(err)
		return nil
	}
	return SuggestIds(MissingIds(requested, catalog), catalog)
}

func (s Service) recordJob(ctx context.Context, report RegionReport, task geoapi.Task, kind string) error {
	now := time.Now().Unix()
	return s.qry.CreateExportJob(ctx, db.CreateExportJobParams{
		TaskId:         task.Id,
		RunId:          report.RunId,
		Region:         report.Region,
		Kind:           kind,
		State:          string(task.State),
		DestinationUri: task.DestinationUri,
		Error:          task.Error,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// Transition is a job whose stored state changed during a refresh
// pass.
type Transition struct {
	Job      db.ExportJob
	Previous string
}

// RefreshJobs polls the platform once for every non-terminal job in
// the manifest and persists the new states.
func (s Service) RefreshJobs(ctx context.Context) ([]Transition, error) {
	ctx, span := tracer.Start(ctx, "RefreshJobs")
	defer span.End()

	active, err := s.qry.ListActiveExportJobs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list active jobs")
		return nil, err
	}
	span.SetAttributes(attribute.Int("active", len(active)))

	var transitions []Transition
	for _, job := range active {
		task, err := s.client.GetTask(ctx, job.TaskId)
		if err != nil {
			span.RecordError(err)
			continue
		}
		if string(task.State) == job.State {
			continue
		}

		previous := job.State
		job.State = string(task.State)
		job.DestinationUri = task.DestinationUri
		job.Error = task.Error
		job.UpdatedAt = time.Now().Unix()

		err = s.qry.UpdateExportJobState(ctx, db.UpdateExportJobStateParams{
			TaskId:         job.TaskId,
			State:          job.State,
			DestinationUri: job.DestinationUri,
			Error:          job.Error,
			UpdatedAt:      job.UpdatedAt,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to persist job state")
			return transitions, err
		}
		transitions = append(transitions, Transition{Job: job, Previous: previous})
	}
	return transitions, nil
}

func (s Service) ListJobs(ctx context.Context) ([]db.ExportJob, error) {
	ctx, span := tracer.Start(ctx, "ListJobs")
	defer span.End()

	jobs, err := s.qry.ListExportJobs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list jobs")
		return nil, err
	}
	return jobs, nil
}

// CancelJob asks the platform to cancel a task and records the state
// it settles into.
func (s Service) CancelJob(ctx context.Context, taskId string) (db.ExportJob, error) {
	ctx, span := tracer.Start(ctx, "CancelJob")
	defer span.End()

	span.SetAttributes(attribute.String("task", taskId))

	job, err := s.qry.GetExportJob(ctx, taskId)
	if err != nil {
		span.SetStatus(codes.Error, "task is not present in the manifest")
		return db.ExportJob{}, err
	}

	task, err := s.client.CancelTask(ctx, taskId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to cancel task")
		return job, err
	}

	job.State = string(task.State)
	job.DestinationUri = task.DestinationUri
	job.Error = task.Error
	job.UpdatedAt = time.Now().Unix()
	err = s.qry.UpdateExportJobState(ctx, db.UpdateExportJobStateParams{
		TaskId:         job.TaskId,
		State:          job.State,
		DestinationUri: job.DestinationUri,
		Error:          job.Error,
		UpdatedAt:      job.UpdatedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist cancelled state")
		return job, err
	}
	return job, nil
}
