package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ExportJob mirrors one row of export_jobs. `kind` is "dem" or
// "flowlines", `state` is the platform task state last observed.
type ExportJob struct {
	TaskId         string
	RunId          string
	Region         string
	Kind           string
	State          string
	DestinationUri string
	Error          string
	CreatedAt      int64
	UpdatedAt      int64
}

const createExportJob = `
INSERT INTO export_jobs (task_id, run_id, region, kind, state, destination_uri, error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateExportJobParams struct {
	TaskId         string
	RunId          string
	Region         string
	Kind           string
	State          string
	DestinationUri string
	Error          string
	CreatedAt      int64
	UpdatedAt      int64
}

func (q *Queries) CreateExportJob(ctx context.Context, arg CreateExportJobParams) error {
	_, err := q.db.ExecContext(ctx, createExportJob,
		arg.TaskId,
		arg.RunId,
		arg.Region,
		arg.Kind,
		arg.State,
		arg.DestinationUri,
		arg.Error,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getExportJob = `
SELECT task_id, run_id, region, kind, state, destination_uri, error, created_at, updated_at
FROM export_jobs WHERE task_id = ?
`

func (q *Queries) GetExportJob(ctx context.Context, taskId string) (ExportJob, error) {
	row := q.db.QueryRowContext(ctx, getExportJob, taskId)
	var j ExportJob
	err := row.Scan(
		&j.TaskId,
		&j.RunId,
		&j.Region,
		&j.Kind,
		&j.State,
		&j.DestinationUri,
		&j.Error,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

const listExportJobs = `
SELECT task_id, run_id, region, kind, state, destination_uri, error, created_at, updated_at
FROM export_jobs ORDER BY created_at DESC, task_id
`

func (q *Queries) ListExportJobs(ctx context.Context) ([]ExportJob, error) {
	rows, err := q.db.QueryContext(ctx, listExportJobs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportJob
	for rows.Next() {
		var j ExportJob
		err := rows.Scan(
			&j.TaskId,
			&j.RunId,
			&j.Region,
			&j.Kind,
			&j.State,
			&j.DestinationUri,
			&j.Error,
			&j.CreatedAt,
			&j.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

const listActiveExportJobs = `
SELECT task_id, run_id, region, kind, state, destination_uri, error, created_at, updated_at
FROM export_jobs
WHERE state NOT IN ('COMPLETED', 'FAILED', 'CANCELLED')
ORDER BY created_at, task_id
`

func (q *Queries) ListActiveExportJobs(ctx context.Context) ([]ExportJob, error) {
	rows, err := q.db.QueryContext(ctx, listActiveExportJobs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportJob
	for rows.Next() {
		var j ExportJob
		err := rows.Scan(
			&j.TaskId,
			&j.RunId,
			&j.Region,
			&j.Kind,
			&j.State,
			&j.DestinationUri,
			&j.Error,
			&j.CreatedAt,
			&j.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

const updateExportJobState = `
UPDATE export_jobs
SET state = ?, destination_uri = ?, error = ?, updated_at = ?
WHERE task_id = ?
`

type UpdateExportJobStateParams struct {
	TaskId         string
	State          string
	DestinationUri string
	Error          string
	UpdatedAt      int64
}

func (q *Queries) UpdateExportJobState(ctx context.Context, arg UpdateExportJobStateParams) error {
	_, err := q.db.ExecContext(ctx, updateExportJobState,
		arg.State,
		arg.DestinationUri,
		arg.Error,
		arg.UpdatedAt,
		arg.TaskId,
	)
	return err
}
