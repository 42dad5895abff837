// Package jobtrack owns the local lifecycle of one submitted gateway job.
//
// A Job caches the last observed status and details snapshot so terminal
// jobs never trigger another network call, and drives the blocking
// monitor loop. A Job is intended for exclusive use by one caller; it
// carries no internal locking because the gateway job it tracks is queried
// sequentially by its owner.
package jobtrack

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Job tracks one submitted gateway job.
type Job struct {
	jobUUID string
	api     gridapi.JobAPI
	files   gridapi.FileAPI
	logger  *zap.Logger

	lastStatus gridapi.JobStatus
	details    *gridapi.JobDetails
}

// Option configures a Job at construction.
type Option func(*Job)

// WithLogger attaches a logger for status transition logging.
func WithLogger(logger *zap.Logger) Option {
	return func(j *Job) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithFileAPI attaches the listing surface needed by ListOutputs.
func WithFileAPI(files gridapi.FileAPI) Option {
	return func(j *Job) { j.files = files }
}

// New creates a Job for jobUUID.
//
// A malformed UUID is a contract violation and fails here, never later:
// every subsequent operation assumes the identifier is valid.
func New(api gridapi.JobAPI, jobUUID string, opts ...Option) (*Job, error) {
	if api == nil {
		return nil, fmt.Errorf("job API is required")
	}
	if _, err := uuid.Parse(jobUUID); err != nil {
		return nil, fmt.Errorf("malformed job uuid %q: %w", jobUUID, err)
	}
	j := &Job{
		jobUUID: jobUUID,
		api:     api,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// UUID returns the job's identifier.
func (j *Job) UUID() string {
	return j.jobUUID
}

// LastStatus returns the cached status without any network call.
// Empty until the first refresh.
func (j *Job) LastStatus() gridapi.JobStatus {
	return j.lastStatus
}

// Status returns the job's status.
//
// Terminal statuses are absorbing: once cached, they are returned without
// a network call unless forceRefresh is set. A refresh that observes a
// different status invalidates the cached details snapshot.
func (j *Job) Status(ctx context.Context, forceRefresh bool) (gridapi.JobStatus, error) {
	if !forceRefresh && j.lastStatus.IsTerminal() {
		return j.lastStatus, nil
	}

	status, err := j.api.GetStatus(ctx, j.jobUUID)
	if err != nil {
		return "", fmt.Errorf("get status for job %s: %w", j.jobUUID, err)
	}
	if status != j.lastStatus {
		j.logger.Debug("job status changed",
			zap.String("job_uuid", j.jobUUID),
			zap.String("from", j.lastStatus.String()),
			zap.String("to", status.String()))
		// The details snapshot may now be stale.
		if j.details != nil && j.details.Status != status {
			j.details = nil
		}
		j.lastStatus = status
	}
	return j.lastStatus, nil
}

// Details returns the cached details snapshot, fetching when absent or
// when forceRefresh is set.
func (j *Job) Details(ctx context.Context, forceRefresh bool) (*gridapi.JobDetails, error) {
	if j.details != nil && !forceRefresh {
		return j.details, nil
	}
	details, err := j.api.GetDetails(ctx, j.jobUUID)
	if err != nil {
		return nil, fmt.Errorf("get details for job %s: %w", j.jobUUID, err)
	}
	j.details = details
	j.lastStatus = details.Status
	return j.details, nil
}

// History returns the job's append-only history, oldest first.
func (j *Job) History(ctx context.Context) ([]gridapi.HistoryEvent, error) {
	hist, err := j.api.GetHistory(ctx, j.jobUUID)
	if err != nil {
		return nil, fmt.Errorf("get history for job %s: %w", j.jobUUID, err)
	}
	return hist, nil
}

// Cancel requests cancellation of the job.
//
// A bad-request rejection means the job is already terminal; the cache is
// reconciled with a forced status refresh instead of propagating the
// error. Any other failure is surfaced.
func (j *Job) Cancel(ctx context.Context) error {
	err := j.api.Cancel(ctx, j.jobUUID)
	if err == nil {
		// Cancellation takes effect asynchronously; drop the caches so the
		// next query observes the authoritative state.
		j.lastStatus = ""
		j.details = nil
		return nil
	}

	if gridapi.IsBadRequest(err) {
		j.logger.Info("cancel rejected; job is likely terminal, refreshing status",
			zap.String("job_uuid", j.jobUUID))
		if _, rerr := j.Status(ctx, true); rerr != nil {
			return fmt.Errorf("reconcile status after rejected cancel of job %s: %w", j.jobUUID, rerr)
		}
		return nil
	}
	return fmt.Errorf("cancel job %s: %w", j.jobUUID, err)
}
