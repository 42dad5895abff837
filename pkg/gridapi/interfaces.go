package gridapi

import "context"

// JobAPI is the job lifecycle surface consumed by pkg/jobtrack.
type JobAPI interface {
	// Submit sends a job request and returns the assigned job UUID.
	Submit(ctx context.Context, req *JobRequest) (*SubmitResponse, error)

	// GetStatus returns the current status for a job.
	GetStatus(ctx context.Context, jobUUID string) (JobStatus, error)

	// GetDetails returns a snapshot of the job record.
	GetDetails(ctx context.Context, jobUUID string) (*JobDetails, error)

	// GetHistory returns the job's append-only history, oldest first.
	GetHistory(ctx context.Context, jobUUID string) ([]HistoryEvent, error)

	// Cancel requests cancellation of a job.
	// Returns ErrBadRequest (wrapped) when the job is already terminal.
	Cancel(ctx context.Context, jobUUID string) error
}

// AppAPI is the app template surface consumed by pkg/jobspec.
type AppAPI interface {
	// GetApp returns an app template. Empty version means latest.
	GetApp(ctx context.Context, appID, version string) (*AppTemplate, error)

	// SearchApps returns shallow summaries of apps matching term.
	SearchApps(ctx context.Context, term string) ([]AppSummary, error)
}

// SystemAPI is the storage-system lookup surface consumed by pkg/pathmap.
type SystemAPI interface {
	// SearchSystems returns candidate systems whose id starts with idPrefix
	// and whose description mentions term.
	SearchSystems(ctx context.Context, term, idPrefix string) ([]SystemSummary, error)

	// GetSystem returns a single system by exact id.
	// Returns ErrNotFound (wrapped) if the system does not exist.
	GetSystem(ctx context.Context, systemID string) (*SystemSummary, error)
}

// FileAPI is the boundary-level listing surface. Byte transfer is out of
// scope for gostratus; listings exist so job outputs can be enumerated.
type FileAPI interface {
	ListFiles(ctx context.Context, systemID, path string, limit, offset int) ([]FileInfo, error)
}
