// Package gridapi is a thin client for the HPC gateway's JSON API.
//
// The gateway owns applications, storage systems, job execution and job
// history. This package exposes only the surface the rest of gostratus
// consumes: app template retrieval, storage system lookup, job submission
// and lifecycle queries, and boundary-level file listing. It does not
// implement transfers or credential acquisition.
package gridapi

// AppTemplate is the gateway-side declaration of a runnable application.
//
// Templates carry default resources and the accepted parameter slots.
// gostratus reads them; it never writes them.
type AppTemplate struct {
	ID            string        `json:"id"`
	Version       string        `json:"version"`
	Owner         string        `json:"owner,omitempty"`
	Description   string        `json:"description,omitempty"`
	JobAttributes JobAttributes `json:"jobAttributes"`
}

// JobAttributes are the template's default execution settings.
type JobAttributes struct {
	ExecSystemID           string           `json:"execSystemId,omitempty"`
	ExecSystemLogicalQueue string           `json:"execSystemLogicalQueue,omitempty"`
	ArchiveSystemID        string           `json:"archiveSystemId,omitempty"`
	ArchiveOnAppError      bool             `json:"archiveOnAppError,omitempty"`
	IsMPI                  *bool            `json:"isMpi,omitempty"`
	CmdPrefix              string           `json:"cmdPrefix,omitempty"`
	NodeCount              int              `json:"nodeCount,omitempty"`
	CoresPerNode           int              `json:"coresPerNode,omitempty"`
	MemoryMB               int              `json:"memoryMB,omitempty"`
	MaxMinutes             int              `json:"maxMinutes,omitempty"`
	FileInputs             []FileInputDecl  `json:"fileInputs,omitempty"`
	ParameterSet           ParameterSetDecl `json:"parameterSet,omitempty"`
}

// FileInputDecl is a declared file-input slot on an app template.
type FileInputDecl struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	TargetPath     string `json:"targetPath,omitempty"`
	AutoMountLocal *bool  `json:"autoMountLocal,omitempty"`
}

// InputModeFixed marks a declared parameter the submitter may not override.
const InputModeFixed = "FIXED"

// ParameterSetDecl is the template's declared parameter surface.
type ParameterSetDecl struct {
	AppArgs          []ArgDecl `json:"appArgs,omitempty"`
	EnvVariables     []EnvDecl `json:"envVariables,omitempty"`
	SchedulerOptions []ArgDecl `json:"schedulerOptions,omitempty"`
}

// ArgDecl declares a named application argument or scheduler option.
type ArgDecl struct {
	Name      string `json:"name"`
	Arg       string `json:"arg,omitempty"`
	InputMode string `json:"inputMode,omitempty"`
}

// EnvDecl declares a named environment variable slot.
type EnvDecl struct {
	Key       string `json:"key"`
	Value     string `json:"value,omitempty"`
	InputMode string `json:"inputMode,omitempty"`
}

// Fixed reports whether the declaration may not be overridden by a submitter.
func (a ArgDecl) Fixed() bool { return a.InputMode == InputModeFixed }

// JobRequest is a fully resolved job submission body.
//
// Zero-valued optional fields are omitted from the emitted JSON so the
// request is minimal and deterministic for identical inputs.
type JobRequest struct {
	Name                   string        `json:"name"`
	AppID                  string        `json:"appId"`
	AppVersion             string        `json:"appVersion"`
	Description            string        `json:"description,omitempty"`
	Tags                   []string      `json:"tags,omitempty"`
	ExecSystemID           string        `json:"execSystemId,omitempty"`
	ExecSystemLogicalQueue string        `json:"execSystemLogicalQueue,omitempty"`
	ArchiveSystemID        string        `json:"archiveSystemId,omitempty"`
	ArchiveOnAppError      bool          `json:"archiveOnAppError"`
	IsMPI                  *bool         `json:"isMpi,omitempty"`
	CmdPrefix              string        `json:"cmdPrefix,omitempty"`
	NodeCount              int           `json:"nodeCount,omitempty"`
	CoresPerNode           int           `json:"coresPerNode,omitempty"`
	MemoryMB               int           `json:"memoryMB,omitempty"`
	MaxMinutes             int           `json:"maxMinutes,omitempty"`
	FileInputs             []FileInput   `json:"fileInputs,omitempty"`
	ParameterSet           *ParameterSet `json:"parameterSet,omitempty"`
}

// FileInput binds a declared input slot to a source URI.
type FileInput struct {
	Name           string `json:"name"`
	SourceURL      string `json:"sourceUrl"`
	TargetPath     string `json:"targetPath,omitempty"`
	AutoMountLocal *bool  `json:"autoMountLocal,omitempty"`
}

// ParameterSet partitions submitted parameters the way the gateway expects.
type ParameterSet struct {
	AppArgs          []AppArg `json:"appArgs,omitempty"`
	EnvVariables     []EnvVar `json:"envVariables,omitempty"`
	SchedulerOptions []AppArg `json:"schedulerOptions,omitempty"`
}

// Empty reports whether no parameters are present in any partition.
func (p *ParameterSet) Empty() bool {
	return p == nil || (len(p.AppArgs) == 0 && len(p.EnvVariables) == 0 && len(p.SchedulerOptions) == 0)
}

// AppArg is a named argument value in a submission.
type AppArg struct {
	Name string `json:"name"`
	Arg  string `json:"arg"`
}

// EnvVar is a named environment variable value in a submission.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SubmitResponse is the gateway's acknowledgement of a submission.
type SubmitResponse struct {
	UUID   string    `json:"uuid"`
	Status JobStatus `json:"status,omitempty"`
}

// JobDetails is a point-in-time snapshot of a submitted job.
type JobDetails struct {
	UUID             string    `json:"uuid"`
	Name             string    `json:"name,omitempty"`
	AppID            string    `json:"appId,omitempty"`
	AppVersion       string    `json:"appVersion,omitempty"`
	Status           JobStatus `json:"status"`
	ExecSystemID     string    `json:"execSystemId,omitempty"`
	MaxMinutes       int       `json:"maxMinutes,omitempty"`
	ArchiveSystemID  string    `json:"archiveSystemId,omitempty"`
	ArchiveSystemDir string    `json:"archiveSystemDir,omitempty"`
	Created          string    `json:"created,omitempty"`
	Ended            string    `json:"ended,omitempty"`
}

// HistoryEvent is one entry of a job's append-only history log.
//
// Timestamps are kept as the raw wire strings; parsing is the consumer's
// concern because a single malformed event must not poison the log.
type HistoryEvent struct {
	Event       string    `json:"event,omitempty"`
	EventDetail string    `json:"eventDetail,omitempty"`
	Status      JobStatus `json:"status,omitempty"`
	Created     string    `json:"created"`
}

// StageStatus returns the status this event attributes time to.
//
// Newer gateways set Status directly; older ones encode it as the
// eventDetail of a JOB_NEW_STATUS event.
func (e HistoryEvent) StageStatus() JobStatus {
	if e.Status != "" {
		return e.Status
	}
	return JobStatus(e.EventDetail)
}

// AppSummary is the shallow app listing returned by searches.
type AppSummary struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Owner   string `json:"owner,omitempty"`
}

// SystemSummary is the shallow storage-system record returned by lookups.
type SystemSummary struct {
	ID          string `json:"id"`
	Owner       string `json:"owner,omitempty"`
	Description string `json:"description,omitempty"`
}

// FileInfo is a single entry from a boundary-level file listing.
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size,omitempty"`
	Type         string `json:"type,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}
