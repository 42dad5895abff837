package jobregistry

import (
	"time"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Record is the persistent record written to job.json for one submitted
// gateway job.
//
// NOTE: Field names are part of the stable on-disk contract. The schema is
// designed for backward-compatible extension (additive fields).
type Record struct {
	JobUUID      string `json:"job_uuid"`
	Name         string `json:"name,omitempty"`
	AppID        string `json:"app_id"`
	AppVersion   string `json:"app_version,omitempty"`
	InputURI     string `json:"input_uri,omitempty"`
	ManifestPath string `json:"manifest_path,omitempty"`

	// LastStatus is the most recently observed gateway status. It is a
	// convenience snapshot, not authoritative; the gateway is.
	LastStatus gridapi.JobStatus `json:"last_status,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	CheckedAt   *time.Time `json:"checked_at,omitempty"`

	ArchiveSystemID  string `json:"archive_system_id,omitempty"`
	ArchiveSystemDir string `json:"archive_system_dir,omitempty"`
}
