package gridapi

// JobStatus is a job lifecycle status reported by the gateway.
//
// NOTE: These values come over the wire and are part of the gateway's
// stable contract. Do not rename.
type JobStatus string

const (
	StatusPending          JobStatus = "PENDING"
	StatusProcessingInputs JobStatus = "PROCESSING_INPUTS"
	StatusStagingInputs    JobStatus = "STAGING_INPUTS"
	StatusStaged           JobStatus = "STAGED"
	StatusStagingJob       JobStatus = "STAGING_JOB"
	StatusSubmittingJob    JobStatus = "SUBMITTING_JOB"
	StatusQueued           JobStatus = "QUEUED"
	StatusRunning          JobStatus = "RUNNING"
	StatusCleaningUp       JobStatus = "CLEANING_UP"
	StatusArchiving        JobStatus = "ARCHIVING"
	StatusFinished         JobStatus = "FINISHED"
	StatusFailed           JobStatus = "FAILED"
	StatusCancelled        JobStatus = "CANCELLED"
	StatusStopped          JobStatus = "STOPPED"
	StatusArchivingFailed  JobStatus = "ARCHIVING_FAILED"
)

// waitingStatuses covers everything before the job begins execution.
var waitingStatuses = map[JobStatus]struct{}{
	StatusPending:          {},
	StatusProcessingInputs: {},
	StatusStagingInputs:    {},
	StatusStaged:           {},
	StatusStagingJob:       {},
	StatusSubmittingJob:    {},
	StatusQueued:           {},
}

// activeStatuses covers execution and post-processing stages.
var activeStatuses = map[JobStatus]struct{}{
	StatusRunning:    {},
	StatusCleaningUp: {},
	StatusArchiving:  {},
}

// terminalStatuses are absorbing: once reached, a job never transitions again.
var terminalStatuses = map[JobStatus]struct{}{
	StatusFinished:        {},
	StatusFailed:          {},
	StatusCancelled:       {},
	StatusStopped:         {},
	StatusArchivingFailed: {},
}

// String returns the wire representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// IsWaiting reports whether the job has not yet left the pre-execution phase.
func (s JobStatus) IsWaiting() bool {
	_, ok := waitingStatuses[s]
	return ok
}

// IsActive reports whether the job is executing or post-processing.
func (s JobStatus) IsActive() bool {
	_, ok := activeStatuses[s]
	return ok
}

// IsTerminal reports whether the status is absorbing.
func (s JobStatus) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// TerminalStatuses returns the absorbing statuses in a stable order.
func TerminalStatuses() []JobStatus {
	return []JobStatus{
		StatusFinished,
		StatusFailed,
		StatusCancelled,
		StatusStopped,
		StatusArchivingFailed,
	}
}
