package jobtrack

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Outcome is the final disposition of a Monitor call.
//
// Expected end-of-loop conditions are part of the return vocabulary, not
// errors: callers always get a disposition, never an exception to handle
// around the polling loop.
type Outcome string

const (
	// OutcomeTimeout reports the deadline elapsed before a terminal state.
	OutcomeTimeout Outcome = "TIMEOUT"

	// OutcomeInterrupted reports the caller's context was cancelled.
	OutcomeInterrupted Outcome = "INTERRUPTED"

	// OutcomeError reports an unexpected remote failure during polling.
	OutcomeError Outcome = "MONITOR_ERROR"
)

// Terminal reports whether the outcome is a terminal job status (as
// opposed to one of the monitor sentinels).
func (o Outcome) Terminal() bool {
	return gridapi.JobStatus(o).IsTerminal()
}

// Status returns the outcome as a job status, empty for sentinels.
func (o Outcome) Status() gridapi.JobStatus {
	if o.Terminal() {
		return gridapi.JobStatus(o)
	}
	return ""
}

// MonitorOptions configures a Monitor call.
type MonitorOptions struct {
	// Interval is the fixed poll interval. Default: 30s.
	Interval time.Duration

	// Timeout bounds the whole monitor call. Zero derives the timeout
	// from the job's declared max runtime; a job declaring a non-positive
	// max runtime polls indefinitely.
	Timeout time.Duration
}

// Monitor polls the job to a final disposition.
//
// The loop runs in two sub-phases against one overall deadline: a waiting
// phase until the job leaves the pre-execution states, then an active
// phase bounded by floor(timeoutSeconds/interval) polls. Monitor blocks
// the calling goroutine and performs no internal concurrency; run it on a
// dedicated goroutine if the host must stay responsive. In-flight remote
// calls are not interruptible; cancellation is observed between polls.
func (j *Job) Monitor(ctx context.Context, opts MonitorOptions) Outcome {
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	details, err := j.Details(ctx, true)
	if err != nil {
		j.logger.Warn("monitor could not fetch job details",
			zap.String("job_uuid", j.jobUUID), zap.Error(err))
		return OutcomeError
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Duration(details.MaxMinutes) * time.Minute
	}
	unbounded := timeout <= 0

	var deadline time.Time
	if !unbounded {
		deadline = time.Now().Add(timeout)
	}

	j.logger.Info("monitoring job",
		zap.String("job_uuid", j.jobUUID),
		zap.String("status", details.Status.String()),
		zap.Duration("interval", interval),
		zap.Bool("unbounded", unbounded),
		zap.Duration("timeout", timeout))

	// Waiting phase: poll until the job starts (or finishes early).
	for {
		status, err := j.Status(ctx, true)
		if err != nil {
			return j.monitorError(ctx, err)
		}
		if status.IsTerminal() {
			return Outcome(status)
		}
		if !status.IsWaiting() {
			break
		}
		if !unbounded && time.Now().After(deadline) {
			return j.timedOut(status)
		}
		if o, ok := j.sleep(ctx, interval); !ok {
			return o
		}
	}

	// Active phase: bounded poll count derived from the same deadline.
	maxPolls := -1
	if !unbounded {
		maxPolls = int(timeout.Seconds() / interval.Seconds())
	}
	for i := 0; maxPolls < 0 || i < maxPolls; i++ {
		status, err := j.Status(ctx, true)
		if err != nil {
			return j.monitorError(ctx, err)
		}
		if status.IsTerminal() {
			return Outcome(status)
		}
		if !unbounded && time.Now().After(deadline) {
			return j.timedOut(status)
		}
		if o, ok := j.sleep(ctx, interval); !ok {
			return o
		}
	}
	return j.timedOut(j.lastStatus)
}

// sleep waits one interval, observing caller interruption.
func (j *Job) sleep(ctx context.Context, interval time.Duration) (Outcome, bool) {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		j.logger.Info("monitoring interrupted",
			zap.String("job_uuid", j.jobUUID),
			zap.String("last_status", j.lastStatus.String()))
		return OutcomeInterrupted, false
	case <-timer.C:
		return "", true
	}
}

func (j *Job) monitorError(ctx context.Context, err error) Outcome {
	// A remote call that failed because the caller gave up is an
	// interruption, not a gateway fault.
	if ctx.Err() != nil {
		j.logger.Info("monitoring interrupted",
			zap.String("job_uuid", j.jobUUID),
			zap.String("last_status", j.lastStatus.String()))
		return OutcomeInterrupted
	}
	j.logger.Warn("monitoring failed on remote call",
		zap.String("job_uuid", j.jobUUID), zap.Error(err))
	return OutcomeError
}

func (j *Job) timedOut(last gridapi.JobStatus) Outcome {
	j.logger.Warn("monitoring deadline exceeded",
		zap.String("job_uuid", j.jobUUID),
		zap.String("last_status", last.String()))
	return OutcomeTimeout
}
