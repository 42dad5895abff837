package jobtrack

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Timestamp layouts accepted from the gateway's history log. Events whose
// timestamp matches neither are skipped from duration math but remain in
// the event listing.
var historyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
}

// ParseEventTime parses a history timestamp, trying each accepted layout.
func ParseEventTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range historyTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unparsable history timestamp %q: %w", s, lastErr)
}

// StageDuration is one stage's accumulated time, ordered for display.
type StageDuration struct {
	Status   gridapi.JobStatus
	Duration time.Duration
}

// RuntimeSummary holds per-stage and total durations reconstructed from a
// job's history.
type RuntimeSummary struct {
	// Stages accumulates, per status, the time between each event carrying
	// that status and the next event. Sorted by status name.
	Stages []StageDuration

	// Total is last event time minus first event time over the parsable
	// events. Zero when fewer than two events parse.
	Total time.Duration

	// Events is the raw history, including events whose timestamps could
	// not be parsed.
	Events []gridapi.HistoryEvent

	// Skipped counts events excluded from duration math.
	Skipped int
}

// Stage returns the accumulated duration for one status.
func (s RuntimeSummary) Stage(status gridapi.JobStatus) time.Duration {
	for _, st := range s.Stages {
		if st.Status == status {
			return st.Duration
		}
	}
	return 0
}

// Summarize reconstructs timing from an append-only history log.
//
// Empty and single-event histories yield zero durations, not an error.
func Summarize(history []gridapi.HistoryEvent) RuntimeSummary {
	summary := RuntimeSummary{Events: history}

	type timed struct {
		at     time.Time
		status gridapi.JobStatus
	}
	valid := make([]timed, 0, len(history))
	for _, ev := range history {
		at, err := ParseEventTime(ev.Created)
		if err != nil {
			summary.Skipped++
			continue
		}
		valid = append(valid, timed{at: at, status: ev.StageStatus()})
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].at.Before(valid[j].at) })

	if len(valid) >= 2 {
		summary.Total = valid[len(valid)-1].at.Sub(valid[0].at)
	}

	perStage := map[gridapi.JobStatus]time.Duration{}
	for i := 0; i+1 < len(valid); i++ {
		status := valid[i].status
		if status == "" {
			continue
		}
		perStage[status] += valid[i+1].at.Sub(valid[i].at)
	}

	summary.Stages = make([]StageDuration, 0, len(perStage))
	for status, d := range perStage {
		summary.Stages = append(summary.Stages, StageDuration{Status: status, Duration: d})
	}
	sort.Slice(summary.Stages, func(i, j int) bool {
		return summary.Stages[i].Status < summary.Stages[j].Status
	})
	return summary
}

// RuntimeSummary fetches the job's history and reconstructs its timing.
func (j *Job) RuntimeSummary(ctx context.Context) (RuntimeSummary, error) {
	hist, err := j.History(ctx)
	if err != nil {
		return RuntimeSummary{}, err
	}
	return Summarize(hist), nil
}

// FormatDuration renders a duration as hh:mm:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
