package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gostratus/internal/observability"
	"github.com/3leaps/gostratus/pkg/gridapi"
	"github.com/3leaps/gostratus/pkg/jobregistry"
	"github.com/3leaps/gostratus/pkg/jobtrack"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and manage submitted jobs",
	Long: `Inspect and manage jobs recorded in the local registry.

Job arguments accept the full gateway UUID or any unambiguous prefix
of a locally recorded job.`,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally recorded jobs",
	RunE:  runJobsList,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job>",
	Short: "Show a job's current gateway status",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

var jobsMonitorCmd = &cobra.Command{
	Use:   "monitor <job>",
	Short: "Poll a job until it reaches a terminal state",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsMonitor,
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job>",
	Short: "Request cancellation of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsCancel,
}

var jobsHistoryCmd = &cobra.Command{
	Use:   "history <job>",
	Short: "Show a job's gateway event history",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsHistory,
}

var jobsRuntimeCmd = &cobra.Command{
	Use:   "runtime <job>",
	Short: "Show per-stage runtime reconstructed from history",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRuntime,
}

var jobsOutputsCmd = &cobra.Command{
	Use:   "outputs <job> [subpath]",
	Short: "List a job's archived output files",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runJobsOutputs,
}

var (
	jobsJSON           bool
	jobsMonitorTimeout time.Duration
	jobsOutputsPattern string
	jobsOutputsLimit   int
	jobsOutputsOffset  int
)

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsMonitorCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
	jobsCmd.AddCommand(jobsHistoryCmd)
	jobsCmd.AddCommand(jobsRuntimeCmd)
	jobsCmd.AddCommand(jobsOutputsCmd)

	jobsCmd.PersistentFlags().BoolVar(&jobsJSON, "json", false, "Output as JSON")
	jobsMonitorCmd.Flags().DurationVar(&jobsMonitorTimeout, "timeout", 0, "Monitoring timeout (0 = derive from the job's max runtime)")
	jobsOutputsCmd.Flags().StringVar(&jobsOutputsPattern, "pattern", "", "Glob filter relative to the archive root (doublestar syntax)")
	jobsOutputsCmd.Flags().IntVar(&jobsOutputsLimit, "limit", 100, "Maximum entries to list")
	jobsOutputsCmd.Flags().IntVar(&jobsOutputsOffset, "offset", 0, "Listing offset")
}

// loadJob resolves a user-supplied job id (full UUID or registry prefix)
// and builds the tracking handle for it.
func loadJob(input string) (*jobtrack.Job, *gridapi.Client, string, error) {
	client, err := newGatewayClient()
	if err != nil {
		return nil, nil, "", err
	}

	jobUUID, err := registryStore().Resolve(input)
	if err != nil {
		// Not recorded locally; try the input as a full UUID.
		jobUUID = input
	}

	job, err := jobtrack.New(client, jobUUID,
		jobtrack.WithLogger(observability.CLILogger),
		jobtrack.WithFileAPI(client),
	)
	if err != nil {
		return nil, nil, "", err
	}
	return job, client, jobUUID, nil
}

// touchRegistry refreshes the local record's status snapshot. Registry
// failures are logged, never fatal: the gateway remains authoritative.
func touchRegistry(jobUUID string, status gridapi.JobStatus) {
	store := registryStore()
	rec, err := store.Get(jobUUID)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	rec.LastStatus = status
	rec.CheckedAt = &now
	if err := store.Write(rec); err != nil {
		observability.CLILogger.Debug("Could not update job registry",
			zap.String("job_uuid", jobUUID), zap.Error(err))
	}
}

// recordOutcome persists the post-monitor status and archive location.
func recordOutcome(ctx context.Context, rec *jobregistry.Record, job *jobtrack.Job, outcome jobtrack.Outcome) {
	if rec == nil || !outcome.Terminal() {
		return
	}
	now := time.Now().UTC()
	rec.LastStatus = outcome.Status()
	rec.CheckedAt = &now
	if details, err := job.Details(ctx, false); err == nil && details != nil {
		rec.ArchiveSystemID = details.ArchiveSystemID
		rec.ArchiveSystemDir = details.ArchiveSystemDir
	}
	if err := registryStore().Write(rec); err != nil {
		observability.CLILogger.Debug("Could not update job registry",
			zap.String("job_uuid", rec.JobUUID), zap.Error(err))
	}
}

func runJobsList(_ *cobra.Command, _ []string) error {
	records, err := registryStore().List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No jobs recorded")
		return nil
	}

	if jobsJSON {
		return printJSON(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "JOB UUID\tNAME\tAPP\tSTATUS\tSUBMITTED")
	for _, r := range records {
		status := string(r.LastStatus)
		if status == "" {
			status = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortUUID(r.JobUUID), r.Name, r.AppID, status,
			r.SubmittedAt.Format(time.RFC3339))
	}
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, jobUUID, err := loadJob(args[0])
	if err != nil {
		return err
	}

	status, err := job.Status(ctx, true)
	if err != nil {
		return err
	}
	touchRegistry(jobUUID, status)

	if jobsJSON {
		return printJSON(map[string]string{"job_uuid": jobUUID, "status": string(status)})
	}
	_, _ = fmt.Fprintf(os.Stdout, "%s\n", status)
	return nil
}

func runJobsMonitor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, jobUUID, err := loadJob(args[0])
	if err != nil {
		return err
	}

	timeout := jobsMonitorTimeout
	if timeout == 0 && cliConfig.Monitor.TimeoutMinutes > 0 {
		timeout = time.Duration(cliConfig.Monitor.TimeoutMinutes) * time.Minute
	}

	outcome := job.Monitor(ctx, jobtrack.MonitorOptions{
		Interval: cliConfig.Monitor.Interval,
		Timeout:  timeout,
	})
	if outcome.Terminal() {
		touchRegistry(jobUUID, outcome.Status())
	}

	if jobsJSON {
		return printJSON(map[string]any{
			"job_uuid": jobUUID,
			"outcome":  string(outcome),
			"terminal": outcome.Terminal(),
		})
	}
	_, _ = fmt.Fprintf(os.Stdout, "%s\n", outcome)
	return nil
}

func runJobsCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, jobUUID, err := loadJob(args[0])
	if err != nil {
		return err
	}

	if err := job.Cancel(ctx); err != nil {
		return err
	}
	status, err := job.Status(ctx, true)
	if err != nil {
		return err
	}
	touchRegistry(jobUUID, status)

	_, _ = fmt.Fprintf(os.Stdout, "job_uuid=%s status=%s\n", jobUUID, status)
	return nil
}

func runJobsHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, _, err := loadJob(args[0])
	if err != nil {
		return err
	}

	history, err := job.History(ctx)
	if err != nil {
		return err
	}

	if jobsJSON {
		return printJSON(history)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "CREATED\tEVENT\tSTATUS")
	for _, ev := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ev.Created, ev.Event, ev.StageStatus())
	}
	return nil
}

func runJobsRuntime(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, _, err := loadJob(args[0])
	if err != nil {
		return err
	}

	summary, err := job.RuntimeSummary(ctx)
	if err != nil {
		return err
	}

	if jobsJSON {
		return printJSON(summary)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "STAGE\tDURATION")
	for _, st := range summary.Stages {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", st.Status, jobtrack.FormatDuration(st.Duration))
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t%s\n", jobtrack.FormatDuration(summary.Total))
	if summary.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "(skipped %d events with unparsable timestamps)\n", summary.Skipped)
	}
	return nil
}

func runJobsOutputs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job, _, _, err := loadJob(args[0])
	if err != nil {
		return err
	}

	subPath := ""
	if len(args) == 2 {
		subPath = args[1]
	}

	entries, err := job.ListOutputs(ctx, subPath, jobsOutputsPattern, jobsOutputsLimit, jobsOutputsOffset)
	if err != nil {
		return err
	}

	if jobsJSON {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "NAME\tSIZE\tTYPE\tPATH")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Name, e.Size, e.Type, e.Path)
	}
	return nil
}

func shortUUID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
