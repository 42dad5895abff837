package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gostratus/internal/observability"
	"github.com/3leaps/gostratus/pkg/jobregistry"
	"github.com/3leaps/gostratus/pkg/jobspec"
	"github.com/3leaps/gostratus/pkg/jobtrack"
)

var submitCmd = &cobra.Command{
	Use:   "submit --job <manifest>",
	Short: "Submit a job described by a manifest file",
	Long: `Submit a job to the gateway from a YAML or JSON manifest.

The manifest's input path is resolved through the storage rules first,
so personal, community, and project paths work directly:

  app:
    id: opensees-express
  input:
    path: /home/jupyter/MyData/sims/run1
    script: model.tcl
  job:
    max_minutes: 120
    allocation: GEO-23009

The submitted job is recorded in the local registry for later
'gostratus jobs' commands.`,
	RunE: runSubmit,
}

var (
	submitManifestPath string
	submitName         string
	submitQueue        string
	submitAllocation   string
	submitMaxMinutes   int
	submitNodeCount    int
	submitDryRun       bool
	submitMonitor      bool
	submitJSON         bool
)

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitManifestPath, "job", "", "Job manifest file (YAML or JSON)")
	submitCmd.Flags().StringVar(&submitName, "name", "", "Override the job name")
	submitCmd.Flags().StringVar(&submitQueue, "queue", "", "Override the execution queue")
	submitCmd.Flags().StringVar(&submitAllocation, "allocation", "", "Override the compute allocation")
	submitCmd.Flags().IntVar(&submitMaxMinutes, "max-minutes", 0, "Override the maximum runtime in minutes")
	submitCmd.Flags().IntVar(&submitNodeCount, "nodes", 0, "Override the node count")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Print the assembled request without submitting")
	submitCmd.Flags().BoolVar(&submitMonitor, "monitor", false, "Monitor the job to completion after submitting")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "Output as JSON")

	_ = submitCmd.MarkFlagRequired("job")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	manifest, err := jobspec.LoadManifest(submitManifestPath)
	if err != nil {
		return err
	}

	client, err := newGatewayClient()
	if err != nil {
		return err
	}

	resolver := newResolver(client)
	res, err := resolver.Resolve(ctx, manifest.Input.Path)
	if err != nil {
		return fmt.Errorf("resolve input path %q: %w", manifest.Input.Path, err)
	}
	inputURI := res.URI(cliConfig.Storage.Scheme)

	in := manifest.BuildInput(inputURI)
	applySubmitOverrides(&in)

	builder := jobspec.ForApp(in.AppID, jobspec.Options{
		Logger: observability.CLILogger,
	})
	req, err := builder.Build(ctx, client, in)
	if err != nil {
		return err
	}

	if submitDryRun {
		return printJSON(req)
	}

	resp, err := client.Submit(ctx, req)
	if err != nil {
		return err
	}

	record := &jobregistry.Record{
		JobUUID:      resp.UUID,
		Name:         req.Name,
		AppID:        req.AppID,
		AppVersion:   req.AppVersion,
		InputURI:     inputURI,
		ManifestPath: submitManifestPath,
		LastStatus:   resp.Status,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := registryStore().Write(record); err != nil {
		observability.CLILogger.Warn("Submitted but could not record job locally",
			zap.String("job_uuid", resp.UUID), zap.Error(err))
	}

	if submitJSON {
		if err := printJSON(resp); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "job_uuid=%s\n", resp.UUID)
		if resp.Status != "" {
			_, _ = fmt.Fprintf(os.Stdout, "status=%s\n", resp.Status)
		}
	}

	if !submitMonitor {
		return nil
	}

	job, err := jobtrack.New(client, resp.UUID,
		jobtrack.WithLogger(observability.CLILogger),
		jobtrack.WithFileAPI(client),
	)
	if err != nil {
		return err
	}
	outcome := job.Monitor(ctx, jobtrack.MonitorOptions{
		Interval: cliConfig.Monitor.Interval,
		Timeout:  time.Duration(cliConfig.Monitor.TimeoutMinutes) * time.Minute,
	})
	_, _ = fmt.Fprintf(os.Stdout, "outcome=%s\n", outcome)
	recordOutcome(ctx, record, job, outcome)
	return nil
}

func applySubmitOverrides(in *jobspec.BuildInput) {
	if submitName != "" {
		in.Name = submitName
	}
	if submitQueue != "" {
		in.Queue = submitQueue
	}
	if submitAllocation != "" {
		in.Allocation = submitAllocation
	}
	if submitMaxMinutes > 0 {
		mm := submitMaxMinutes
		in.MaxMinutes = &mm
	}
	if submitNodeCount > 0 {
		nc := submitNodeCount
		in.NodeCount = &nc
	}
}
