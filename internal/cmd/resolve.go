package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve a local-looking path to a gateway storage URI",
	Long: `Resolve a personal, community, or project path into the storage
system and path the gateway addresses it by.

Examples:
  gostratus resolve /home/jupyter/MyData/sims/run1
  gostratus resolve CommunityData/benchmarks
  gostratus resolve projects/seismic-2024/inputs

Already-qualified URIs pass through unchanged, so resolve is safe to
apply twice.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var resolveJSON bool

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newGatewayClient()
	if err != nil {
		return err
	}
	resolver := newResolver(client)

	res, err := resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	if resolveJSON {
		return printJSON(map[string]string{
			"system_id": res.SystemID,
			"path":      res.Path,
			"uri":       res.URI(cliConfig.Storage.Scheme),
		})
	}

	_, _ = fmt.Fprintf(os.Stdout, "system_id=%s\n", res.SystemID)
	_, _ = fmt.Fprintf(os.Stdout, "path=%s\n", res.Path)
	_, _ = fmt.Fprintf(os.Stdout, "uri=%s\n", res.URI(cliConfig.Storage.Scheme))
	return nil
}
