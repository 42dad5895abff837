// Package cmd implements the gostratus command-line interface.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/3leaps/gostratus/internal/config"
	"github.com/3leaps/gostratus/internal/observability"
	"github.com/3leaps/gostratus/pkg/gridapi"
	"github.com/3leaps/gostratus/pkg/jobregistry"
	"github.com/3leaps/gostratus/pkg/pathmap"
)

var rootCmd = &cobra.Command{
	Use:   "gostratus",
	Short: "Client for remote HPC job execution gateways",
	Long: `gostratus submits, monitors, and inspects jobs on a remote
HPC execution gateway, and resolves local-looking storage paths into
gateway URIs.

Authentication is token-based: supply GOSTRATUS_GATEWAY_TOKEN (or
gateway.token in the config file) from an already-authenticated session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Context(), rootConfigFile)
		if err != nil {
			return err
		}
		if rootLogLevel != "" {
			cfg.Logging.Level = rootLogLevel
		}
		if rootLogProfile != "" {
			cfg.Logging.Profile = rootLogProfile
		}
		if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
			return err
		}
		cliConfig = cfg
		return nil
	},
}

var (
	rootConfigFile string
	rootLogLevel   string
	rootLogProfile string

	// cliConfig is populated by PersistentPreRunE before any RunE fires.
	cliConfig *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigFile, "config", "", "Config file path (default: $XDG_CONFIG_HOME/gostratus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootLogProfile, "log-profile", "", "Log profile override (STRUCTURED or CONSOLE)")
}

// ExecuteContext runs the root command under ctx. Cancellation flows to
// every RunE, so a SIGINT during monitoring surfaces as an interrupted
// outcome rather than a hard kill.
func ExecuteContext(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}

// newGatewayClient builds a gridapi client from the loaded config.
func newGatewayClient() (*gridapi.Client, error) {
	if cliConfig.Gateway.BaseURL == "" {
		return nil, fmt.Errorf("gateway.base_url is not configured (set GOSTRATUS_GATEWAY_BASE_URL)")
	}
	return gridapi.NewClient(gridapi.Config{
		BaseURL:   cliConfig.Gateway.BaseURL,
		Token:     cliConfig.Gateway.Token,
		Tenant:    cliConfig.Gateway.Tenant,
		Timeout:   cliConfig.Gateway.Timeout,
		RateLimit: cliConfig.Gateway.RateLimit,
		Logger:    observability.CLILogger,
	})
}

// newResolver builds a path resolver from the loaded config.
func newResolver(systems gridapi.SystemAPI) *pathmap.Resolver {
	return pathmap.NewResolver(pathmap.Config{
		Scheme:              cliConfig.Storage.Scheme,
		Identity:            cliConfig.Gateway.Username,
		PersonalSystemID:    cliConfig.Storage.PersonalSystemID,
		CommunitySystemID:   cliConfig.Storage.CommunitySystemID,
		ProjectSystemPrefix: cliConfig.Storage.ProjectSystemPrefix,
	}, systems, observability.CLILogger)
}

// registryStore opens the local job registry under the data dir.
func registryStore() *jobregistry.Store {
	return jobregistry.NewStore(filepath.Join(cliConfig.DataDir, "jobs"))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
