package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Discover gateway app templates",
}

var appsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search app templates by id substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsSearch,
}

var appsShowCmd = &cobra.Command{
	Use:   "show <app-id>",
	Short: "Show the full template of one app",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsShow,
}

var (
	appsJSON        bool
	appsShowVersion string
)

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsSearchCmd)
	appsCmd.AddCommand(appsShowCmd)

	appsCmd.PersistentFlags().BoolVar(&appsJSON, "json", false, "Output as JSON")
	appsShowCmd.Flags().StringVar(&appsShowVersion, "version", "", "Template version (default: latest)")
}

func runAppsSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newGatewayClient()
	if err != nil {
		return err
	}

	apps, err := client.SearchApps(ctx, args[0])
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No apps found")
		return nil
	}

	if appsJSON {
		return printJSON(apps)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "ID\tVERSION\tOWNER")
	for _, a := range apps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Version, a.Owner)
	}
	return nil
}

func runAppsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newGatewayClient()
	if err != nil {
		return err
	}

	tpl, err := client.GetApp(ctx, args[0], appsShowVersion)
	if err != nil {
		return err
	}

	// The template is a nested document; JSON is the only faithful view.
	return printJSON(tpl)
}
