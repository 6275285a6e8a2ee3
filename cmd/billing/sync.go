package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/apiclient"
)

var syncRemote bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize ServiceNav companies and equipment",
	Long: `Runs one reconciliation pass directly against the database, which suits cron.
With --remote the running server is asked to sync instead (POST /api/sync).`,
	Annotations: map[string]string{annotationStderr: ""},
	RunE:        runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncRemote, "remote", false, "trigger the sync on the server at client.api_url")
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if syncRemote {
		return runRemoteSync(ctx)
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(store)
	if err != nil {
		return err
	}

	res, err := engine.Sync(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(os.Stdout, "%s %d entreprises, %d équipements (%d facturables), %d déjà traitées",
		green("Synchronisation réussie:"), res.Companies, res.Equipment, res.Billable, res.Skipped)
	if res.Resumed {
		fmt.Fprintf(os.Stdout, ", reprise du passage %s", res.RunID)
	}
	fmt.Fprintln(os.Stdout)

	return nil
}

func runRemoteSync(ctx context.Context) error {
	api := apiclient.New(cfg.Client.APIURL, cfg.HTTPServer.SyncTimeout, log)
	api.SetBasicAuth(cfg.AdminLogin, cfg.AdminPass)

	resp, err := api.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", color.GreenString(resp.Message), string(resp.Result))

	return nil
}
