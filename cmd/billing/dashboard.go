package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/apiclient"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/dashcache"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

var (
	dashSearch  string
	dashRefresh bool
	dashWindow  time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the billing dashboard",
	Long: `Prints the dashboard served by client.api_url. The payload is cached locally
and reused until it is older than the cache window; --refresh drops it first.
The window is the server's cacheExpiration setting unless --cache-expiration is given.`,
	Annotations: map[string]string{annotationStderr: ""},
	RunE:        runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVarP(&dashSearch, "search", "s", "", "only show clients whose name contains this text")
	dashboardCmd.Flags().BoolVar(&dashRefresh, "refresh", false, "ignore the cached dashboard")
	dashboardCmd.Flags().DurationVar(&dashWindow, "cache-expiration", 0, "cache window, overriding the server setting (0 disables the cache)")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cachePath := cfg.Client.CachePath
	if cachePath == "" {
		var err error
		if cachePath, err = dashcache.DefaultPath(); err != nil {
			return err
		}
	}

	kv, err := dashcache.OpenSQLite(ctx, cachePath)
	if err != nil {
		return err
	}
	defer kv.Close()

	var override *time.Duration
	if cmd.Flags().Changed("cache-expiration") {
		override = &dashWindow
	}

	api := apiclient.New(cfg.Client.APIURL, cfg.Client.Timeout, log)

	data, fromCache, err := loadDashboard(ctx, log, cfg.Client, api, kv, override, dashRefresh)
	if err != nil {
		return fmt.Errorf("chargement du tableau de bord: %w (réessayez avec --refresh)", err)
	}

	printDashboard(os.Stdout, data, dashSearch, fromCache)

	return nil
}

type dashboardAPI interface {
	Dashboard(ctx context.Context) (storage.Dashboard, error)
	Settings(ctx context.Context) (*storage.Settings, error)
}

// loadDashboard serves the dashboard through the local cache. The window is
// override when set, otherwise the server's cacheExpiration.
func loadDashboard(ctx context.Context, log *slog.Logger, client config.Client, api dashboardAPI, kv dashcache.Store, override *time.Duration, refresh bool) (storage.Dashboard, bool, error) {
	var window time.Duration
	if override != nil {
		window = *override
	} else {
		window = dashcache.ServerWindow(ctx, kv, client.CacheKey, func(ctx context.Context) (int, error) {
			st, err := api.Settings(ctx)
			if err != nil {
				return 0, err
			}
			return st.CacheExpiration, nil
		}, client.CacheExpiration, log)
	}

	cache := dashcache.New[storage.Dashboard](kv, client.CacheKey, window, log)
	if refresh {
		if err := cache.Clear(ctx); err != nil {
			return storage.Dashboard{}, false, err
		}
	}

	return cache.Load(ctx, api.Dashboard)
}

// filterClients keeps clients whose name contains term, case-insensitively.
func filterClients(clients []storage.ClientBilling, term string) []storage.ClientBilling {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return clients
	}

	var out []storage.ClientBilling
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}

	return out
}

func printDashboard(w io.Writer, d storage.Dashboard, search string, fromCache bool) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(w, bold("Tableau de Bord"))
	if fromCache {
		fmt.Fprintln(w, faint("(données en cache)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %d   %s %d   %s %d   %s %s €\n\n",
		faint("Total Clients"), len(d.Clients),
		faint("Total Équipements"), d.TotalEquipment,
		faint("Équipements Facturables"), d.TotalBillableEquipment,
		faint("Revenu Mensuel"), d.TotalRevenue.StringFixed(2),
	)

	clients := filterClients(d.Clients, search)
	if len(clients) == 0 {
		fmt.Fprintln(w, "Aucun client trouvé")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NOM\tID\tTOTAL ÉQUIPEMENTS\tÉQUIPEMENTS FACTURABLES\tFACTURATION\t% FACTURABLE")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s €\t%s\n",
			c.Name, c.ID, c.TotalEquipment, c.BillableEquipment, c.TotalBilling.StringFixed(2), c.BillablePercentage)
	}
	tw.Flush()
}
