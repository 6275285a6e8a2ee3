package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/apiclient"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/billing"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

var clientCmd = &cobra.Command{
	Use:         "client <id>",
	Short:       "Show one client's equipment and billing",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationStderr: ""},
	RunE:        runClient,
}

func runClient(cmd *cobra.Command, args []string) error {
	api := apiclient.New(cfg.Client.APIURL, cfg.Client.Timeout, log)

	var (
		client *storage.ClientWithEquipment
		st     *storage.Settings
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		client, err = api.GetClient(ctx, args[0])
		return err
	})
	g.Go(func() error {
		var err error
		st, err = api.Settings(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return fmt.Errorf("client %q introuvable", args[0])
		}
		return fmt.Errorf("chargement des données du client: %w", err)
	}

	printClient(os.Stdout, client, st.PricePerEquipment)

	return nil
}

func printClient(w io.Writer, c *storage.ClientWithEquipment, price decimal.Decimal) {
	billable, nonBillable := billing.SplitByBillable(c.Equipment)
	revenue := price.Mul(decimal.NewFromInt(int64(len(billable))))

	// rows whose stored flag disagrees with their category
	mismatch := make(map[string]bool)
	for _, eq := range billing.Disagreements(c.Equipment) {
		mismatch[eq.ID] = true
	}

	bold := color.New(color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s (%s)\n", bold(c.Name), c.ID)
	fmt.Fprintf(w, "Équipements: %d   Facturables: %d   Facturation: %s € (%s € / équipement)\n\n",
		len(c.Equipment), len(billable), revenue.StringFixed(2), price.StringFixed(2))

	section := func(title string, list []*storage.Equipment) {
		fmt.Fprintf(w, "%s (%d)\n", bold(title), len(list))
		if len(list) == 0 {
			fmt.Fprintln(w, "  aucun")
			fmt.Fprintln(w)
			return
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tNOM\tCATÉGORIE\t")
		for _, eq := range list {
			flag := ""
			if mismatch[eq.ID] {
				flag = warn("! indicateur enregistré différent")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", eq.ID, eq.Name, eq.Category, flag)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	section("Équipements facturables", billable)
	section("Équipements non facturables", nonBillable)
}
