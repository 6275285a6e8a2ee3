package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "ServiceNav billing dashboard",
	Long: `Synchronizes ServiceNav companies and equipment into a SQL database,
classifies equipment as billable and serves the billing dashboard API.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $CONFIG_PATH or ./config/local.yaml)")

	rootCmd.AddCommand(serveCmd, syncCmd, migrateCmd, dashboardCmd, clientCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Erreur: %v\n", err)
		os.Exit(1)
	}
}

// annotationStderr marks commands whose stdout is for the user, not for logs.
const annotationStderr = "logs-to-stderr"

func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if _, ok := cmd.Annotations[annotationStderr]; ok {
		out = os.Stderr
	}

	log = setupLogger(cfg.Env, cfg.ErrorLog, out)

	return nil
}
