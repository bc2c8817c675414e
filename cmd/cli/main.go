package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cloud-ledger/pkg/export"
	"github.com/de-tools/cloud-ledger/pkg/services/billing"
	"github.com/de-tools/cloud-ledger/pkg/services/config"
	"github.com/de-tools/cloud-ledger/pkg/store/costs"
	"github.com/de-tools/cloud-ledger/pkg/store/openstack"
	"github.com/de-tools/cloud-ledger/pkg/store/radosgw"
	"github.com/de-tools/cloud-ledger/pkg/store/snapshot"
	"github.com/de-tools/cloud-ledger/pkg/store/state"
)

var (
	cfgPath          string
	saveSnapshotPath string
	loadSnapshotPath string
	dryRun           bool
	force            bool
	rewriteHost      bool
	logLevel         string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cloud-ledger",
		Short: "Generate hourly cloud accounting records for one OpenStack region",
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.toml",
		"Path to the site configuration file")
	rootCmd.Flags().StringVar(&saveSnapshotPath, "save-snapshot", "",
		"Save the fetched inventory snapshot to this file")
	rootCmd.Flags().StringVar(&loadSnapshotPath, "load-snapshot", "",
		"Bill from a saved snapshot file instead of the live APIs")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Compute records but write neither the report nor the run marker")
	rootCmd.Flags().BoolVar(&force, "force", false,
		"Run even if the current hour is already billed")
	rootCmd.Flags().BoolVar(&rewriteHost, "rewrite-host", false,
		"Replace API endpoint hosts with localhost, for tunneled access")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace, debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	costStore, err := costs.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load cost table: %w", err)
	}
	rates, err := costStore.RegionRates(cfg.Region)
	if err != nil {
		return err
	}

	deps := billing.Dependencies{
		Writer: export.NewWriter(cfg.DataDir),
		States: state.NewStore(cfg.DataDir),
	}

	if loadSnapshotPath != "" {
		deps.Source = snapshot.NewStore(loadSnapshotPath)
	} else {
		creds := openstack.Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			Domain:   cfg.Domain,
			Project:  cfg.Project,
		}
		deps.Source = openstack.NewSource(creds, cfg.KeystoneURL, cfg.Region, rewriteHost, radosgw.NewCollector())
	}

	if saveSnapshotPath != "" {
		deps.SnapshotSink = snapshot.NewStore(saveSnapshotPath)
	}

	settings := billing.Settings{Site: cfg.Site, Region: cfg.Region}
	runner := billing.NewRunner(settings, rates, cfg.ResourceTags, deps)

	result, err := runner.Run(ctx, billing.RunOptions{Force: force, DryRun: dryRun})
	if err != nil {
		return err
	}

	logger.Info().
		Str("phase", string(result.Phase)).
		Time("hour", result.Hour).
		Msg("run finished")

	return nil
}
