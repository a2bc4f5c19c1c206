package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/db"
	"koomy/portal/internal/db/repositories"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveAssetsCommand prints the tenant a host and path resolve to. The
// configured rules are used when --config is given.
func resolveAssetsCommand() *cobra.Command {
	var host, path string
	cmd := &cobra.Command{
		Use:   "resolve-assets",
		Short: "Show the favicon, manifest and surface for a host and path",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := branding.DefaultResolver()
			if configFile != "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				resolver = cfg.Resolver()
			}
			return printJSON(cmd, resolver.Resolve(branding.Location{Hostname: host, Path: path}))
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "request hostname")
	cmd.Flags().StringVar(&path, "path", "/", "request path")
	return cmd
}

func hslCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hsl <hex>",
		Short: "Convert a 6-digit hex color to the HSL triple used by the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hsl, ok := branding.HexToHSL(args[0])
			if !ok {
				return fmt.Errorf("invalid hex color %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), hsl.String())
			return nil
		},
	}
}

// orphansCommand prints the upload slots the ledger holds as orphaned
func orphansCommand() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:     "orphans",
		Short:   "List upload slots that were written but never finalized",
		PreRunE: withConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				olderThan = cfg.OrphanAfter
			}

			ledger, err := db.OpenLedger(cmd.Context(), cfg.LedgerDriver, cfg.LedgerDSN)
			if err != nil {
				return err
			}
			defer ledger.Close()

			rows, err := repositories.NewUploadLedgerRepository(ledger.ORM, ledger.SQL).ListOrphans(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []repositories.OrphanUpload{}
			}
			return printJSON(cmd, rows)
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "report slots older than this (defaults to the configured threshold)")
	return cmd
}
