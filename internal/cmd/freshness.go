package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zancompute/zanconfig/internal/datastore"
	"github.com/zancompute/zanconfig/internal/freshness"
)

func newFreshnessCommand() *cobra.Command {
	var year, month string
	cmd := &cobra.Command{
		Use:   "freshness",
		Short: "Print the last-updated report for a period as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			dashboard, err := datastore.OpenDashboard(a.profile.Dashboard)
			if err != nil {
				return err
			}
			defer func() { _ = dashboard.Close() }()

			settings := a.settings.Freshness
			settings.CacheTTL = 0
			rows := freshness.NewAggregator(dashboard, settings, a.log).Report(cmd.Context(), year, month)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "four-digit year")
	cmd.Flags().StringVar(&month, "month", "", "month, 1-12")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
