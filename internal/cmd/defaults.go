package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zancompute/zanconfig/internal/clientconfig"
)

func newDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the defaults new clients are created with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := clientconfig.Defaults()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(groups)
		},
	}
}
