package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd returns the 'version' command, which displays the sheets-gateway version.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Displays the current version",
		Long:  "Displays the sheets-gateway version in the format v<major>.<minor>.<build> e.g. v1.00.10",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), VERSION)
			return err
		},
	}
}
