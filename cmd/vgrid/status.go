package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show platform service availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			statuses, err := c.GetPlatformStatus(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(statuses)
		},
	}
}
