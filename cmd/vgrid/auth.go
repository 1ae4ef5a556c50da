package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API tokens",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "activate <token-file>",
			Short: "Activate an API token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return auth.ActivateToken(args[0])
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the active API token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				token, err := auth.LoadToken()
				if err != nil {
					return err
				}
				fmt.Println(token.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Deactivate the active API token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return auth.DeactivateToken()
			},
		},
	)

	return cmd
}
