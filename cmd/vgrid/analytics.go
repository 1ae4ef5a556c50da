package main

import (
	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/query"
)

func newAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Browse and publish analytics",
	}

	var allVersions bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			analytics, err := c.ListAnalytics(cmd.Context(), allVersions)
			if err != nil {
				return err
			}
			return printJSON(analytics)
		},
	}
	listCmd.Flags().BoolVar(&allVersions, "all-versions", false, "include all versions of each analytic")

	queryCmd := newQueryCmd(query.ResourceAnalytics, "query analytics")

	infoCmd := &cobra.Command{
		Use:   "info <analytic-id>",
		Short: "Show documentation for an analytic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			doc, err := c.GetAnalyticDoc(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <doc.json>",
		Short: "Publish an analytic from its documentation JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			analytic, err := c.UploadAnalytic(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(analytic)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <analytic-id>",
		Short: "Delete an analytic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.DeleteAnalytic(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(listCmd, queryCmd, infoCmd, uploadCmd, deleteCmd)
	return cmd
}
