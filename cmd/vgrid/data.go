package main

import (
	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/query"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Upload, download, and manage media",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			data, err := c.ListData(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(data)
		},
	}

	var ttlDays int
	uploadCmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			records := make([]any, 0, len(args))
			for _, path := range args {
				record, err := c.UploadData(cmd.Context(), path, ttlDays)
				if err != nil {
					return err
				}
				records = append(records, record)
			}
			return printJSON(records)
		},
	}
	uploadCmd.Flags().IntVar(&ttlDays, "ttl-days", 0, "days until the data expires (0 = never)")

	infoCmd := &cobra.Command{
		Use:   "info <data-id>",
		Short: "Show details for data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			record, err := c.GetDataDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(record)
		},
	}

	var outputPath string
	downloadCmd := &cobra.Command{
		Use:   "download <data-id>",
		Short: "Download data to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			path := outputPath
			if path == "" {
				record, err := c.GetDataDetails(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				path = record.Name
			}
			return c.DownloadData(cmd.Context(), args[0], path)
		},
	}
	downloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (default: remote name)")

	var days int
	ttlCmd := &cobra.Command{
		Use:   "ttl <data-id>",
		Short: "Adjust data expiration by a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.UpdateDataTTL(cmd.Context(), args[0], days)
		},
	}
	ttlCmd.Flags().IntVar(&days, "days", 0, "days to add (may be negative)")

	deleteCmd := &cobra.Command{
		Use:   "delete <data-id>...",
		Short: "Delete data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := c.DeleteData(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, newQueryCmd(query.ResourceData, "query data"),
		uploadCmd, infoCmd, downloadCmd, ttlCmd, deleteCmd)
	return cmd
}
