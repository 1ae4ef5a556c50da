package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/client"
	"github.com/visiongrid/visiongrid-client/pkg/jobs"
	"github.com/visiongrid/visiongrid-client/pkg/query"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage processing jobs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List unarchived jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			list, err := c.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	}

	var (
		jobName   string
		autoStart bool
		ttlDays   int
	)
	uploadCmd := &cobra.Command{
		Use:   "upload <request.json>",
		Short: "Upload a job request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var req jobs.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return err
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			name := jobName
			if name == "" {
				name = req.Analytic
			}
			job, err := c.UploadJobRequest(cmd.Context(), &req, name, autoStart, ttlDays)
			if err != nil {
				return err
			}
			return printJSON(job)
		},
	}
	uploadCmd.Flags().StringVar(&jobName, "name", "", "job name (default: analytic name)")
	uploadCmd.Flags().BoolVar(&autoStart, "auto-start", false, "start the job as soon as possible")
	uploadCmd.Flags().IntVar(&ttlDays, "ttl-days", 0, "days until the job expires (0 = never)")

	startCmd := &cobra.Command{
		Use:   "start <job-id>...",
		Short: "Start jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := c.StartJob(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info <job-id>",
		Short: "Show details for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			job, err := c.GetJobDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(job)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status document for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			status, err := c.GetJobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	}

	var (
		pollInterval time.Duration
		maxWait      time.Duration
	)
	waitCmd := &cobra.Command{
		Use:   "wait <job-id>",
		Short: "Wait until a job completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.WaitUntilJobCompletes(cmd.Context(), args[0], client.PollConfig{
				PollInterval: pollInterval,
				MaxWaitTime:  maxWait,
			})
		},
	}
	waitCmd.Flags().DurationVar(&pollInterval, "poll-interval", client.DefaultPollInterval, "delay between status polls")
	waitCmd.Flags().DurationVar(&maxWait, "max-wait", 0, "maximum time to wait (0 = forever)")

	archiveCmd := &cobra.Command{
		Use:   "archive <job-id>",
		Short: "Archive a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.ArchiveJob(cmd.Context(), args[0])
		},
	}

	unarchiveCmd := &cobra.Command{
		Use:   "unarchive <job-id>",
		Short: "Unarchive a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.UnarchiveJob(cmd.Context(), args[0])
		},
	}

	var days int
	ttlCmd := &cobra.Command{
		Use:   "ttl <job-id>",
		Short: "Adjust job expiration by a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.UpdateJobTTL(cmd.Context(), args[0], days)
		},
	}
	ttlCmd.Flags().IntVar(&days, "days", 0, "days to add (may be negative)")

	killCmd := &cobra.Command{
		Use:   "kill <job-id>",
		Short: "Forcibly terminate a queued or scheduled job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.KillJob(cmd.Context(), args[0])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete an unstarted job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.DeleteJob(cmd.Context(), args[0])
		},
	}

	var outputPath string
	outputCmd := &cobra.Command{
		Use:   "output <job-id>",
		Short: "Download the output of a completed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			path := outputPath
			if path == "" {
				path = args[0] + "-output.zip"
			}
			return c.DownloadJobOutput(cmd.Context(), args[0], path)
		},
	}
	outputCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path")

	logCmd := &cobra.Command{
		Use:   "log <job-id>",
		Short: "Download the logfile of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.DownloadJobLogfile(cmd.Context(), args[0], args[0]+".log")
		},
	}

	cmd.AddCommand(listCmd, newQueryCmd(query.ResourceJobs, "query jobs"),
		uploadCmd, startCmd, infoCmd, statusCmd, waitCmd, archiveCmd,
		unarchiveCmd, ttlCmd, killCmd, deleteCmd, outputCmd, logCmd)
	return cmd
}
