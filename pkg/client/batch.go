package client

import (
	"context"

	"github.com/visiongrid/visiongrid-client/pkg/dispatch"
	"github.com/visiongrid/visiongrid-client/pkg/jobs"
)

// UploadDataBatch uploads the files at localPaths concurrently. The
// result slice is ordered like localPaths; each element carries the
// uploaded record or the error for that file.
func (c *Client) UploadDataBatch(ctx context.Context, localPaths []string, ttlDays int, cfg dispatch.Config) []dispatch.Result[*DataRecord] {
	return dispatch.Map(ctx, localPaths, func(ctx context.Context, path string) (*DataRecord, error) {
		return c.UploadData(ctx, path, ttlDays)
	}, cfg)
}

// StartJobs starts the given jobs concurrently. Each result's Value is
// the job ID, so callers can pair failures with jobs.
func (c *Client) StartJobs(ctx context.Context, jobIDs []string, cfg dispatch.Config) []dispatch.Result[string] {
	return dispatch.Map(ctx, jobIDs, func(ctx context.Context, jobID string) (string, error) {
		if err := c.StartJob(ctx, jobID); err != nil {
			return jobID, err
		}
		return jobID, nil
	}, cfg)
}

// WaitUntilJobsComplete waits for all given jobs concurrently. Each
// result's Value is the terminal state reached; a failed or timed out
// wait carries the corresponding error instead.
func (c *Client) WaitUntilJobsComplete(ctx context.Context, jobIDs []string, pollCfg PollConfig, cfg dispatch.Config) []dispatch.Result[jobs.State] {
	return dispatch.Map(ctx, jobIDs, func(ctx context.Context, jobID string) (jobs.State, error) {
		if err := c.WaitUntilJobCompletes(ctx, jobID, pollCfg); err != nil {
			return "", err
		}
		return jobs.StateComplete, nil
	}, cfg)
}
