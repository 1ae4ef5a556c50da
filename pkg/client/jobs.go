package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/visiongrid/visiongrid-client/pkg/jobs"
	"github.com/visiongrid/visiongrid-client/pkg/query"
)

// DefaultPollInterval is the default delay between job status polls.
const DefaultPollInterval = 5 * time.Second

// Prometheus metrics for job polling.
var (
	jobPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vgp_job_polls_total",
		Help: "Total job status polls by outcome",
	}, []string{"outcome"})

	jobWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vgp_job_wait_duration_seconds",
		Help:    "Time spent waiting for job completion",
		Buckets: []float64{1, 5, 15, 60, 300, 1800, 7200},
	})
)

// PollConfig controls WaitUntilJobCompletes.
type PollConfig struct {
	// PollInterval is the delay between status polls. Defaults to
	// DefaultPollInterval when zero.
	PollInterval time.Duration

	// MaxWaitTime bounds the total wait. Zero means wait indefinitely.
	MaxWaitTime time.Duration
}

// DefaultPollConfig returns the default polling configuration.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		PollInterval: DefaultPollInterval,
	}
}

// ListJobs returns all unarchived jobs for the user.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var out struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.getJSON(ctx, "/jobs/list", nil, &out); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out.Jobs, nil
}

// QueryJobs performs a customized jobs query.
func (c *Client) QueryJobs(ctx context.Context, q *query.Builder) (*QueryResult, error) {
	if q.Resource() != query.ResourceJobs {
		return nil, fmt.Errorf("query targets %s, want %s", q.Resource(), query.ResourceJobs)
	}

	var out struct {
		Jobs  []map[string]any `json:"jobs"`
		Count int              `json:"count"`
	}
	if err := c.getJSON(ctx, "/jobs", q.ToParams(), &out); err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	return &QueryResult{Records: out.Jobs, Count: out.Count}, nil
}

// UploadJobRequest uploads a job request under the given name. When
// autoStart is true the job is started as soon as the platform can
// schedule it. ttlDays optionally bounds the job's lifetime.
func (c *Client) UploadJobRequest(ctx context.Context, req *jobs.Request, name string, autoStart bool, ttlDays int) (*Job, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal job request: %w", err)
	}

	fields := map[string]string{
		"job_name":   name,
		"auto_start": strconv.FormatBool(autoStart),
	}
	if ttlDays > 0 {
		fields["job_ttl_days"] = strconv.Itoa(ttlDays)
	}

	var out struct {
		Job Job `json:"job"`
	}
	err = c.upload(ctx, "/jobs", fields, []filePart{{
		FieldName: "file",
		FileName:  name + ".json",
		Reader:    bytes.NewReader(data),
	}}, &out)
	if err != nil {
		return nil, fmt.Errorf("upload job request: %w", err)
	}
	return &out.Job, nil
}

// GetJobDetails returns details about the job with the given ID.
func (c *Client) GetJobDetails(ctx context.Context, jobID string) (*Job, error) {
	var out struct {
		Job Job `json:"job"`
	}
	if err := c.getJSON(ctx, "/jobs/"+jobID, nil, &out); err != nil {
		return nil, fmt.Errorf("get job details: %w", err)
	}
	return &out.Job, nil
}

// GetJobRequest returns the original request document for the job.
func (c *Client) GetJobRequest(ctx context.Context, jobID string) (*jobs.Request, error) {
	var out struct {
		Request jobs.Request `json:"request"`
	}
	if err := c.getJSON(ctx, "/jobs/"+jobID+"/request", nil, &out); err != nil {
		return nil, fmt.Errorf("get job request: %w", err)
	}
	return &out.Request, nil
}

// StartJob starts the job with the given ID.
func (c *Client) StartJob(ctx context.Context, jobID string) error {
	if err := c.putJSON(ctx, "/jobs/"+jobID+"/start", nil, nil); err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	return nil
}

// UpdateJobTTL adjusts the expiration of the job with the given ID by
// the given number of days, which may be negative.
func (c *Client) UpdateJobTTL(ctx context.Context, jobID string, days int) error {
	payload := map[string]int{"days": days}
	if err := c.postJSON(ctx, "/jobs/"+jobID+"/ttl", payload, nil); err != nil {
		return fmt.Errorf("update job ttl: %w", err)
	}
	return nil
}

// ArchiveJob archives the job with the given ID. Archiving hides the
// job from listings without affecting its processing state.
func (c *Client) ArchiveJob(ctx context.Context, jobID string) error {
	if err := c.putJSON(ctx, "/jobs/"+jobID+"/archive", nil, nil); err != nil {
		return fmt.Errorf("archive job: %w", err)
	}
	return nil
}

// UnarchiveJob unarchives the job with the given ID.
func (c *Client) UnarchiveJob(ctx context.Context, jobID string) error {
	if err := c.putJSON(ctx, "/jobs/"+jobID+"/unarchive", nil, nil); err != nil {
		return fmt.Errorf("unarchive job: %w", err)
	}
	return nil
}

// GetJobState returns the current state of the job with the given ID.
func (c *Client) GetJobState(ctx context.Context, jobID string) (jobs.State, error) {
	var out struct {
		State jobs.State `json:"state"`
	}
	if err := c.getJSONFresh(ctx, "/jobs/"+jobID+"/state", nil, &out); err != nil {
		return "", fmt.Errorf("get job state: %w", err)
	}
	return out.State, nil
}

// IsJobComplete reports whether the job with the given ID has
// completed. A FAILED job surfaces as a jobs.FailedError.
func (c *Client) IsJobComplete(ctx context.Context, jobID string) (bool, error) {
	state, err := c.GetJobState(ctx, jobID)
	if err != nil {
		return false, err
	}
	if state == jobs.StateFailed {
		return false, &jobs.FailedError{JobID: jobID}
	}
	return state == jobs.StateComplete, nil
}

// GetJobStatus returns the detailed status document for the job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	var out struct {
		Status JobStatus `json:"status"`
	}
	if err := c.getJSONFresh(ctx, "/jobs/"+jobID+"/status", nil, &out); err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}
	return &out.Status, nil
}

// WaitUntilJobCompletes polls the job's status until it completes.
// A job that is already COMPLETE returns immediately without sleeping.
// A FAILED job returns a jobs.FailedError; exceeding cfg.MaxWaitTime
// returns a jobs.TimeoutError. The wait between polls honors context
// cancellation.
func (c *Client) WaitUntilJobCompletes(ctx context.Context, jobID string, cfg PollConfig) error {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	start := time.Now()
	defer func() {
		jobWaitDuration.Observe(time.Since(start).Seconds())
	}()

	for {
		status, err := c.GetJobStatus(ctx, jobID)
		if err != nil {
			return err
		}

		switch status.State {
		case jobs.StateComplete:
			jobPollsTotal.WithLabelValues("complete").Inc()
			c.logger.Debug().
				Str("job_id", jobID).
				Dur("waited", time.Since(start)).
				Msg("Job completed")
			return nil
		case jobs.StateFailed:
			jobPollsTotal.WithLabelValues("failed").Inc()
			return &jobs.FailedError{JobID: jobID}
		}

		jobPollsTotal.WithLabelValues("pending").Inc()

		elapsed := time.Since(start)
		if cfg.MaxWaitTime > 0 && elapsed > cfg.MaxWaitTime {
			jobPollsTotal.WithLabelValues("timeout").Inc()
			return &jobs.TimeoutError{JobID: jobID, Elapsed: elapsed}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(cfg.PollInterval):
		}
	}
}

// DownloadJobOutput downloads the output of the job to localPath.
func (c *Client) DownloadJobOutput(ctx context.Context, jobID, localPath string) error {
	if err := c.downloadToFile(ctx, "/jobs/"+jobID+"/output", localPath); err != nil {
		return fmt.Errorf("download job output: %w", err)
	}
	return nil
}

// GetJobOutputDownloadURL returns a signed URL from which the job
// output can be downloaded directly.
func (c *Client) GetJobOutputDownloadURL(ctx context.Context, jobID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.getJSONFresh(ctx, "/jobs/"+jobID+"/output-url", nil, &out); err != nil {
		return "", fmt.Errorf("get job output download url: %w", err)
	}
	return out.URL, nil
}

// DownloadJobLogfile downloads the logfile of the job to localPath.
func (c *Client) DownloadJobLogfile(ctx context.Context, jobID, localPath string) error {
	if err := c.downloadToFile(ctx, "/jobs/"+jobID+"/log", localPath); err != nil {
		return fmt.Errorf("download job logfile: %w", err)
	}
	return nil
}

// GetJobLogfileDownloadURL returns a signed URL from which the job
// logfile can be downloaded directly.
func (c *Client) GetJobLogfileDownloadURL(ctx context.Context, jobID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.getJSONFresh(ctx, "/jobs/"+jobID+"/log-url", nil, &out); err != nil {
		return "", fmt.Errorf("get job logfile download url: %w", err)
	}
	return out.URL, nil
}

// DeleteJob deletes the job with the given ID. Only jobs that have not
// been started can be deleted.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if err := c.deleteJSON(ctx, "/jobs/"+jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// KillJob forcibly terminates the job with the given ID. Only queued or
// scheduled jobs can be killed.
func (c *Client) KillJob(ctx context.Context, jobID string) error {
	if err := c.putJSON(ctx, "/jobs/"+jobID+"/kill", nil, nil); err != nil {
		return fmt.Errorf("kill job: %w", err)
	}
	return nil
}
