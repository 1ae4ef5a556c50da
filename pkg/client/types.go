package client

import (
	"time"

	"github.com/visiongrid/visiongrid-client/pkg/jobs"
)

// Analytic describes a processing capability published on the platform.
type Analytic struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	Scope       string    `json:"scope,omitempty"`
	SupportsCPU bool      `json:"supports_cpu"`
	SupportsGPU bool      `json:"supports_gpu"`
	Pending     bool      `json:"pending"`
	UploadDate  time.Time `json:"upload_date"`
}

// AnalyticDoc is the full documentation record for an analytic,
// including its input, parameter, and output declarations.
type AnalyticDoc struct {
	Analytic
	Inputs     []map[string]any `json:"inputs,omitempty"`
	Parameters []map[string]any `json:"parameters,omitempty"`
	Outputs    []map[string]any `json:"outputs,omitempty"`
}

// DataRecord describes a media file stored on the platform.
type DataRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Encoding       string    `json:"encoding,omitempty"`
	Type           string    `json:"type,omitempty"`
	Size           int64     `json:"size"`
	UploadDate     time.Time `json:"upload_date"`
	ExpirationDate time.Time `json:"expiration_date,omitempty"`
}

// Job describes a processing job on the platform.
type Job struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	State          jobs.State       `json:"state"`
	Archived       bool             `json:"archived"`
	UploadDate     time.Time        `json:"upload_date"`
	ExpirationDate time.Time        `json:"expiration_date,omitempty"`
	AnalyticID     string           `json:"analytic_id"`
	AutoStart      bool             `json:"auto_start"`
	ComputeMode    jobs.ComputeMode `json:"compute_mode,omitempty"`
	StartDate      time.Time        `json:"start_date,omitempty"`
	CompletionDate time.Time        `json:"completion_date,omitempty"`
	FailDate       time.Time        `json:"fail_date,omitempty"`
	FailureType    jobs.FailureType `json:"failure_type,omitempty"`
}

// JobStatus is the detailed status document for a job.
type JobStatus struct {
	JobID       string           `json:"job_id"`
	State       jobs.State       `json:"state"`
	FailureType jobs.FailureType `json:"failure_type,omitempty"`
	Progress    float64          `json:"progress,omitempty"`
	Messages    []string         `json:"messages,omitempty"`
}

// ServiceStatus describes the availability of one platform service.
type ServiceStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// QueryResult holds the records and total count returned by a query
// endpoint. Records carry only the projected fields, so they are
// exposed as generic maps keyed by field name.
type QueryResult struct {
	Records []map[string]any
	Count   int
}
