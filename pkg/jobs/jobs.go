// Package jobs defines the client-side view of platform processing
// jobs: the job state machine, job request documents, and the errors
// surfaced while waiting on jobs.
//
// Job state is owned by the platform. The client never mutates it;
// transitions happen server-side and are observed via polling.
package jobs

import (
	"encoding/json"
	"fmt"
)

// State represents the processing state of a job. States advance
// monotonically except for externally triggered resets; archiving and
// unarchiving a job do not change its processing state.
type State string

const (
	// StateReady means the job has been uploaded but not yet started.
	StateReady State = "READY"

	// StateQueued means the job has been started and is awaiting scheduling.
	StateQueued State = "QUEUED"

	// StateScheduled means the job has been assigned to a worker.
	StateScheduled State = "SCHEDULED"

	// StateRunning means the job is executing.
	StateRunning State = "RUNNING"

	// StateComplete means the job finished successfully.
	StateComplete State = "COMPLETE"

	// StateFailed means the job terminated with a failure.
	StateFailed State = "FAILED"
)

// IsTerminal returns true if the state is COMPLETE or FAILED.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFailed
}

// FailureType classifies a failed job.
type FailureType string

const (
	// FailureUser indicates a failure caused by user input.
	FailureUser FailureType = "USER"

	// FailureAnalytic indicates a failure inside the analytic.
	FailureAnalytic FailureType = "ANALYTIC"

	// FailurePlatform indicates a platform-side failure.
	FailurePlatform FailureType = "PLATFORM"

	// FailureNone indicates no failure.
	FailureNone FailureType = "NONE"
)

// ComputeMode selects the hardware a job runs on.
type ComputeMode string

const (
	// ComputeCPU forces CPU execution.
	ComputeCPU ComputeMode = "CPU"

	// ComputeGPU forces GPU execution.
	ComputeGPU ComputeMode = "GPU"

	// ComputeBest lets the platform choose.
	ComputeBest ComputeMode = "BEST"
)

// dataIDField is the wire key identifying a remote data reference.
const dataIDField = "data-id"

// RemoteDataPath references data already uploaded to the platform.
type RemoteDataPath struct {
	DataID string
}

// NewRemoteDataPath creates a remote data path for the given data ID.
func NewRemoteDataPath(dataID string) (RemoteDataPath, error) {
	p := RemoteDataPath{DataID: dataID}
	if !p.IsValid() {
		return RemoteDataPath{}, fmt.Errorf("remote data path requires a data ID")
	}
	return p, nil
}

// IsValid reports whether the path references data.
func (p RemoteDataPath) IsValid() bool {
	return p.DataID != ""
}

// MarshalJSON renders the wire shape {"data-id": "..."}.
func (p RemoteDataPath) MarshalJSON() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("remote data path requires a data ID")
	}
	return json.Marshal(map[string]string{dataIDField: p.DataID})
}

// UnmarshalJSON parses the wire shape {"data-id": "..."}.
func (p *RemoteDataPath) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	id, ok := m[dataIDField]
	if !ok || id == "" {
		return fmt.Errorf("invalid remote data path: missing %q", dataIDField)
	}
	p.DataID = id
	return nil
}

// isRemotePathValue reports whether a raw JSON value has the remote
// data path wire shape.
func isRemotePathValue(raw json.RawMessage) bool {
	var p RemoteDataPath
	return json.Unmarshal(raw, &p) == nil
}

// Request describes a job to upload: the analytic to run, the compute
// mode, named inputs referencing uploaded data, and analytic-defined
// parameters.
//
// Parameter keys are defined by the analytic at runtime and cannot be
// enumerated statically; values must be JSON-serializable. Data
// parameters reference uploaded data and are read from storage when
// the job runs. Serialization is deterministic: keys render in sorted
// order.
type Request struct {
	// Analytic is the name of the analytic to run.
	Analytic string

	// Version pins the analytic version. Empty means latest.
	Version string

	// ComputeMode selects the hardware. Empty means the platform default.
	ComputeMode ComputeMode

	// Inputs maps input names to uploaded data.
	Inputs map[string]RemoteDataPath

	// Parameters maps parameter names to values. Values are either
	// RemoteDataPath (data parameters) or plain JSON-serializable values.
	Parameters map[string]any
}

// NewRequest creates a job request for the given analytic.
func NewRequest(analytic string) *Request {
	return &Request{
		Analytic:   analytic,
		Inputs:     make(map[string]RemoteDataPath),
		Parameters: make(map[string]any),
	}
}

// SetInput sets the named input.
func (r *Request) SetInput(name string, path RemoteDataPath) {
	r.Inputs[name] = path
}

// SetDataParameter sets a parameter whose value is read from uploaded
// data when the job runs.
func (r *Request) SetDataParameter(name string, path RemoteDataPath) {
	r.Parameters[name] = path
}

// SetParameter sets a plain parameter. The value must be
// JSON-serializable.
func (r *Request) SetParameter(name string, value any) {
	r.Parameters[name] = value
}

// requestWire is the JSON wire shape of a job request.
type requestWire struct {
	Analytic    string                     `json:"analytic"`
	Version     string                     `json:"version,omitempty"`
	ComputeMode ComputeMode                `json:"compute_mode,omitempty"`
	Inputs      map[string]RemoteDataPath  `json:"inputs"`
	Parameters  map[string]json.RawMessage `json:"parameters"`
}

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	wire := requestWire{
		Analytic:    r.Analytic,
		Version:     r.Version,
		ComputeMode: r.ComputeMode,
		Inputs:      r.Inputs,
		Parameters:  make(map[string]json.RawMessage, len(r.Parameters)),
	}
	if wire.Inputs == nil {
		wire.Inputs = map[string]RemoteDataPath{}
	}
	for name, value := range r.Parameters {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal parameter %q: %w", name, err)
		}
		wire.Parameters[name] = raw
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler. Parameter values with the
// remote data path wire shape decode as RemoteDataPath; everything
// else decodes as plain JSON values.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire requestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.Analytic = wire.Analytic
	r.Version = wire.Version
	r.ComputeMode = wire.ComputeMode
	r.Inputs = wire.Inputs
	if r.Inputs == nil {
		r.Inputs = make(map[string]RemoteDataPath)
	}

	r.Parameters = make(map[string]any, len(wire.Parameters))
	for name, raw := range wire.Parameters {
		if isRemotePathValue(raw) {
			var p RemoteDataPath
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("unmarshal data parameter %q: %w", name, err)
			}
			r.Parameters[name] = p
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("unmarshal parameter %q: %w", name, err)
		}
		r.Parameters[name] = value
	}
	return nil
}
