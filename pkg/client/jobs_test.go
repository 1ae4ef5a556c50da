package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/visiongrid/visiongrid-client/internal/testutil"
	"github.com/visiongrid/visiongrid-client/pkg/jobs"
)

func TestClient_UploadJobRequest(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetHandler("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		if got := r.FormValue("job_name"); got != "vehicles-cam-1" {
			t.Errorf("job_name = %q, want vehicles-cam-1", got)
		}
		if got := r.FormValue("auto_start"); got != "true" {
			t.Errorf("auto_start = %q, want true", got)
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()

		var req jobs.Request
		if err := json.NewDecoder(file).Decode(&req); err != nil {
			t.Fatalf("decode job request: %v", err)
		}
		if req.Analytic != "vehicle-detector" {
			t.Errorf("analytic = %q, want vehicle-detector", req.Analytic)
		}
		if req.Inputs["video"].DataID != "d-1" {
			t.Errorf("video input = %q, want d-1", req.Inputs["video"].DataID)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"job": {"id": "j-7", "name": "vehicles-cam-1", "state": "READY"}}`)
	})

	req := jobs.NewRequest("vehicle-detector")
	path, err := jobs.NewRemoteDataPath("d-1")
	if err != nil {
		t.Fatalf("NewRemoteDataPath() error = %v", err)
	}
	req.SetInput("video", path)

	c := newTestClient(t, mock)
	job, err := c.UploadJobRequest(context.Background(), req, "vehicles-cam-1", true, 0)
	if err != nil {
		t.Fatalf("UploadJobRequest() error = %v", err)
	}

	if job.ID != "j-7" || job.State != jobs.StateReady {
		t.Errorf("job = %+v, want id j-7 in READY", job)
	}
}

func TestClient_GetJobState(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/jobs/j-1/state", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"state": "RUNNING"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	})

	c := newTestClient(t, mock)
	state, err := c.GetJobState(context.Background(), "j-1")
	if err != nil {
		t.Fatalf("GetJobState() error = %v", err)
	}
	if state != jobs.StateRunning {
		t.Errorf("state = %q, want RUNNING", state)
	}
}

func TestClient_IsJobComplete(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		want     bool
		wantFail bool
	}{
		{name: "running job", state: "RUNNING", want: false},
		{name: "complete job", state: "COMPLETE", want: true},
		{name: "failed job", state: "FAILED", wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockPlatform()
			defer mock.Close()

			mock.SetResponse("/jobs/j-1/state", testutil.MockResponse{
				StatusCode: http.StatusOK,
				Body:       fmt.Sprintf(`{"state": %q}`, tt.state),
				Headers:    map[string]string{"Content-Type": "application/json"},
			})

			c := newTestClient(t, mock)
			complete, err := c.IsJobComplete(context.Background(), "j-1")

			if tt.wantFail {
				var failedErr *jobs.FailedError
				if !errors.As(err, &failedErr) {
					t.Fatalf("error = %v, want *jobs.FailedError", err)
				}
				if failedErr.JobID != "j-1" {
					t.Errorf("FailedError.JobID = %q, want j-1", failedErr.JobID)
				}
				return
			}

			if err != nil {
				t.Fatalf("IsJobComplete() error = %v", err)
			}
			if complete != tt.want {
				t.Errorf("complete = %v, want %v", complete, tt.want)
			}
		})
	}
}

func TestWaitUntilJobCompletes_AlreadyComplete(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetJobStateSequence("j-1", "COMPLETE")

	c := newTestClient(t, mock)

	start := time.Now()
	err := c.WaitUntilJobCompletes(context.Background(), "j-1", PollConfig{
		PollInterval: 1 * time.Second,
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("WaitUntilJobCompletes() error = %v", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("elapsed = %v, want immediate return without sleeping", elapsed)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("request count = %d, want 1", mock.GetRequestCount())
	}
}

func TestWaitUntilJobCompletes_Progression(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetJobStateSequence("j-1", "QUEUED", "SCHEDULED", "RUNNING", "COMPLETE")

	c := newTestClient(t, mock)
	err := c.WaitUntilJobCompletes(context.Background(), "j-1", PollConfig{
		PollInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("WaitUntilJobCompletes() error = %v", err)
	}

	if got := mock.GetRequestCount(); got != 4 {
		t.Errorf("request count = %d, want 4 (one poll per state)", got)
	}
}

func TestWaitUntilJobCompletes_Failed(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetJobStateSequence("j-9", "RUNNING", "FAILED")

	c := newTestClient(t, mock)
	err := c.WaitUntilJobCompletes(context.Background(), "j-9", PollConfig{
		PollInterval: 10 * time.Millisecond,
	})

	var failedErr *jobs.FailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("error = %v, want *jobs.FailedError", err)
	}
	if failedErr.JobID != "j-9" {
		t.Errorf("FailedError.JobID = %q, want j-9", failedErr.JobID)
	}
	if !strings.Contains(err.Error(), "j-9") {
		t.Errorf("error message %q should reference the job id", err.Error())
	}
}

func TestWaitUntilJobCompletes_Timeout(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetJobStateSequence("j-1", "RUNNING")

	c := newTestClient(t, mock)

	start := time.Now()
	err := c.WaitUntilJobCompletes(context.Background(), "j-1", PollConfig{
		PollInterval: 100 * time.Millisecond,
		MaxWaitTime:  2 * time.Second,
	})
	elapsed := time.Since(start)

	var timeoutErr *jobs.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *jobs.TimeoutError", err)
	}
	if timeoutErr.JobID != "j-1" {
		t.Errorf("TimeoutError.JobID = %q, want j-1", timeoutErr.JobID)
	}
	if timeoutErr.Elapsed < 2*time.Second {
		t.Errorf("TimeoutError.Elapsed = %v, want >= 2s", timeoutErr.Elapsed)
	}
	if elapsed > 2500*time.Millisecond {
		t.Errorf("elapsed = %v, want timeout within 2.5s", elapsed)
	}
}

func TestWaitUntilJobCompletes_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetJobStateSequence("j-1", "RUNNING")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := newTestClient(t, mock)
	err := c.WaitUntilJobCompletes(ctx, "j-1", PollConfig{
		PollInterval: 5 * time.Second,
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
}

func TestClient_ArchiveUnarchiveJob(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	var methods []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}
	mock.SetHandler("/jobs/j-1/archive", handler)
	mock.SetHandler("/jobs/j-1/unarchive", handler)

	c := newTestClient(t, mock)
	ctx := context.Background()

	if err := c.ArchiveJob(ctx, "j-1"); err != nil {
		t.Fatalf("ArchiveJob() error = %v", err)
	}
	if err := c.UnarchiveJob(ctx, "j-1"); err != nil {
		t.Fatalf("UnarchiveJob() error = %v", err)
	}

	want := []string{"PUT /jobs/j-1/archive", "PUT /jobs/j-1/unarchive"}
	if len(methods) != 2 || methods[0] != want[0] || methods[1] != want[1] {
		t.Errorf("requests = %v, want %v", methods, want)
	}
}

func TestClient_GetJobRequest(t *testing.T) {
	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/jobs/j-1/request", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{"request": {
			"analytic": "vehicle-detector",
			"compute_mode": "GPU",
			"inputs": {"video": {"data-id": "d-1"}},
			"parameters": {"threshold": 0.75}
		}}`,
		Headers: map[string]string{"Content-Type": "application/json"},
	})

	c := newTestClient(t, mock)
	req, err := c.GetJobRequest(context.Background(), "j-1")
	if err != nil {
		t.Fatalf("GetJobRequest() error = %v", err)
	}

	if req.Analytic != "vehicle-detector" {
		t.Errorf("Analytic = %q", req.Analytic)
	}
	if req.ComputeMode != jobs.ComputeGPU {
		t.Errorf("ComputeMode = %q, want GPU", req.ComputeMode)
	}
	if req.Inputs["video"].DataID != "d-1" {
		t.Errorf("video input = %q, want d-1", req.Inputs["video"].DataID)
	}
	if req.Parameters["threshold"] != 0.75 {
		t.Errorf("threshold = %v, want 0.75", req.Parameters["threshold"])
	}
}
