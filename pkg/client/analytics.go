package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/visiongrid/visiongrid-client/pkg/query"
)

// ListAnalytics returns all analytics available to the user. When
// allVersions is true, all versions of each analytic are returned
// rather than only the latest.
func (c *Client) ListAnalytics(ctx context.Context, allVersions bool) ([]Analytic, error) {
	params := url.Values{}
	if allVersions {
		params.Set("all_versions", "true")
	}

	var out struct {
		Analytics []Analytic `json:"analytics"`
	}
	if err := c.getJSON(ctx, "/analytics/list", params, &out); err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	return out.Analytics, nil
}

// QueryAnalytics performs a customized analytics query.
func (c *Client) QueryAnalytics(ctx context.Context, q *query.Builder) (*QueryResult, error) {
	if q.Resource() != query.ResourceAnalytics {
		return nil, fmt.Errorf("query targets %s, want %s", q.Resource(), query.ResourceAnalytics)
	}

	var out struct {
		Analytics []map[string]any `json:"analytics"`
		Count     int              `json:"count"`
	}
	if err := c.getJSON(ctx, "/analytics", q.ToParams(), &out); err != nil {
		return nil, fmt.Errorf("query analytics: %w", err)
	}
	return &QueryResult{Records: out.Analytics, Count: out.Count}, nil
}

// GetAnalyticDoc returns the documentation for the analytic with the
// given ID, including its declared inputs, parameters, and outputs.
func (c *Client) GetAnalyticDoc(ctx context.Context, analyticID string) (*AnalyticDoc, error) {
	var out struct {
		Analytic AnalyticDoc `json:"analytic"`
	}
	if err := c.getJSON(ctx, "/analytics/"+analyticID, nil, &out); err != nil {
		return nil, fmt.Errorf("get analytic doc: %w", err)
	}
	return &out.Analytic, nil
}

// UploadAnalytic uploads the analytic documentation JSON at docPath,
// publishing a new analytic (or a new version of an existing one).
func (c *Client) UploadAnalytic(ctx context.Context, docPath string) (*Analytic, error) {
	var out struct {
		Analytic Analytic `json:"analytic"`
	}
	if err := c.uploadFile(ctx, "/analytics", "file", docPath, nil, &out); err != nil {
		return nil, fmt.Errorf("upload analytic: %w", err)
	}
	return &out.Analytic, nil
}

// UploadAnalyticImage uploads the Docker image tarball at imagePath for
// the analytic with the given ID. imageType is "cpu" or "gpu".
func (c *Client) UploadAnalyticImage(ctx context.Context, analyticID, imagePath, imageType string) error {
	if imageType != "cpu" && imageType != "gpu" {
		return fmt.Errorf("invalid image type %q, want cpu or gpu", imageType)
	}

	fields := map[string]string{"type": imageType}
	if err := c.uploadFile(ctx, "/analytics/"+analyticID+"/images", "file", imagePath, fields, nil); err != nil {
		return fmt.Errorf("upload analytic image: %w", err)
	}
	return nil
}

// DeleteAnalytic deletes the analytic with the given ID.
func (c *Client) DeleteAnalytic(ctx context.Context, analyticID string) error {
	if err := c.deleteJSON(ctx, "/analytics/"+analyticID); err != nil {
		return fmt.Errorf("delete analytic: %w", err)
	}
	return nil
}
