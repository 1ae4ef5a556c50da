package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/visiongrid/visiongrid-client/pkg/query"
)

// ListData returns all data stored for the user.
func (c *Client) ListData(ctx context.Context) ([]DataRecord, error) {
	var out struct {
		Data []DataRecord `json:"data"`
	}
	if err := c.getJSON(ctx, "/data/list", nil, &out); err != nil {
		return nil, fmt.Errorf("list data: %w", err)
	}
	return out.Data, nil
}

// QueryData performs a customized data query.
func (c *Client) QueryData(ctx context.Context, q *query.Builder) (*QueryResult, error) {
	if q.Resource() != query.ResourceData {
		return nil, fmt.Errorf("query targets %s, want %s", q.Resource(), query.ResourceData)
	}

	var out struct {
		Data  []map[string]any `json:"data"`
		Count int              `json:"count"`
	}
	if err := c.getJSON(ctx, "/data", q.ToParams(), &out); err != nil {
		return nil, fmt.Errorf("query data: %w", err)
	}
	return &QueryResult{Records: out.Data, Count: out.Count}, nil
}

// UploadData uploads the media file at localPath. ttlDays optionally
// sets an expiration for the uploaded data; zero means no expiration.
func (c *Client) UploadData(ctx context.Context, localPath string, ttlDays int) (*DataRecord, error) {
	var fields map[string]string
	if ttlDays > 0 {
		fields = map[string]string{"data_ttl_days": strconv.Itoa(ttlDays)}
	}

	var out struct {
		Data DataRecord `json:"data"`
	}
	if err := c.uploadFile(ctx, "/data", "file", localPath, fields, &out); err != nil {
		return nil, fmt.Errorf("upload data: %w", err)
	}
	return &out.Data, nil
}

// URLData describes externally hosted media registered via a signed URL.
type URLData struct {
	SignedURL string `json:"signed_url"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mimetype"`
	Size      int64  `json:"size"`
	Encoding  string `json:"encoding,omitempty"`
}

// PostDataAsURL registers media hosted at a signed URL as data on the
// platform without transferring the bytes through the client.
func (c *Client) PostDataAsURL(ctx context.Context, data URLData) (*DataRecord, error) {
	var out struct {
		Data DataRecord `json:"data"`
	}
	if err := c.postJSON(ctx, "/data/url", data, &out); err != nil {
		return nil, fmt.Errorf("post data as url: %w", err)
	}
	return &out.Data, nil
}

// GetDataDetails returns details about the data with the given ID.
func (c *Client) GetDataDetails(ctx context.Context, dataID string) (*DataRecord, error) {
	var out struct {
		Data DataRecord `json:"data"`
	}
	if err := c.getJSON(ctx, "/data/"+dataID, nil, &out); err != nil {
		return nil, fmt.Errorf("get data details: %w", err)
	}
	return &out.Data, nil
}

// DownloadData downloads the data with the given ID to localPath.
func (c *Client) DownloadData(ctx context.Context, dataID, localPath string) error {
	if err := c.downloadToFile(ctx, "/data/"+dataID+"/download", localPath); err != nil {
		return fmt.Errorf("download data: %w", err)
	}
	return nil
}

// GetDataDownloadURL returns a signed URL from which the data with the
// given ID can be downloaded directly.
func (c *Client) GetDataDownloadURL(ctx context.Context, dataID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.getJSONFresh(ctx, "/data/"+dataID+"/download-url", nil, &out); err != nil {
		return "", fmt.Errorf("get data download url: %w", err)
	}
	return out.URL, nil
}

// UpdateDataTTL adjusts the expiration of the data with the given ID by
// the given number of days, which may be negative.
func (c *Client) UpdateDataTTL(ctx context.Context, dataID string, days int) error {
	payload := map[string]int{"days": days}
	if err := c.postJSON(ctx, "/data/"+dataID+"/ttl", payload, nil); err != nil {
		return fmt.Errorf("update data ttl: %w", err)
	}
	return nil
}

// DeleteData deletes the data with the given ID.
func (c *Client) DeleteData(ctx context.Context, dataID string) error {
	if err := c.deleteJSON(ctx, "/data/"+dataID); err != nil {
		return fmt.Errorf("delete data: %w", err)
	}
	return nil
}
