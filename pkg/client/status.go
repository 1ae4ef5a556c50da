package client

import (
	"context"
	"fmt"
)

// GetPlatformStatus returns the availability of the platform services.
func (c *Client) GetPlatformStatus(ctx context.Context) ([]ServiceStatus, error) {
	var out struct {
		Statuses []ServiceStatus `json:"statuses"`
	}
	if err := c.getJSON(ctx, "/status/all", nil, &out); err != nil {
		return nil, fmt.Errorf("get platform status: %w", err)
	}
	return out.Statuses, nil
}
