package client

import (
	"context"
	"fmt"
	"net/http"
)

// StaffingClient queries the staffing service for the number of agents
// assigned to a site. Schedule generation caps the desk count at that
// number.
type StaffingClient struct {
	http *HttpClient
}

func NewStaffingClient(baseURL string) *StaffingClient {
	return &StaffingClient{http: NewHttpClient(baseURL)}
}

type staffCountResponse struct {
	Data struct {
		Count int `json:"count"`
	} `json:"data"`
}

func (c *StaffingClient) CountAssignedStaff(ctx context.Context, siteID string) (int, error) {
	resp, err := c.http.GET(ctx, fmt.Sprintf("/api/v1/sites/%s/staff/count", siteID))
	if err != nil {
		return 0, fmt.Errorf("staffing lookup failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("staffing lookup returned status %d", resp.StatusCode)
	}

	var payload staffCountResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode staffing response: %w", err)
	}
	return payload.Data.Count, nil
}
