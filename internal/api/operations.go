package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Project is a WorkFlow Pro project as returned by the REST API.
type Project struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	TeamMembers []string `json:"team_members,omitempty"`
}

// ProjectList is a paginated project listing.
type ProjectList struct {
	Projects []Project `json:"projects"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// TeamMember is a project membership record.
type TeamMember struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// CreateProject creates a project for the tenant.
func (c *Client) CreateProject(ctx context.Context, tenantID string, payload map[string]interface{}) (*Project, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/projects", tenantID, payload)
	if err != nil {
		return nil, err
	}
	return decodeProject(resp.Body)
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, tenantID string, projectID int) (*Project, error) {
	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), tenantID, nil)
	if err != nil {
		return nil, err
	}
	return decodeProject(resp.Body)
}

// ListProjects returns one page of the tenant's projects.
func (c *Client) ListProjects(ctx context.Context, tenantID string, page, limit int) (*ProjectList, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	resp, err := c.Do(ctx, http.MethodGet, "/projects?"+q.Encode(), tenantID, nil)
	if err != nil {
		return nil, err
	}
	var list ProjectList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse project list: %w", err)
	}
	return &list, nil
}

// UpdateProject updates an existing project.
func (c *Client) UpdateProject(ctx context.Context, tenantID string, projectID int, payload map[string]interface{}) (*Project, error) {
	resp, err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", projectID), tenantID, payload)
	if err != nil {
		return nil, err
	}
	return decodeProject(resp.Body)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, tenantID string, projectID int) error {
	_, err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", projectID), tenantID, nil)
	return err
}

// AddTeamMember adds a member to a project.
func (c *Client) AddTeamMember(ctx context.Context, tenantID string, projectID int, email string) (*TeamMember, error) {
	resp, err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/members", projectID), tenantID, map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	var member TeamMember
	if err := json.Unmarshal(resp.Body, &member); err != nil {
		return nil, fmt.Errorf("failed to parse team member: %w", err)
	}
	return &member, nil
}

// RemoveTeamMember removes a member from a project.
func (c *Client) RemoveTeamMember(ctx context.Context, tenantID string, projectID int, email string) error {
	_, err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d/members/%s", projectID, url.PathEscape(email)), tenantID, nil)
	return err
}

// HealthCheck reports whether the API answers its health endpoint. It is
// unauthenticated and never returns an error, matching its use as a
// cheap readiness probe before a suite starts.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func decodeProject(body []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &p, nil
}
