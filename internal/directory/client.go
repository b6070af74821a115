// Package directory is a typed client for the external employee directory
// service. The directory owns the employee records and reporting lines; this
// backend only reads them and applies reporting-manager updates during
// delegation swaps.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Employee is the directory's view of a staff member.
type Employee struct {
	StaffID          int    `json:"staff_id"`
	StaffFName       string `json:"staff_fname"`
	StaffLName       string `json:"staff_lname"`
	Dept             string `json:"dept"`
	Position         string `json:"position"`
	Email            string `json:"email"`
	ReportingManager int    `json:"reporting_manager"`
}

// Client talks to the employee directory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a directory client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope matches the directory service's standard response wrapper.
type envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// ListReports returns the employees currently reporting to managerID.
func (c *Client) ListReports(ctx context.Context, managerID int) ([]Employee, error) {
	var employees []Employee
	path := "/employees/?reporting_manager=" + strconv.Itoa(managerID)
	if err := c.do(ctx, http.MethodGet, path, nil, &employees); err != nil {
		return nil, fmt.Errorf("list reports of %d: %w", managerID, err)
	}
	return employees, nil
}

// UpdateReportingManager points staffID's reporting line at managerID.
func (c *Client) UpdateReportingManager(ctx context.Context, staffID, managerID int) error {
	path := "/employees/?staff_id=" + strconv.Itoa(staffID)
	body := map[string]int{"reporting_manager": managerID}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("update reporting manager of %d: %w", staffID, err)
	}
	return nil
}

// GetEmployee returns the directory record for a single staff member.
func (c *Client) GetEmployee(ctx context.Context, staffID int) (Employee, error) {
	var employee Employee
	path := "/employees/?staff_id=" + strconv.Itoa(staffID)
	if err := c.do(ctx, http.MethodGet, path, nil, &employee); err != nil {
		return Employee{}, fmt.Errorf("fetch employee %d: %w", staffID, err)
	}
	return employee, nil
}

// Credential returns the stored password hash for staffID.
func (c *Client) Credential(ctx context.Context, staffID int) (string, error) {
	var hash string
	path := "/employees/auth?staff_id=" + strconv.Itoa(staffID)
	if err := c.do(ctx, http.MethodGet, path, nil, &hash); err != nil {
		return "", fmt.Errorf("fetch credential of %d: %w", staffID, err)
	}
	return hash, nil
}

// do executes an HTTP request and decodes the enveloped JSON response.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("directory returned %d: %s", resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
