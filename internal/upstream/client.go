// Package upstream is an HTTP client for the external scheduling engine that
// owns slot computation, holds and booking persistence. This service never
// computes availability itself; it orchestrates these endpoints.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the scheduling engine's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a scheduler client. An empty timeout falls back to 20s.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetAvailableSlots returns the scheduler's slot list for one master on one date.
func (c *Client) GetAvailableSlots(ctx context.Context, date, employeeID string) ([]Slot, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("employee_id", employeeID)

	var out slotsResponse
	if err := c.get(ctx, "/api/public/available-slots", q, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// GetAvailableDates returns the days in a month with at least one free slot
// for the given master (or "any") and total service duration.
func (c *Client) GetAvailableDates(ctx context.Context, master string, year, month, durationMinutes int) ([]string, error) {
	q := url.Values{}
	q.Set("master", master)
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	q.Set("duration", strconv.Itoa(durationMinutes))

	var out availableDatesResponse
	if err := c.get(ctx, "/api/available-dates", q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("upstream: available dates rejected for %d-%02d", year, month)
	}
	return out.AvailableDates, nil
}

// GetMastersAvailability returns per-master free times for one date.
func (c *Client) GetMastersAvailability(ctx context.Context, date string) (map[string][]string, error) {
	q := url.Values{}
	q.Set("date", date)

	var out mastersAvailabilityResponse
	if err := c.get(ctx, "/api/masters-availability", q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("upstream: masters availability rejected for %s", date)
	}
	return out.Availability, nil
}

// CreateHold requests an advisory reservation. A false return with nil error
// is a semantic rejection (slot already held); a non-nil error is transport.
func (c *Client) CreateHold(ctx context.Context, req HoldRequest) (bool, error) {
	var out holdResponse
	if err := c.post(ctx, "/api/holds", req, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

// CreateBooking creates a single booking record.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingRecord, error) {
	var out BookingRecord
	if err := c.post(ctx, "/api/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetServices fetches the service catalog.
func (c *Client) GetServices(ctx context.Context) ([]Service, error) {
	var out []Service
	if err := c.get(ctx, "/api/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUsers fetches the full user list; callers filter to masters.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.get(ctx, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHolidays fetches declared non-working days.
func (c *Client) GetHolidays(ctx context.Context) ([]Holiday, error) {
	var out []Holiday
	if err := c.get(ctx, "/api/holidays", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("upstream: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("upstream: missing base url")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("upstream: status %d: %s", resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("upstream: unmarshal response: %w", err)
	}
	return nil
}
