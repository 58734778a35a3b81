// Package client is the record-store adapter consumed by the presentation
// surfaces. Every call is a single request; there are no retries and no
// local mutation of fetched state. The next poll is the retry mechanism.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bayline/queue-service/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// APIError is a non-success response decoded from the server's error
// envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type CreateRecordRequest struct {
	Title         string     `json:"title"`
	Comment       string     `json:"comment"`
	AppointmentAt *time.Time `json:"appointment_at,omitempty"`
}

type UpdateRecordRequest struct {
	Title         string     `json:"title"`
	Comment       string     `json:"comment"`
	Status        string     `json:"status"`
	AppointmentAt *time.Time `json:"appointment_at,omitempty"`
}

func (c *Client) TodaySnapshot(ctx context.Context) ([]models.ServiceRecord, error) {
	var payload struct {
		Records []models.ServiceRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/records/today", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

func (c *Client) Record(ctx context.Context, id int64) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	err := c.do(ctx, http.MethodGet, "/api/records/"+strconv.FormatInt(id, 10), nil, &record)
	return record, err
}

func (c *Client) CreateRecord(ctx context.Context, req CreateRecordRequest) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	err := c.do(ctx, http.MethodPost, "/api/records", req, &record)
	return record, err
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status string) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	body := map[string]string{"status": status}
	err := c.do(ctx, http.MethodPost, "/api/records/"+strconv.FormatInt(id, 10)+"/status", body, &record)
	return record, err
}

func (c *Client) UpdateRecord(ctx context.Context, id int64, req UpdateRecordRequest) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	err := c.do(ctx, http.MethodPut, "/api/records/"+strconv.FormatInt(id, 10), req, &record)
	return record, err
}

func (c *Client) DeleteRecord(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/records/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) AvailableSlots(ctx context.Context, date time.Time) ([]time.Time, error) {
	var payload struct {
		Slots []time.Time `json:"slots"`
	}
	path := "/api/slots?" + url.Values{"date": {date.Format("2006-01-02")}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Slots, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = "unexpected_status"
		apiErr.Message = resp.Status
	}
	return apiErr
}
