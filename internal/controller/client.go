package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// AddPath is the create endpoint the form posts to in Create mode.
	AddPath    = "/add"
	recordPath = "/api/record/"
	searchPath = "/search"
	searchKey  = "search"
)

// UpdatePath is the form target for editing record id.
func UpdatePath(id string) string {
	return "/update/" + id
}

// Record is an attendance record as served by the record endpoint.
type Record struct {
	ID        string
	StudentID string
	Name      string
	ClassName string
	Date      string
}

var recordKeys = []string{"id", "student_id", "name", "class_name", "date"}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Op     string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s", e.Op, e.Status)
}

// Client talks to the attendance server. It applies no timeout of its own;
// callers bound requests through the context.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// FetchRecord loads one record. The body must be a single JSON object whose
// attributes are all present and each a string or a number.
func (c *Client) FetchRecord(ctx context.Context, id string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+recordPath+url.PathEscape(id), nil)
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("fetch record %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Record{}, &StatusError{Op: "fetch record " + id, Status: resp.Status, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, fmt.Errorf("read record %s: %w", id, err)
	}
	// Unmarshal rejects trailing data after the object.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}

	values := make(map[string]string, len(recordKeys))
	for _, key := range recordKeys {
		msg, ok := raw[key]
		if !ok {
			return Record{}, fmt.Errorf("decode record %s: missing %q", id, key)
		}
		v, err := scalar(msg)
		if err != nil {
			return Record{}, fmt.Errorf("decode record %s: field %q: %w", id, key, err)
		}
		values[key] = v
	}

	return Record{
		ID:        values["id"],
		StudentID: values["student_id"],
		Name:      values["name"],
		ClassName: values["class_name"],
		Date:      values["date"],
	}, nil
}

func scalar(msg json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return "", fmt.Errorf("unexpected null")
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", string(msg))
}

// Search returns the records fragment for term. An empty term sends no
// query parameter.
func (c *Client) Search(ctx context.Context, term string) (string, error) {
	target := c.BaseURL + searchPath
	if term != "" {
		target += "?" + searchKey + "=" + url.QueryEscape(term)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Op: fmt.Sprintf("search %q", term), Status: resp.Status, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	return string(body), nil
}
