// Package supabase is a thin client for the Supabase PostgREST API,
// which backs every persistent entity in the system.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"safe2gether/metrics"
)

// ErrNotFound is returned when a row lookup or update matches nothing.
var ErrNotFound = errors.New("record not found")

// StatusError preserves a non-success PostgREST response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.StatusCode, e.Body)
}

// Filter is a single PostgREST column filter, rendered as column=op.value.
type Filter struct {
	Column string
	Op     string
	Value  string
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: "eq", Value: fmt.Sprint(value)}
}

// IsNull builds a null-check filter.
func IsNull(column string) Filter {
	return Filter{Column: column, Op: "is", Value: "null"}
}

// Ilike builds a case-insensitive match filter.
func Ilike(column, value string) Filter {
	return Filter{Column: column, Op: "ilike", Value: value}
}

// In builds a membership filter over a set of ids.
func In(column string, ids []int64) Filter {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return Filter{Column: column, Op: "in", Value: "(" + strings.Join(parts, ",") + ")"}
}

// ListOptions narrows a List call. The zero value selects every column
// of every row.
type ListOptions struct {
	Select  string
	Filters []Filter
	Order   string
	Limit   int
	Offset  int
}

// Client talks to a PostgREST endpoint. All methods perform exactly one
// HTTP call; retries are left to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a PostgREST client for the given Supabase project.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/rest/v1/" + table
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	// Have PostgREST return the affected rows on writes.
	req.Header.Set("Prefer", "return=representation")
}

func encodeQuery(opts ListOptions) string {
	q := url.Values{}
	sel := opts.Select
	if sel == "" {
		sel = "*"
	}
	q.Set("select", sel)
	for _, f := range opts.Filters {
		q.Add(f.Column, f.Op+"."+f.Value)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	return q.Encode()
}

func (c *Client) do(ctx context.Context, method, table, rawQuery string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	fullURL := c.tableURL(table)
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StoreRequestsTotal.WithLabelValues(table, method, "error").Inc()
		return nil, fmt.Errorf("supabase %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.StoreRequestsTotal.WithLabelValues(table, method, "error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.StoreRequestsTotal.WithLabelValues(table, method, "error").Inc()
		log.Errorf("Supabase %s %s failed: status=%d body=%s", method, table, resp.StatusCode, respBody)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	metrics.StoreRequestsTotal.WithLabelValues(table, method, "ok").Inc()
	return respBody, nil
}

// List fetches rows matching opts into dest, which must be a pointer to
// a slice.
func (c *Client) List(ctx context.Context, table string, opts ListOptions, dest any) error {
	body, err := c.do(ctx, http.MethodGet, table, encodeQuery(opts), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// Get fetches a single row by id into dest, returning ErrNotFound when
// the id does not resolve.
func (c *Client) Get(ctx context.Context, table string, id int64, dest any) error {
	opts := ListOptions{Filters: []Filter{Eq("id", id)}, Limit: 1}
	body, err := c.do(ctx, http.MethodGet, table, encodeQuery(opts), nil)
	if err != nil {
		return err
	}
	return decodeFirst(body, table, dest)
}

// Create inserts a row and decodes the stored representation into dest.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any, dest any) error {
	body, err := c.do(ctx, http.MethodPost, table, "", fields)
	if err != nil {
		return err
	}
	return decodeFirst(body, table, dest)
}

// Update patches the row with the given id and decodes the updated
// representation into dest. ErrNotFound when the id matches no row.
func (c *Client) Update(ctx context.Context, table string, id int64, fields map[string]any, dest any) error {
	q := encodeQuery(ListOptions{Filters: []Filter{Eq("id", id)}})
	body, err := c.do(ctx, http.MethodPatch, table, q, fields)
	if err != nil {
		return err
	}
	return decodeFirst(body, table, dest)
}

// Delete removes the row with the given id and returns the number of
// rows removed.
func (c *Client) Delete(ctx context.Context, table string, id int64) (int, error) {
	return c.DeleteWhere(ctx, table, []Filter{Eq("id", id)})
}

// DeleteWhere removes every row matching the filters and returns the
// number of rows removed.
func (c *Client) DeleteWhere(ctx context.Context, table string, filters []Filter) (int, error) {
	q := url.Values{}
	for _, f := range filters {
		q.Add(f.Column, f.Op+"."+f.Value)
	}
	body, err := c.do(ctx, http.MethodDelete, table, q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		// Representation may be absent depending on server config.
		return 0, nil
	}
	return len(rows), nil
}

// decodeFirst unwraps the single-element array PostgREST returns for
// row-level reads and writes.
func decodeFirst(body []byte, table string, dest any) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		// Some write responses come back as a bare object.
		if err2 := json.Unmarshal(body, dest); err2 == nil {
			return nil
		}
		return fmt.Errorf("decode %s row: %w", table, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("decode %s row: %w", table, err)
	}
	return nil
}
