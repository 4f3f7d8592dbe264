package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"schallwerk/apperr"
	"schallwerk/logger"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Airtable allows at most 10 records per create/update call; the fixed
// inter-batch sleep keeps us under the 5 req/s base limit.
const (
	batchSize  = 10
	batchDelay = 250 * time.Millisecond
)

// Record is one Airtable row: an opaque ID plus a loosely typed field map.
// Use the decoders in record.go to pull typed values out of Fields.
type Record struct {
	ID          string                 `json:"id,omitempty"`
	CreatedTime time.Time              `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

// ListOptions narrow a List call. FilterByFormula uses Airtable's formula
// language; callers build formulas with the helpers in fields.go.
type ListOptions struct {
	FilterByFormula string
	MaxRecords      int
	PageSize        int
	View            string
}

// Client is a thin wrapper over the Airtable REST API for a single base.
type Client struct {
	baseURL    string
	apiKey     string
	baseID     string
	httpClient *http.Client
}

// NewClient creates an Airtable client for one base.
func NewClient(apiKey, baseID string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		baseID:     baseID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type listResponse struct {
	Records []*Record `json:"records"`
	Offset  string    `json:"offset,omitempty"`
}

type recordsPayload struct {
	Records  []*Record `json:"records"`
	Typecast bool      `json:"typecast,omitempty"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// List fetches all records of a table matching the options, following
// pagination offsets until the table is exhausted or MaxRecords is reached.
func (c *Client) List(ctx context.Context, table string, opts ListOptions) ([]*Record, error) {
	var all []*Record
	offset := ""
	for {
		q := url.Values{}
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if opts.PageSize > 0 {
			q.Set("pageSize", strconv.Itoa(opts.PageSize))
		}
		if opts.View != "" {
			q.Set("view", opts.View)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, table+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		if opts.MaxRecords > 0 && len(all) >= opts.MaxRecords {
			return all[:opts.MaxRecords], nil
		}
		offset = page.Offset
	}
}

// First returns the first record matching the formula, or a NotFound error.
func (c *Client) First(ctx context.Context, table, formula string) (*Record, error) {
	records, err := c.List(ctx, table, ListOptions{FilterByFormula: formula, MaxRecords: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.Ef(apperr.KindNotFound, "record not found in %s", table)
	}
	return records[0], nil
}

// Get fetches one record by ID.
func (c *Client) Get(ctx context.Context, table, recordID string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, table+"/"+url.PathEscape(recordID), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts one record and returns it with its assigned ID.
func (c *Client) Create(ctx context.Context, table string, fields map[string]interface{}) (*Record, error) {
	payload := recordsPayload{Records: []*Record{{Fields: fields}}, Typecast: true}
	var resp listResponse
	if err := c.do(ctx, http.MethodPost, table, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 {
		return nil, apperr.E(apperr.KindUnavailable, "airtable returned no record on create")
	}
	return resp.Records[0], nil
}

// Update patches the given fields on one record.
func (c *Client) Update(ctx context.Context, table, recordID string, fields map[string]interface{}) (*Record, error) {
	payload := recordsPayload{Records: []*Record{{ID: recordID, Fields: fields}}, Typecast: true}
	var resp listResponse
	if err := c.do(ctx, http.MethodPatch, table, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 {
		return nil, apperr.E(apperr.KindUnavailable, "airtable returned no record on update")
	}
	return resp.Records[0], nil
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, table, recordID string) error {
	return c.do(ctx, http.MethodDelete, table+"/"+url.PathEscape(recordID), nil, nil)
}

// BatchCreate inserts records in chunks of 10 with a fixed delay between
// chunks. The delay is a blunt rate-limit guard, not adaptive backoff.
func (c *Client) BatchCreate(ctx context.Context, table string, records []*Record) ([]*Record, error) {
	var created []*Record
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		payload := recordsPayload{Records: records[i:end], Typecast: true}
		var resp listResponse
		if err := c.do(ctx, http.MethodPost, table, payload, &resp); err != nil {
			return created, err
		}
		created = append(created, resp.Records...)

		if end < len(records) {
			select {
			case <-ctx.Done():
				return created, apperr.Wrap(apperr.KindUnavailable, "batch create cancelled", ctx.Err())
			case <-time.After(batchDelay):
			}
		}
	}
	return created, nil
}

// BatchUpdate patches records in chunks of 10, same pacing as BatchCreate.
func (c *Client) BatchUpdate(ctx context.Context, table string, records []*Record) error {
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		payload := recordsPayload{Records: records[i:end], Typecast: true}
		if err := c.do(ctx, http.MethodPatch, table, payload, nil); err != nil {
			return err
		}
		if end < len(records) {
			select {
			case <-ctx.Done():
				return apperr.Wrap(apperr.KindUnavailable, "batch update cancelled", ctx.Err())
			case <-time.After(batchDelay):
			}
		}
	}
	return nil
}

// do performs one HTTP round trip against the Airtable API, surfacing
// structured errors mapped onto apperr kinds.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to encode airtable request", err)
		}
		reader = bytes.NewReader(buf)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to build airtable request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "airtable request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var aerr apiError
		msg := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&aerr); decodeErr == nil && aerr.Error.Message != "" {
			msg = aerr.Error.Message
		}
		logger.Warn("[Airtable] request failed",
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("message", msg))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return apperr.E(apperr.KindNotFound, "record not found")
		case http.StatusUnprocessableEntity, http.StatusBadRequest:
			return apperr.Ef(apperr.KindInvalid, "airtable rejected the request: %s", msg)
		default:
			return apperr.Ef(apperr.KindUnavailable, "airtable error: %s", msg)
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to decode airtable response", err)
	}
	return nil
}
