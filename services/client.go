// Package services is the console's REST client. Calls never fail on
// handled server errors: those come back as a Response carrying a message
// and a typeError. The error return is reserved for transport failures.
package services

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

	"go.uber.org/zap"
)

// Response is the envelope shared by success and error bodies.
type Response struct {
	Status    int             `json:"status"`
	Message   string          `json:"message,omitempty"`
	TypeError string          `json:"typeError,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// HasData reports whether data is present and not null.
func (r Response) HasData() bool {
	d := bytes.TrimSpace(r.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// RecordID extracts data.id (or data._id) from a single-record payload.
func (r Response) RecordID() string {
	if !r.HasData() {
		return ""
	}
	var rec struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return ""
	}
	if rec.ID != "" {
		return rec.ID
	}
	return rec.MongoID
}

// Email extracts data.email from a user payload.
func (r Response) Email() string {
	if !r.HasData() {
		return ""
	}
	var rec struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return ""
	}
	return rec.Email
}

// ErrNoList is returned by List when the payload is not a list page.
var ErrNoList = errors.New("services: response carries no list")

// List decodes a paginated payload {items, totalCount}.
func (r Response) List() ([]json.RawMessage, int, error) {
	if !r.HasData() {
		return nil, 0, ErrNoList
	}
	var page struct {
		Items      []json.RawMessage `json:"items"`
		TotalCount *int              `json:"totalCount"`
	}
	if err := json.Unmarshal(r.Data, &page); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNoList, err)
	}
	if page.TotalCount == nil {
		return nil, 0, ErrNoList
	}
	if page.Items == nil {
		page.Items = []json.RawMessage{}
	}
	return page.Items, *page.TotalCount, nil
}

// ListParams are the query parameters of list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Order   string
	Filters map[string]string
}

// Values encodes the params, omitting zero fields.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	for k, val := range p.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Client talks to the admin API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewClient returns a client with a bounded HTTP timeout.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Logger:  logger,
	}
}

// Users returns the user service.
func (c *Client) Users() *UserService { return &UserService{c: c} }

// Roles returns the role service.
func (c *Client) Roles() *RoleService { return &RoleService{c: c} }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Response{}, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return Response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	out := Response{Status: res.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return Response{}, fmt.Errorf("decode %s %s (status %d): %w", method, path, res.StatusCode, err)
		}
		out.Status = res.StatusCode
	}
	if !out.OK() {
		c.Logger.Debug("handled error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", out.Status),
			zap.String("type_error", out.TypeError))
	}
	return out, nil
}
