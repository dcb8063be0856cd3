// Package postgrest is a small query builder for a PostgREST table API
// (the /rest/v1 surface of a hosted Supabase project).
//
//	var items []models.CartItem
//	err := client.From("cart_items").
//	    Select("*, products(*)").
//	    Eq("user_id", uid).
//	    Order("created_at", false).
//	    Execute(ctx, &items)
//
// Every call is one round trip on pkg/http. Nothing is retried.
package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const (
	restPath       = "/rest/v1/"
	objectMimeType = "application/vnd.pgrst.object+json"

	// CodeNoRows is what PostgREST answers when a single-object read
	// matched zero rows.
	CodeNoRows = "PGRST116"
)

// TokenSource returns the signed-in user's access token, or "" when
// anonymous. The row-level security policies on the backend key off it.
type TokenSource func() string

// Client talks to one project.
type Client struct {
	baseURL string
	apiKey  string
	token   TokenSource
	timeout time.Duration
}

// New returns a client for baseURL authenticated with the public apiKey.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: http.DefaultTimeout,
	}
}

// WithToken returns a copy that sends the token from ts as the bearer.
func (c *Client) WithToken(ts TokenSource) *Client {
	cp := *c
	cp.token = ts
	return &cp
}

// WithTimeout returns a copy with a different per-call timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := *c
	cp.timeout = d
	return &cp
}

// BaseURL is the project URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKey is the public key sent as the apikey header.
func (c *Client) APIKey() string { return c.apiKey }

func (c *Client) bearer() string {
	if c.token != nil {
		if t := c.token(); t != "" {
			return t
		}
	}
	return c.apiKey
}

func (c *Client) request(method, table string) *http.Request {
	return http.NewRequest(method, c.baseURL+restPath+table).
		Header("apikey", c.apiKey).
		Bearer(c.bearer()).
		Timeout(c.timeout)
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table}
}

// ------------------- Query -------------------

type filter struct {
	column string
	expr   string
}

// Query accumulates filters for one table call.
type Query struct {
	client  *Client
	table   string
	columns string
	filters []filter
	orders  []string
	limit   int
	single  bool
}

// Select sets the column list, including embedded relations such as
// "*, products(*)".
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds column = value.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, fmt.Sprintf("eq.%v", value)})
	return q
}

// ILike adds a case-insensitive pattern match. Use * as the wildcard.
func (q *Query) ILike(column, pattern string) *Query {
	q.filters = append(q.filters, filter{column, "ilike." + pattern})
	return q
}

// Order appends an ordering term.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single asks for exactly one object. Zero rows becomes an *APIError with
// code PGRST116.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) applyFilters(r *http.Request) *http.Request {
	for _, f := range q.filters {
		r.Query(f.column, f.expr)
	}
	return r
}

// Execute runs a SELECT and decodes the rows (or the single object) into dest.
func (q *Query) Execute(ctx context.Context, dest any) (err error) {
	defer metrics.ObserveBackend(q.table, "select", time.Now(), &err)

	r := q.applyFilters(q.client.request(gohttp.MethodGet, q.table).WithContext(ctx))
	if q.columns != "" {
		r.Query("select", q.columns)
	}
	if len(q.orders) > 0 {
		r.Query("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		r.Query("limit", fmt.Sprint(q.limit))
	}
	if q.single {
		r.Header("Accept", objectMimeType)
	}

	return q.send(r, dest)
}

// Insert posts row (a struct, map, or slice of either) and decodes the
// stored representation into dest when dest is non-nil.
func (q *Query) Insert(ctx context.Context, row any, dest any) (err error) {
	defer metrics.ObserveBackend(q.table, "insert", time.Now(), &err)

	r := q.client.request(gohttp.MethodPost, q.table).
		WithContext(ctx).
		Header("Prefer", "return=representation").
		Body(row)
	if q.columns != "" {
		r.Query("select", q.columns)
	}
	if q.single {
		r.Header("Accept", objectMimeType)
	}
	return q.send(r, dest)
}

// Update patches every row matching the filters with fields.
func (q *Query) Update(ctx context.Context, fields any, dest any) (err error) {
	defer metrics.ObserveBackend(q.table, "update", time.Now(), &err)

	r := q.applyFilters(q.client.request(gohttp.MethodPatch, q.table).WithContext(ctx)).
		Header("Prefer", "return=representation").
		Body(fields)
	if q.columns != "" {
		r.Query("select", q.columns)
	}
	if q.single {
		r.Header("Accept", objectMimeType)
	}
	return q.send(r, dest)
}

// Delete removes every row matching the filters. Matching nothing is not
// an error.
func (q *Query) Delete(ctx context.Context) (err error) {
	defer metrics.ObserveBackend(q.table, "delete", time.Now(), &err)

	r := q.applyFilters(q.client.request(gohttp.MethodDelete, q.table).WithContext(ctx))
	return q.send(r, nil)
}

func (q *Query) send(r *http.Request, dest any) error {
	resp, err := r.Send()
	if err != nil {
		return fmt.Errorf("postgrest %s: %w", q.table, err)
	}
	if !resp.OK() {
		return decodeError(resp)
	}
	if dest == nil || len(resp.Raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Raw, dest); err != nil {
		return fmt.Errorf("postgrest %s: decode: %w", q.table, err)
	}
	return nil
}

// ------------------- Errors -------------------

// APIError is the error body PostgREST returns on a non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "postgrest: %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(resp.Raw, apiErr); err != nil || apiErr.Message == "" {
		var alt struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(resp.Raw, &alt) == nil && alt.Error != "" {
			apiErr.Message = alt.Error
			apiErr.Details = alt.Description
		} else if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(resp.Text())
		}
	}
	return apiErr
}

// IsNoRows reports whether err is a single-object read that matched nothing.
func IsNoRows(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeNoRows || (apiErr.Status == gohttp.StatusNotAcceptable && apiErr.Code == "")
}
