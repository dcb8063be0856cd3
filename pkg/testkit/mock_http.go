// Package testkit holds test doubles shared by package tests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper. Outgoing requests are matched
// against registered routes (method + URL prefix) in registration order and
// answered with canned responses instead of touching the network.
//
//	mt := testkit.NewMockTransport()
//	mt.On("GET", base+"/rest/v1/products").Reply(200, `[]`)
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
type MockTransport struct {
	mu     sync.Mutex
	routes []*MockRoute
	calls  []*RecordedCall
	strict bool
}

// MockRoute is one canned answer.
type MockRoute struct {
	method    string
	prefix    string
	status    int
	body      []byte
	header    http.Header
	err       error
	callCount int
}

// RecordedCall is a request observed by the transport.
type RecordedCall struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NewMockTransport returns a transport that answers unmatched calls with 404.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Strict makes unmatched calls fail with a transport error.
func (mt *MockTransport) Strict() *MockTransport {
	mt.strict = true
	return mt
}

// On registers a route. An empty method matches any method.
func (mt *MockTransport) On(method, urlPrefix string) *MockRoute {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	r := &MockRoute{method: method, prefix: urlPrefix, status: http.StatusOK, header: make(http.Header)}
	r.header.Set("Content-Type", "application/json")
	mt.routes = append(mt.routes, r)
	return r
}

// Reply sets the status and body. body may be a string, []byte or any value
// that is marshalled to JSON.
func (r *MockRoute) Reply(status int, body interface{}) *MockRoute {
	r.status = status
	switch v := body.(type) {
	case nil:
		r.body = nil
	case string:
		r.body = []byte(v)
	case []byte:
		r.body = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("testkit: marshal mock body: %v", err))
		}
		r.body = b
	}
	return r
}

// Fail makes the route return a transport error.
func (r *MockRoute) Fail(err error) *MockRoute {
	r.err = err
	return r
}

// RoundTrip intercepts the outgoing request.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, &RecordedCall{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	for _, r := range mt.routes {
		if r.method != "" && !strings.EqualFold(r.method, req.Method) {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), r.prefix) {
			continue
		}
		r.callCount++
		if r.err != nil {
			return nil, r.err
		}
		return &http.Response{
			StatusCode: r.status,
			Status:     fmt.Sprintf("%d %s", r.status, http.StatusText(r.status)),
			Header:     r.header.Clone(),
			Body:       io.NopCloser(bytes.NewReader(r.body)),
			Request:    req,
		}, nil
	}

	if mt.strict {
		return nil, fmt.Errorf("testkit: unexpected %s %s", req.Method, req.URL)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{"message":"no mock configured"}`)),
		Request:    req,
	}, nil
}

// Calls returns every request seen so far.
func (mt *MockTransport) Calls() []*RecordedCall {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	out := make([]*RecordedCall, len(mt.calls))
	copy(out, mt.calls)
	return out
}

// LastCall returns the most recent request or nil.
func (mt *MockTransport) LastCall() *RecordedCall {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if len(mt.calls) == 0 {
		return nil
	}
	return mt.calls[len(mt.calls)-1]
}
