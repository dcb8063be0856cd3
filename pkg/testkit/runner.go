package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
)

// RunDir runs every scenario in dir against handler as a subtest.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadDir(dir)
	for _, err := range errs {
		t.Error(err)
	}
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) { Run(t, handler, s) })
	}
}

// Run fires s at handler with the backend steps installed on the shared
// HTTP client, then checks the status, the body and the backend calls.
func Run(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	mt := NewMockTransport()
	if s.Strict {
		mt.Strict()
	}
	routes := make([]*MockRoute, len(s.Backend))
	for i, step := range s.Backend {
		routes[i] = mt.On(step.Method, step.MatchURL).Reply(step.Status, []byte(step.Body))
	}
	sfhttp.DefaultClient.Transport = mt
	defer sfhttp.ResetTransport()

	var body io.Reader
	if len(s.Body) > 0 {
		body = bytes.NewReader(s.Body)
	}
	req := httptest.NewRequest(strings.ToUpper(s.Method), s.URL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, s.ExpectedCode, rec.Code, "status code\nbody: %s", rec.Body.String())
	if len(s.ExpectedBody) > 0 {
		AssertJSONSubset(t, s.ExpectedBody, rec.Body.Bytes())
	}

	calls := mt.Calls()
	for i, step := range s.Backend {
		if !step.Optional && routes[i].callCount == 0 {
			t.Errorf("backend step %s %s was never called", step.Method, step.MatchURL)
			continue
		}
		if len(step.ExpectQuery) > 0 {
			checkQuery(t, step, calls)
		}
	}
}

// checkQuery asserts that the first call matching step carried the
// expected query parameters.
func checkQuery(t *testing.T, step BackendStep, calls []*RecordedCall) {
	t.Helper()
	for _, c := range calls {
		if step.Method != "" && !strings.EqualFold(step.Method, c.Method) {
			continue
		}
		if !strings.HasPrefix(c.URL, step.MatchURL) {
			continue
		}
		u, err := url.Parse(c.URL)
		if !assert.NoError(t, err) {
			return
		}
		q := u.Query()
		for k, want := range step.ExpectQuery {
			assert.Equal(t, want, q.Get(k), "query %q of %s %s", k, c.Method, step.MatchURL)
		}
		return
	}
}
