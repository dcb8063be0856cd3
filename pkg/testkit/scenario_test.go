package testkit_test

import (
	"io"
	gohttp "net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

// proxy forwards /items to the upstream through the shared client.
func proxy(w gohttp.ResponseWriter, r *gohttp.Request) {
	resp, err := http.Get("https://upstream.test/items").
		Query("color", r.URL.Query().Get("color")).
		WithContext(r.Context()).
		Send()
	if err != nil {
		w.WriteHeader(gohttp.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Raw)
}

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, gohttp.HandlerFunc(proxy), "testdata")
}

func TestLoadScenarioValidates(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err := testkit.LoadScenario(write("a.json", `{"url":"/x","expectedCode":200}`))
	assert.ErrorContains(t, err, "name is required")

	_, err = testkit.LoadScenario(write("b.json", `{"name":"n","url":"/x","expectedCode":200,"backend":[{"method":"GET"}]}`))
	assert.ErrorContains(t, err, "matchUrl")

	s, err := testkit.LoadScenario(write("c.json", `{"name":"n","url":"/x","expectedCode":204,"backend":[{"matchUrl":"https://u"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "GET", s.Method)
	assert.Equal(t, 200, s.Backend[0].Status)
}

func TestStrictTransportRejectsUnknownCalls(t *testing.T) {
	mt := testkit.NewMockTransport().Strict()
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	_, err := http.Get("https://nowhere.test/").Send()
	assert.Error(t, err)
	require.NotNil(t, mt.LastCall())
	assert.Equal(t, "https://nowhere.test/", mt.LastCall().URL)
}

func TestMockRouteFail(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.On("", "https://down.test").Fail(io.ErrUnexpectedEOF)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	_, err := http.Post("https://down.test/x").Send()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
