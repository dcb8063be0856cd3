package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

func init() { logger.Discard() }

type harness struct {
	mem     *repositories.Memory
	handler http.Handler
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := repositories.NewMemory()
	mem.AddProduct(models.Product{ID: 42, Name: "Mug", Category: "kitchen", Price: decimal.RequireFromString("19.90"), IsActive: true})
	local := auth.NewLocal(mem, "routes-test-secret")

	s, err := local.SignUp(context.Background(), "ada@example.com", "secret123", nil)
	require.NoError(t, err)

	r := router.New()
	r.Use(middleware.Identity(local))
	routes.RegisterAPI(r, routes.Deps{Stores: repositories.Static(mem), Auth: local})
	return &harness{mem: mem, handler: r.Handler(), token: s.AccessToken}
}

func (h *harness) call(method, path, body string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signedIn {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestAddToCartDefaultsToOne(t *testing.T) {
	h := newHarness(t)

	rec := h.call("POST", "/api/cart", `{"product_id":42}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Added to cart", env["notice"])
	assert.EqualValues(t, 3000, env["dismiss_after_ms"])

	rows := h.mem.CartRows()
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Quantity)
}

func TestCartStatusMapping(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.call("POST", "/api/cart", `{"product_id":42}`, false).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("POST", "/api/cart", `{"product_id":42,"quantity":0}`, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("POST", "/api/cart", `{"product_id":7}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, h.call("POST", "/api/cart", `{"product_id":`, true).Code)
	rec := h.call("PATCH", "/api/cart/999", `{"quantity":2}`, true)
	assert.Equal(t, http.StatusOK, rec.Code, "zero matched rows is not an error")
	assert.NotContains(t, decodeEnvelope(t, rec), "data")
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("DELETE", "/api/cart/abc", "", true).Code)
	assert.Equal(t, http.StatusOK, h.call("DELETE", "/api/cart/999", "", true).Code)
	assert.Equal(t, http.StatusNotFound, h.call("GET", "/api/products/999", "", false).Code)
}

func TestBackendFailureOffersReload(t *testing.T) {
	h := newHarness(t)
	h.mem.FailOn(repositories.OpListProducts, errors.New("connection reset"))

	rec := h.call("GET", "/api/products", "", false)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "reload", decodeEnvelope(t, rec)["action"])
}

func TestCheckoutNeedsAddressAndItems(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnprocessableEntity, h.call("POST", "/api/orders", `{}`, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("POST", "/api/orders", `{"shipping_address":"1 Main St"}`, true).Code)
	assert.Zero(t, h.mem.OrderCount())

	require.Equal(t, http.StatusCreated, h.call("POST", "/api/cart", `{"product_id":42,"quantity":2}`, true).Code)
	rec := h.call("POST", "/api/orders", `{"shipping_address":"1 Main St"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.call("GET", "/api/orders", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	orders := env["data"].([]interface{})
	require.Len(t, orders, 1)
	first := orders[0].(map[string]interface{})
	assert.Equal(t, "Pending", first["status_label"])
	assert.Equal(t, 39.8, first["total_amount"])
}

func TestProfileUpdate(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnprocessableEntity, h.call("PATCH", "/api/profile", `{}`, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("PATCH", "/api/profile", `{"avatar_url":"nope"}`, true).Code)

	rec := h.call("PATCH", "/api/profile", `{"full_name":" Ada Lovelace "}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Ada Lovelace", data["full_name"])
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.call("POST", "/api/login", `{"email":"ada@example.com","password":"wrong-pass"}`, false).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.call("POST", "/api/signup", `{"email":"ada@example.com","password":"secret123"}`, false).Code)

	rec := h.call("POST", "/api/login", `{"email":"ada@example.com","password":"secret123"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Signed in", decodeEnvelope(t, rec)["notice"])

	rec = h.call("GET", "/api/me", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, false, me["authenticated"])
	assert.EqualValues(t, 0, me["cart_count"])
}

func TestLoginPageDropsForeignNext(t *testing.T) {
	h := newHarness(t)

	rec := h.call("GET", "/login?next=/api/orders", "", false)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "/api/orders")

	rec = h.call("GET", "/login?next=//evil.example", "", false)
	body, _ = io.ReadAll(rec.Body)
	assert.NotContains(t, string(body), "evil.example")
}
