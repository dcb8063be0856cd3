package repositories_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/postgrest"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

const base = "https://demo.supabase.co"

func restStore(t *testing.T, token string) (repositories.Store, *testkit.MockTransport) {
	t.Helper()
	mt := testkit.NewMockTransport()
	http.DefaultClient.Transport = mt
	t.Cleanup(http.ResetTransport)

	factory := repositories.RestFactory(postgrest.New(base, "anon"))
	return factory(func() string { return token }), mt
}

func params(t *testing.T, call *testkit.RecordedCall) url.Values {
	t.Helper()
	u, err := url.Parse(call.URL)
	require.NoError(t, err)
	return u.Query()
}

func TestRestListActiveProducts(t *testing.T) {
	s, mt := restStore(t, "")
	mt.On("GET", base+"/rest/v1/products").Reply(200, `[{"id":2,"name":"B","price":5,"is_active":true},{"id":1,"name":"A","price":1.5,"is_active":true}]`)

	out, err := s.ListProducts(context.Background(), repositories.ProductFilter{ActiveOnly: true, Category: "mugs"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[1].Price.Equal(decimal.RequireFromString("1.5")))

	q := params(t, mt.LastCall())
	assert.Equal(t, "eq.true", q.Get("is_active"))
	assert.Equal(t, "eq.mugs", q.Get("category"))
	assert.Equal(t, "created_at.desc", q.Get("order"))
	assert.Equal(t, "Bearer anon", mt.LastCall().Header.Get("Authorization"))
}

func TestRestFindProductNotFound(t *testing.T) {
	s, mt := restStore(t, "")
	mt.On("GET", base+"/rest/v1/products").Reply(406, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)

	_, err := s.FindProduct(context.Background(), 99)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRestCartUsesCartTableWithJoin(t *testing.T) {
	s, mt := restStore(t, "user-jwt")
	mt.On("GET", base+"/rest/v1/cart").Reply(200, `[{"id":1,"user_id":"u1","product_id":42,"quantity":2,"products":{"id":42,"price":19.9}}]`)

	items, err := s.ListCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)

	call := mt.LastCall()
	q := params(t, call)
	assert.Equal(t, "*, products(*)", q.Get("select"))
	assert.Equal(t, "eq.u1", q.Get("user_id"))
	assert.Equal(t, "Bearer user-jwt", call.Header.Get("Authorization"))
}

func TestRestFindCartItemMiss(t *testing.T) {
	s, mt := restStore(t, "tok")
	mt.On("GET", base+"/rest/v1/cart").Reply(200, `[]`)

	_, err := s.FindCartItem(context.Background(), "u1", 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, "eq.42", params(t, mt.LastCall()).Get("product_id"))
}

func TestRestUpdateCartQuantityZeroRows(t *testing.T) {
	s, mt := restStore(t, "tok")
	mt.On("PATCH", base+"/rest/v1/cart").Reply(200, `[]`)

	item, err := s.UpdateCartQuantity(context.Background(), "u1", 5, 3)
	require.NoError(t, err)
	assert.Nil(t, item)

	q := params(t, mt.LastCall())
	assert.Equal(t, "eq.5", q.Get("id"))
	assert.Equal(t, "eq.u1", q.Get("user_id"))
	var body map[string]int
	testkit.DecodeBody(t, mt.LastCall(), &body)
	assert.Equal(t, 3, body["quantity"])
}

func TestRestInsertOrderItemsPayload(t *testing.T) {
	s, mt := restStore(t, "tok")
	mt.On("POST", base+"/rest/v1/order_items").Reply(201, `[]`)

	err := s.InsertOrderItems(context.Background(), []models.OrderItem{{
		OrderID: 7, ProductID: 42, Quantity: 2,
		UnitPrice:  decimal.RequireFromString("19.90"),
		TotalPrice: decimal.RequireFromString("39.80"),
	}})
	require.NoError(t, err)

	var rows []map[string]interface{}
	testkit.DecodeBody(t, mt.LastCall(), &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 39.8, rows[0]["total_price"])
	assert.NotContains(t, rows[0], "id")
	assert.NotContains(t, rows[0], "products")
}

func TestRestListOrdersNested(t *testing.T) {
	s, mt := restStore(t, "tok")
	mt.On("GET", base+"/rest/v1/orders").Reply(200, `[{"id":1,"user_id":"u1","total_amount":39.8,"status":"pending",
		"order_items":[{"id":3,"order_id":1,"product_id":42,"quantity":2,"unit_price":19.9,"total_price":39.8,"products":{"id":42,"name":"Mug"}}]}]`)

	orders, err := s.ListOrders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Mug", orders[0].Items[0].Product.Name)
	assert.Equal(t, "*, order_items(*, products(*))", params(t, mt.LastCall()).Get("select"))
}

func TestRestUpdateUser(t *testing.T) {
	s, mt := restStore(t, "tok")
	mt.On("PATCH", base+"/rest/v1/users").Reply(200, `{"id":"u1","full_name":"Ada"}`)

	u, err := s.UpdateUser(context.Background(), "u1", map[string]interface{}{"full_name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FullName)
	assert.Equal(t, "application/vnd.pgrst.object+json", mt.LastCall().Header.Get("Accept"))
}
