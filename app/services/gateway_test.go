package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() { logger.Discard() }

func signedIn(userID string) *auth.Identity {
	id := auth.NewIdentity()
	id.Apply(auth.Change{Event: auth.SignedIn, Session: &auth.Session{
		AccessToken: "token-" + userID,
		User:        &auth.User{ID: userID, Email: userID + "@example.com"},
	}})
	return id
}

type fixture struct {
	mem *repositories.Memory
	gw  *services.Gateway
	mug models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := repositories.NewMemory()
	mug := mem.AddProduct(models.Product{ID: 42, Name: "Mug", Description: "Stoneware", Category: "kitchen", Price: decimal.RequireFromString("19.90"), IsActive: true})
	mem.AddUser(models.User{ID: "u1", Email: "u1@example.com"})
	return &fixture{mem: mem, gw: services.NewGateway(repositories.Static(mem), signedIn("u1")), mug: mug}
}

func TestInactiveProductsAreNeverListed(t *testing.T) {
	f := newFixture(t)
	f.mem.AddProduct(models.Product{Name: "Retired", Category: "kitchen", Price: decimal.NewFromInt(5), IsActive: false})
	newest := f.mem.AddProduct(models.Product{Name: "Lamp", Category: "home", Price: decimal.NewFromInt(30), IsActive: true})

	all, err := f.gw.ListActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newest.ID, all[0].ID, "newest first")
	for _, p := range all {
		assert.True(t, p.IsActive)
	}

	kitchen, err := f.gw.ListProductsByCategory(context.Background(), "kitchen")
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, "Mug", kitchen[0].Name)
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.GetProduct(context.Background(), 999)
	var nf *services.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)
}

func TestAddTwiceMergesIntoOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)
	item, err := f.gw.AddToCart(ctx, 42, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	rows := f.mem.CartRows()
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Quantity)
}

func TestAddToCartRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := f.mem.AddProduct(models.Product{Name: "Hidden", Price: decimal.NewFromInt(1), IsActive: false})

	_, err := f.gw.AddToCart(ctx, hidden.ID, 1)
	assert.True(t, services.IsValidation(err))

	_, err = f.gw.AddToCart(ctx, 12345, 1)
	assert.True(t, services.IsValidation(err))

	_, err = f.gw.AddToCart(ctx, 42, 0)
	assert.True(t, services.IsValidation(err))

	anon := services.NewGateway(repositories.Static(f.mem), nil)
	_, err = anon.AddToCart(ctx, 42, 1)
	assert.ErrorIs(t, err, services.ErrAuthRequired)
	assert.Empty(t, f.mem.CartRows())
}

func TestAnonymousReadsAreEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)

	anon := services.NewGateway(repositories.Static(f.mem), auth.NewIdentity())
	cart, err := anon.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := anon.ListUserOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.False(t, anon.IsAuthenticated())
	assert.Nil(t, anon.CurrentUser())
}

func TestAnonymousWritesNeedAuth(t *testing.T) {
	anon := services.NewGateway(repositories.Static(repositories.NewMemory()), nil)
	ctx := context.Background()

	_, err := anon.UpdateCartItemQuantity(ctx, 1, 2)
	assert.ErrorIs(t, err, services.ErrAuthRequired)
	assert.ErrorIs(t, anon.RemoveFromCart(ctx, 1), services.ErrAuthRequired)
	_, err = anon.CreateOrder(ctx, "1 Main St")
	assert.ErrorIs(t, err, services.ErrAuthRequired)
	name := "Ada"
	_, err = anon.UpdateUserProfile(ctx, models.ProfileUpdate{FullName: &name})
	assert.ErrorIs(t, err, services.ErrAuthRequired)
}

func TestCreateOrderOnEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.gw.CreateOrder(context.Background(), "1 Main St")
	assert.True(t, services.IsValidation(err))
	assert.Zero(t, f.mem.OrderCount())
}

func TestCheckoutScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.AddToCart(ctx, 42, 2)
	require.NoError(t, err)

	order, err := f.gw.CreateOrder(ctx, "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, "39.80", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "19.90", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "39.80", order.Items[0].TotalPrice.StringFixed(2))

	cart, err := f.gw.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := f.gw.ListUserOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Mug", orders[0].Items[0].Product.Name)
}

// unjoinedCart drops the product relation from cart reads, as the backend
// does when the product row is gone or hidden.
type unjoinedCart struct{ *repositories.Memory }

func (u unjoinedCart) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := u.Memory.ListCart(ctx, userID)
	for i := range items {
		items[i].Product = nil
	}
	return items, err
}

func TestCheckoutRejectsRowWithoutProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.gw.AddToCart(ctx, 42, 2)
	require.NoError(t, err)

	gw := services.NewGateway(repositories.Static(unjoinedCart{f.mem}), signedIn("u1"))
	order, err := gw.CreateOrder(ctx, "1 Main St")
	assert.Nil(t, order)
	var val *services.ValidationError
	require.ErrorAs(t, err, &val)
	assert.Contains(t, val.Reason, "no longer available")

	assert.Zero(t, f.mem.OrderCount(), "no order is inserted")
	assert.Len(t, f.mem.CartRows(), 1, "cart is kept")
}

func TestCheckoutItemsFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.gw.AddToCart(ctx, 42, 2)
	require.NoError(t, err)

	boom := errors.New("insert rejected")
	f.mem.FailOn(repositories.OpInsertOrderItems, boom)

	_, err = f.gw.CreateOrder(ctx, "1 Main St")
	var re *services.RemoteError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, services.OpCreateOrder, re.Op)

	assert.Equal(t, 1, f.mem.OrderCount(), "order row is not rolled back")
	assert.Len(t, f.mem.CartRows(), 1, "cart is kept")
}

func TestCheckoutClearFailureStillReturnsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)

	f.mem.FailOn(repositories.OpClearCart, errors.New("delete rejected"))

	order, err := f.gw.CreateOrder(ctx, "1 Main St")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Len(t, f.mem.CartRows(), 1)
}

func TestRemoveForeignRowSucceedsAndKeepsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := services.NewGateway(repositories.Static(f.mem), signedIn("u2"))
	theirs, err := other.AddToCart(ctx, 42, 1)
	require.NoError(t, err)

	require.NoError(t, f.gw.RemoveFromCart(ctx, theirs.ID))
	require.NoError(t, f.gw.RemoveFromCart(ctx, 999))

	cart, err := other.GetCart(ctx)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestUpdateQuantityZeroRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.gw.UpdateCartItemQuantity(ctx, 999, 4)
	require.NoError(t, err)
	assert.Nil(t, item)

	added, err := f.gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)
	item, err = f.gw.UpdateCartItemQuantity(ctx, added.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
}

func TestBackendFailureIsRemoteError(t *testing.T) {
	f := newFixture(t)
	f.mem.FailOn(repositories.OpListProducts, errors.New("connection refused"))

	_, err := f.gw.ListActiveProducts(context.Background())
	assert.True(t, services.IsRemote(err))
}

func TestUpdateUserProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.UpdateUserProfile(ctx, models.ProfileUpdate{})
	assert.True(t, services.IsValidation(err))

	name, phone := "  Ada Lovelace ", "555-0100"
	u, err := f.gw.UpdateUserProfile(ctx, models.ProfileUpdate{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "555-0100", u.Phone)
}

func TestGatewayFollowsIdentityChanges(t *testing.T) {
	mem := repositories.NewMemory()
	mem.AddProduct(models.Product{ID: 42, Price: decimal.NewFromInt(1), IsActive: true})

	bus := event.New()
	id := auth.NewIdentity()
	id.Subscribe(bus)
	gw := services.NewGateway(repositories.Static(mem), id)
	ctx := context.Background()

	_, err := gw.AddToCart(ctx, 42, 1)
	assert.ErrorIs(t, err, services.ErrAuthRequired)

	bus.Fire(auth.EventName, auth.Change{Event: auth.SignedIn, Session: &auth.Session{AccessToken: "t", User: &auth.User{ID: "u9"}}})
	_, err = gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, "u9", gw.CurrentUser().ID)

	bus.Fire(auth.EventName, auth.Change{Event: auth.SignedOut})
	cart, err := gw.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestGatewayAnnouncesCartAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bus := event.New()
	var counts []int
	var placed []services.OrderPlaced
	bus.Listen(services.EventCartChanged, func(p interface{}) {
		c := p.(services.CartChanged)
		assert.Equal(t, "u1", c.UserID)
		counts = append(counts, c.Count)
	})
	bus.Listen(services.EventOrderPlaced, func(p interface{}) {
		placed = append(placed, p.(services.OrderPlaced))
	})
	gw := services.NewGateway(repositories.Static(f.mem), signedIn("u1")).WithEvents(bus)

	item, err := gw.AddToCart(ctx, 42, 2)
	require.NoError(t, err)
	_, err = gw.UpdateCartItemQuantity(ctx, item.ID, 5)
	require.NoError(t, err)
	_, err = gw.UpdateCartItemQuantity(ctx, 9999, 1)
	require.NoError(t, err)
	_, err = gw.AddToCart(ctx, 42, 0)
	require.Error(t, err)

	order, err := gw.CreateOrder(ctx, "1 Main St")
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, "u1", placed[0].UserID)
	assert.Equal(t, order.ID, placed[0].Order.ID)

	item, err = gw.AddToCart(ctx, 42, 1)
	require.NoError(t, err)
	require.NoError(t, gw.RemoveFromCart(ctx, item.ID))

	assert.Equal(t, []int{2, 5, 0, 1, 0}, counts, "failed writes and zero-row updates stay quiet")
}
