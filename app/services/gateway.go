// Package services holds the storefront operations. A Gateway is bound to
// one auth.Identity and talks to whichever backend the repositories.Factory
// produces; every call is a single attempt with no retries.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Operation names, used in errors, logs and metrics.
const (
	OpListActiveProducts     = "list_active_products"
	OpGetProduct             = "get_product"
	OpListProductsByCategory = "list_products_by_category"
	OpListCategories         = "list_categories"
	OpGetCart                = "get_cart"
	OpAddToCart              = "add_to_cart"
	OpUpdateCartItemQuantity = "update_cart_item_quantity"
	OpRemoveFromCart         = "remove_from_cart"
	OpCreateOrder            = "create_order"
	OpListUserOrders         = "list_user_orders"
	OpUpdateUserProfile      = "update_user_profile"
)

type Gateway struct {
	store    repositories.Store
	identity *auth.Identity
	events   *event.Dispatcher
}

// NewGateway binds a store from factory to id. The store reads the access
// token on every call, so later identity changes apply immediately.
func NewGateway(factory repositories.Factory, id *auth.Identity) *Gateway {
	if id == nil {
		id = auth.NewIdentity()
	}
	return &Gateway{store: factory(id.AccessToken), identity: id}
}

// CurrentUser returns the signed-in user or nil.
func (g *Gateway) CurrentUser() *auth.User { return g.identity.User() }

func (g *Gateway) IsAuthenticated() bool { return g.identity.IsAuthenticated() }

// Identity exposes the identity the gateway acts for.
func (g *Gateway) Identity() *auth.Identity { return g.identity }

// done records op and logs a failure. Backend errors become *RemoteError;
// the typed errors of this package pass through unchanged.
func (g *Gateway) done(ctx context.Context, op string, err error) error {
	metrics.RecordOp(op, err)
	if err == nil {
		return nil
	}

	var (
		ar  *AuthRequiredError
		val *ValidationError
		nf  *NotFoundError
		re  *RemoteError
	)
	switch {
	case errors.As(err, &ar), errors.As(err, &val), errors.As(err, &nf):
		logger.WithCtx(ctx).Info("gateway: rejected", "op", op, "user_id", g.identity.UserID(), "reason", err.Error())
		return err
	case !errors.As(err, &re):
		err = &RemoteError{Op: op, Err: err}
	}
	logger.WithCtx(ctx).Error("gateway: failed", "op", op, "user_id", g.identity.UserID(), "error", err)
	return err
}

// ── Catalog ─────────────────────────────────────────────────────────────────

func (g *Gateway) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	out, err := g.store.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, g.done(ctx, OpListActiveProducts, err)
	}
	return out, g.done(ctx, OpListActiveProducts, nil)
}

func (g *Gateway) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := g.store.FindProduct(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		err = &NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, g.done(ctx, OpGetProduct, err)
	}
	return p, g.done(ctx, OpGetProduct, nil)
}

func (g *Gateway) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	out, err := g.store.ListProducts(ctx, repositories.ProductFilter{ActiveOnly: true, Category: category})
	if err != nil {
		return nil, g.done(ctx, OpListProductsByCategory, err)
	}
	return out, g.done(ctx, OpListProductsByCategory, nil)
}

func (g *Gateway) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := g.store.ListCategories(ctx)
	if err != nil {
		return nil, g.done(ctx, OpListCategories, err)
	}
	return out, g.done(ctx, OpListCategories, nil)
}

// ── Cart ────────────────────────────────────────────────────────────────────

// GetCart returns the user's cart with products joined. Anonymous callers
// get an empty cart.
func (g *Gateway) GetCart(ctx context.Context) ([]models.CartItem, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return []models.CartItem{}, nil
	}
	items, err := g.store.ListCart(ctx, uid)
	if err != nil {
		return nil, g.done(ctx, OpGetCart, err)
	}
	return items, g.done(ctx, OpGetCart, nil)
}

// AddToCart adds quantity of an active product. An existing row for the
// same product is bumped to existing+quantity; the read and the write are
// separate calls, so two concurrent adds can both insert.
func (g *Gateway) AddToCart(ctx context.Context, productID int64, quantity int) (*models.CartItem, error) {
	item, err := g.addToCart(ctx, productID, quantity)
	if err == nil {
		g.cartChanged(ctx)
	}
	return item, g.done(ctx, OpAddToCart, err)
}

func (g *Gateway) addToCart(ctx context.Context, productID int64, quantity int) (*models.CartItem, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return nil, &AuthRequiredError{Op: OpAddToCart}
	}
	if quantity < 1 {
		return nil, &ValidationError{Op: OpAddToCart, Reason: "quantity must be at least 1"}
	}

	p, err := g.store.FindProduct(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &ValidationError{Op: OpAddToCart, Reason: "product does not exist or is no longer available"}
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, &ValidationError{Op: OpAddToCart, Reason: "product does not exist or is no longer available"}
	}

	existing, err := g.store.FindCartItem(ctx, uid, productID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return g.store.InsertCartItem(ctx, uid, productID, quantity)
	case err != nil:
		return nil, err
	}
	return g.store.UpdateCartQuantity(ctx, uid, existing.ID, existing.Quantity+quantity)
}

// UpdateCartItemQuantity sets the quantity of one of the user's rows. A row
// that is missing or owned by someone else yields (nil, nil).
func (g *Gateway) UpdateCartItemQuantity(ctx context.Context, cartItemID int64, quantity int) (*models.CartItem, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return nil, g.done(ctx, OpUpdateCartItemQuantity, &AuthRequiredError{Op: OpUpdateCartItemQuantity})
	}
	if quantity < 1 {
		return nil, g.done(ctx, OpUpdateCartItemQuantity, &ValidationError{Op: OpUpdateCartItemQuantity, Reason: "quantity must be at least 1"})
	}
	item, err := g.store.UpdateCartQuantity(ctx, uid, cartItemID, quantity)
	if err != nil {
		return nil, g.done(ctx, OpUpdateCartItemQuantity, err)
	}
	if item != nil {
		g.cartChanged(ctx)
	}
	return item, g.done(ctx, OpUpdateCartItemQuantity, nil)
}

// RemoveFromCart deletes one of the user's rows. Removing a row that does
// not exist, or is not the user's, still succeeds.
func (g *Gateway) RemoveFromCart(ctx context.Context, cartItemID int64) error {
	uid := g.identity.UserID()
	if uid == "" {
		return g.done(ctx, OpRemoveFromCart, &AuthRequiredError{Op: OpRemoveFromCart})
	}
	if err := g.store.DeleteCartItem(ctx, uid, cartItemID); err != nil {
		return g.done(ctx, OpRemoveFromCart, err)
	}
	g.cartChanged(ctx)
	return g.done(ctx, OpRemoveFromCart, nil)
}

// ── Orders ──────────────────────────────────────────────────────────────────

// CreateOrder turns the cart into a pending order:
//
//  1. snapshot the cart
//  2. total the snapshot
//  3. insert the order
//  4. insert its items
//  5. clear the cart
//
// Nothing is rolled back. If step 4 fails the order row is left behind and
// the cart is kept. If step 5 fails the order is still returned.
func (g *Gateway) CreateOrder(ctx context.Context, shippingAddress string) (*models.Order, error) {
	order, err := g.createOrder(ctx, shippingAddress)
	if err == nil {
		metrics.OrdersCreated.Inc()
		g.orderPlaced(order)
		g.cartChanged(ctx)
	}
	return order, g.done(ctx, OpCreateOrder, err)
}

func (g *Gateway) createOrder(ctx context.Context, shippingAddress string) (*models.Order, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return nil, &AuthRequiredError{Op: OpCreateOrder}
	}

	cart, err := g.store.ListCart(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, &ValidationError{Op: OpCreateOrder, Reason: "cart is empty"}
	}
	for _, c := range cart {
		if c.Product == nil {
			return nil, &ValidationError{Op: OpCreateOrder, Reason: fmt.Sprintf("product %d is no longer available", c.ProductID)}
		}
	}

	order, err := g.store.InsertOrder(ctx, &models.Order{
		UserID:          uid,
		TotalAmount:     models.CartTotal(cart),
		ShippingAddress: shippingAddress,
		Status:          models.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	items := models.NewOrderItems(order.ID, cart)
	if err := g.store.InsertOrderItems(ctx, items); err != nil {
		logger.WithCtx(ctx).Warn("checkout: order left without items",
			"op", OpCreateOrder, "user_id", uid, "order_id", order.ID)
		return nil, err
	}

	if err := g.store.ClearCart(ctx, uid); err != nil {
		logger.WithCtx(ctx).Warn("checkout: cart not cleared",
			"op", OpCreateOrder, "user_id", uid, "order_id", order.ID, "error", err)
	}

	for i := range items {
		items[i].Product = cart[i].Product
	}
	order.Items = items
	return order, nil
}

// ListUserOrders returns the user's orders newest first with items and
// products nested. Anonymous callers get none.
func (g *Gateway) ListUserOrders(ctx context.Context) ([]models.Order, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return []models.Order{}, nil
	}
	out, err := g.store.ListOrders(ctx, uid)
	if err != nil {
		return nil, g.done(ctx, OpListUserOrders, err)
	}
	return out, g.done(ctx, OpListUserOrders, nil)
}

// ── Profile ─────────────────────────────────────────────────────────────────

// UpdateUserProfile applies the set fields of u to the user's profile row.
func (g *Gateway) UpdateUserProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error) {
	uid := g.identity.UserID()
	if uid == "" {
		return nil, g.done(ctx, OpUpdateUserProfile, &AuthRequiredError{Op: OpUpdateUserProfile})
	}
	if u.Empty() {
		return nil, g.done(ctx, OpUpdateUserProfile, &ValidationError{Op: OpUpdateUserProfile, Reason: "no fields to update"})
	}

	fields := u.Fields()
	for k, v := range fields {
		if s, ok := v.(string); ok {
			fields[k] = strings.TrimSpace(s)
		}
	}

	user, err := g.store.UpdateUser(ctx, uid, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		err = &NotFoundError{Entity: "user", ID: uid}
	}
	if err != nil {
		return nil, g.done(ctx, OpUpdateUserProfile, err)
	}
	return user, g.done(ctx, OpUpdateUserProfile, nil)
}
