package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Events fired by a Gateway that has a dispatcher attached.
const (
	EventCartChanged = "storefront.cart_changed"
	EventOrderPlaced = "storefront.order_placed"
)

// CartChanged follows every successful cart write. Count is the new sum of
// quantities.
type CartChanged struct {
	UserID string
	Count  int
}

// OrderPlaced follows a successful checkout.
type OrderPlaced struct {
	UserID string
	Order  *models.Order
}

// WithEvents makes g fire CartChanged and OrderPlaced on bus.
func (g *Gateway) WithEvents(bus *event.Dispatcher) *Gateway {
	g.events = bus
	return g
}

// cartChanged re-reads the cart only when someone listens.
func (g *Gateway) cartChanged(ctx context.Context) {
	if g.events == nil || g.events.Count(EventCartChanged) == 0 {
		return
	}
	uid := g.identity.UserID()
	items, err := g.store.ListCart(ctx, uid)
	if err != nil {
		logger.WithCtx(ctx).Debug("gateway: cart count not published", "user_id", uid, "error", err)
		return
	}
	g.events.Fire(EventCartChanged, CartChanged{UserID: uid, Count: models.CartQuantity(items)})
}

func (g *Gateway) orderPlaced(o *models.Order) {
	if g.events == nil {
		return
	}
	g.events.Fire(EventOrderPlaced, OrderPlaced{UserID: g.identity.UserID(), Order: o})
}
