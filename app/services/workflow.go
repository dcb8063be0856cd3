package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// LoginPath is where the auth gate sends anonymous visitors.
const LoginPath = "/login"

// Badge is the cart counter shown next to the cart link.
type Badge interface {
	Show(count int)
	Hide()
}

// Notifier renders the transient outcome of a user action.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// CartCount sums quantities over the cart. Any failure counts as zero.
func CartCount(ctx context.Context, gw *Gateway) int {
	items, err := gw.GetCart(ctx)
	if err != nil {
		return 0
	}
	return models.CartQuantity(items)
}

// RefreshCartBadge shows the current count, hiding the badge at zero.
func RefreshCartBadge(ctx context.Context, gw *Gateway, b Badge) int {
	n := CartCount(ctx, gw)
	if n > 0 {
		b.Show(n)
	} else {
		b.Hide()
	}
	return n
}

// AddToCartAndNotify adds to the cart, reports the outcome and refreshes
// the badge on success.
func AddToCartAndNotify(ctx context.Context, gw *Gateway, productID int64, quantity int, n Notifier, b Badge) bool {
	if _, err := gw.AddToCart(ctx, productID, quantity); err != nil {
		n.Error(err.Error())
		return false
	}
	n.Success("Added to cart")
	RefreshCartBadge(ctx, gw, b)
	return true
}

// SearchProducts filters the active catalog by a case-insensitive substring
// of name, description or category. An empty query matches everything.
func SearchProducts(ctx context.Context, gw *Gateway, query string) ([]models.Product, error) {
	products, err := gw.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products, nil
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	logger.WithCtx(ctx).Debug("search", "query", q, "hits", len(out), "of", len(products))
	return out, nil
}

// AuthGate guards pages that need a signed-in user.
type AuthGate struct {
	LoginPath string
}

// Require returns nil for a signed-in identity. Otherwise it returns
// ErrAuthRequired and the path to send the visitor to.
func (g AuthGate) Require(id *auth.Identity) (redirect string, err error) {
	if id != nil && id.IsAuthenticated() {
		return "", nil
	}
	path := g.LoginPath
	if path == "" {
		path = LoginPath
	}
	return path, ErrAuthRequired
}
