// Package repositories hides where catalog, cart and order rows live. Three
// drivers implement Store: the hosted table API (Rest), a gorm database
// (SQL) and an in-process map (Memory). Each method is one backend round
// trip with no retries.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
)

// ErrNotFound is returned when a single-row lookup matched nothing.
var ErrNotFound = errors.New("repositories: not found")

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	ActiveOnly bool
	Category   string
}

type ProductRepository interface {
	// ListProducts returns newest first.
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	// ListCategories returns categories ordered by name.
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type CartRepository interface {
	// ListCart returns the user's rows with Product joined.
	ListCart(ctx context.Context, userID string) ([]models.CartItem, error)
	FindCartItem(ctx context.Context, userID string, productID int64) (*models.CartItem, error)
	InsertCartItem(ctx context.Context, userID string, productID int64, quantity int) (*models.CartItem, error)
	// UpdateCartQuantity touches only a row owned by userID and returns
	// (nil, nil) when none matched.
	UpdateCartQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, userID string, itemID int64) error
	ClearCart(ctx context.Context, userID string) error
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	// ListOrders returns newest first with Items and their Product joined.
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
}

type UserRepository interface {
	UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*models.User, error)
}

// Store is everything the gateway needs from a backend.
type Store interface {
	ProductRepository
	CartRepository
	OrderRepository
	UserRepository
}

// TokenFunc yields the access token of the identity a store acts for.
type TokenFunc func() string

// Factory returns a Store acting on behalf of the identity behind token.
// SQL and Memory stores ignore it; the Rest store sends it so row-level
// security applies.
type Factory func(token TokenFunc) Store

// Static returns a Factory that always hands out s.
func Static(s Store) Factory {
	return func(TokenFunc) Store { return s }
}
