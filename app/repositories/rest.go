package repositories

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/postgrest"
)

const (
	selectAll        = "*"
	selectCartJoined = "*, products(*)"
	selectOrderTree  = "*, order_items(*, products(*))"
)

// Rest is the hosted table API driver.
type Rest struct {
	db *postgrest.Client
}

func NewRest(db *postgrest.Client) *Rest {
	return &Rest{db: db}
}

// RestFactory binds base to each identity's token.
func RestFactory(base *postgrest.Client) Factory {
	return func(token TokenFunc) Store {
		if token == nil {
			return NewRest(base)
		}
		return NewRest(base.WithToken(postgrest.TokenSource(token)))
	}
}

// ── Catalog ─────────────────────────────────────────────────────────────────

func (r *Rest) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.From("products").Select(selectAll)
	if f.Category != "" {
		q = q.Eq("category", f.Category)
	}
	if f.ActiveOnly {
		q = q.Eq("is_active", true)
	}

	var out []models.Product
	if err := q.Order("created_at", false).Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Rest) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := r.db.From("products").Select(selectAll).Eq("id", id).Single().Execute(ctx, &p)
	if postgrest.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Rest) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.db.From("categories").Select(selectAll).Order("name", true).Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Cart ────────────────────────────────────────────────────────────────────

type cartRow struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r *Rest) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	if err := r.db.From("cart").Select(selectCartJoined).Eq("user_id", userID).Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Rest) FindCartItem(ctx context.Context, userID string, productID int64) (*models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.From("cart").Select(selectAll).
		Eq("user_id", userID).
		Eq("product_id", productID).
		Limit(1).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (r *Rest) InsertCartItem(ctx context.Context, userID string, productID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	row := cartRow{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := r.db.From("cart").Select(selectAll).Single().Insert(ctx, row, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Rest) UpdateCartQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.From("cart").Select(selectAll).
		Eq("id", itemID).
		Eq("user_id", userID).
		Update(ctx, map[string]int{"quantity": quantity}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Rest) DeleteCartItem(ctx context.Context, userID string, itemID int64) error {
	return r.db.From("cart").Eq("id", itemID).Eq("user_id", userID).Delete(ctx)
}

func (r *Rest) ClearCart(ctx context.Context, userID string) error {
	return r.db.From("cart").Eq("user_id", userID).Delete(ctx)
}

// ── Orders ──────────────────────────────────────────────────────────────────

type orderRow struct {
	UserID          string          `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	Status          string          `json:"status"`
}

type orderItemRow struct {
	OrderID    int64           `json:"order_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (r *Rest) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	row := orderRow{
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
	}
	var out models.Order
	if err := r.db.From("orders").Select(selectAll).Single().Insert(ctx, row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Rest) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]orderItemRow, len(items))
	for i, it := range items {
		rows[i] = orderItemRow{
			OrderID:    it.OrderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	return r.db.From("order_items").Insert(ctx, rows, nil)
}

func (r *Rest) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.db.From("orders").Select(selectOrderTree).
		Eq("user_id", userID).
		Order("created_at", false).
		Execute(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ── Users ───────────────────────────────────────────────────────────────────

func (r *Rest) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*models.User, error) {
	var u models.User
	err := r.db.From("users").Select(selectAll).Eq("id", userID).Single().Update(ctx, fields, &u)
	if postgrest.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update users: %w", err)
	}
	return &u, nil
}
