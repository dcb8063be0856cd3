package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// SQL is the gorm driver. Ownership checks that the hosted backend does
// with row-level security are explicit WHERE clauses here.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) q(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ── Catalog ─────────────────────────────────────────────────────────────────

func (s *SQL) ListProducts(ctx context.Context, f ProductFilter) (out []models.Product, err error) {
	defer metrics.ObserveBackend("products", "select", time.Now(), &err)

	tx := s.q(ctx).Model(&models.Product{})
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	err = tx.Order("created_at desc").Order("id desc").Find(&out).Error
	return out, err
}

func (s *SQL) FindProduct(ctx context.Context, id int64) (_ *models.Product, err error) {
	defer metrics.ObserveBackend("products", "select", time.Now(), &err)

	var p models.Product
	if err = s.q(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *SQL) ListCategories(ctx context.Context) (out []models.Category, err error) {
	defer metrics.ObserveBackend("categories", "select", time.Now(), &err)

	err = s.q(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// ── Cart ────────────────────────────────────────────────────────────────────

func (s *SQL) ListCart(ctx context.Context, userID string) (out []models.CartItem, err error) {
	defer metrics.ObserveBackend("cart", "select", time.Now(), &err)

	err = s.q(ctx).Preload("Product").Where("user_id = ?", userID).Order("id asc").Find(&out).Error
	return out, err
}

func (s *SQL) FindCartItem(ctx context.Context, userID string, productID int64) (_ *models.CartItem, err error) {
	defer metrics.ObserveBackend("cart", "select", time.Now(), &err)

	var item models.CartItem
	err = s.q(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Order("id asc").First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *SQL) InsertCartItem(ctx context.Context, userID string, productID int64, quantity int) (_ *models.CartItem, err error) {
	defer metrics.ObserveBackend("cart", "insert", time.Now(), &err)

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err = s.q(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SQL) UpdateCartQuantity(ctx context.Context, userID string, itemID int64, quantity int) (_ *models.CartItem, err error) {
	defer metrics.ObserveBackend("cart", "update", time.Now(), &err)

	res := s.q(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if err = res.Error; err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var item models.CartItem
	if err = s.q(ctx).First(&item, itemID).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *SQL) DeleteCartItem(ctx context.Context, userID string, itemID int64) (err error) {
	defer metrics.ObserveBackend("cart", "delete", time.Now(), &err)

	return s.q(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{}).Error
}

func (s *SQL) ClearCart(ctx context.Context, userID string) (err error) {
	defer metrics.ObserveBackend("cart", "delete", time.Now(), &err)

	return s.q(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// ── Orders ──────────────────────────────────────────────────────────────────

func (s *SQL) InsertOrder(ctx context.Context, o *models.Order) (_ *models.Order, err error) {
	defer metrics.ObserveBackend("orders", "insert", time.Now(), &err)

	row := models.Order{
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
	}
	if err = s.q(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *SQL) InsertOrderItems(ctx context.Context, items []models.OrderItem) (err error) {
	if len(items) == 0 {
		return nil
	}
	defer metrics.ObserveBackend("order_items", "insert", time.Now(), &err)

	rows := make([]models.OrderItem, len(items))
	for i, it := range items {
		it.ID = 0
		it.Product = nil
		rows[i] = it
	}
	return s.q(ctx).Create(&rows).Error
}

func (s *SQL) ListOrders(ctx context.Context, userID string) (out []models.Order, err error) {
	defer metrics.ObserveBackend("orders", "select", time.Now(), &err)

	err = s.q(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

// ── Users ───────────────────────────────────────────────────────────────────

func (s *SQL) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (_ *models.User, err error) {
	defer metrics.ObserveBackend("users", "update", time.Now(), &err)

	var u models.User
	if err = s.q(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	if len(fields) > 0 {
		if err = s.q(ctx).Model(&u).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	if err = s.q(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ── Local credentials (auth.CredentialStore) ────────────────────────────────

// CreateCredential stores the login and its public profile row together.
func (s *SQL) CreateCredential(ctx context.Context, c *auth.Credential) error {
	return s.q(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Credential{}).Where("email = ?", c.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return auth.ErrEmailTaken
		}
		if err := tx.Create(&models.Credential{
			ID:           c.ID,
			Email:        c.Email,
			PasswordHash: c.PasswordHash,
			CreatedAt:    c.CreatedAt,
		}).Error; err != nil {
			if isUniqueViolation(err) {
				return auth.ErrEmailTaken
			}
			return err
		}
		return tx.Create(&models.User{ID: c.ID, Email: c.Email, FullName: c.FullName}).Error
	})
}

func (s *SQL) FindCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return s.findCredential(ctx, "email = ?", email)
}

func (s *SQL) FindCredentialByID(ctx context.Context, id string) (*auth.Credential, error) {
	return s.findCredential(ctx, "id = ?", id)
}

func (s *SQL) findCredential(ctx context.Context, where string, arg interface{}) (*auth.Credential, error) {
	var row models.Credential
	if err := s.q(ctx).Where(where, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrCredentialNotFound
		}
		return nil, err
	}

	c := &auth.Credential{ID: row.ID, Email: row.Email, PasswordHash: row.PasswordHash, CreatedAt: row.CreatedAt}
	var profile models.User
	if err := s.q(ctx).Select("full_name").First(&profile, "id = ?", row.ID).Error; err == nil {
		c.FullName = profile.FullName
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
