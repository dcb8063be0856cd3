package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// Operation names accepted by Memory.FailOn.
const (
	OpListProducts     = "list_products"
	OpFindProduct      = "find_product"
	OpListCategories   = "list_categories"
	OpListCart         = "list_cart"
	OpFindCartItem     = "find_cart_item"
	OpInsertCartItem   = "insert_cart_item"
	OpUpdateCartItem   = "update_cart_item"
	OpDeleteCartItem   = "delete_cart_item"
	OpClearCart        = "clear_cart"
	OpInsertOrder      = "insert_order"
	OpInsertOrderItems = "insert_order_items"
	OpListOrders       = "list_orders"
	OpUpdateUser       = "update_user"
)

// Memory is an in-process Store for development and tests. It copies rows
// in and out so callers never share memory with it.
type Memory struct {
	mu sync.Mutex

	seq        int64
	now        func() time.Time
	products   map[int64]models.Product
	categories []models.Category
	cart       map[int64]models.CartItem
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem
	users      map[string]models.User
	creds      map[string]auth.Credential
	faults     map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		now:        time.Now,
		products:   map[int64]models.Product{},
		cart:       map[int64]models.CartItem{},
		orders:     map[int64]models.Order{},
		orderItems: map[int64]models.OrderItem{},
		users:      map[string]models.User{},
		creds:      map[string]auth.Credential{},
		faults:     map[string]error{},
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

// must be called with mu held
func (m *Memory) fault(op string) error { return m.faults[op] }

func (m *Memory) nextID() int64 {
	m.seq++
	return m.seq
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// stable even within one clock tick.
func (m *Memory) tick() time.Time {
	return m.now().Add(time.Duration(m.seq) * time.Microsecond)
}

// ── Seeding ─────────────────────────────────────────────────────────────────

// AddProduct stores p, assigning an ID and CreatedAt when zero.
func (m *Memory) AddProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.nextID()
	} else if p.ID > m.seq {
		m.seq = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.tick()
	}
	m.products[p.ID] = p
	return p
}

func (m *Memory) AddCategory(c models.Category) models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.nextID()
	}
	m.categories = append(m.categories, c)
	return c
}

// AddUser stores a profile row.
func (m *Memory) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// CartRows returns every cart row of every user, for assertions.
func (m *Memory) CartRows() []models.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CartItem, 0, len(m.cart))
	for _, c := range m.cart {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OrderCount returns the number of stored orders.
func (m *Memory) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// ── Catalog ─────────────────────────────────────────────────────────────────

func (m *Memory) ListProducts(_ context.Context, f ProductFilter) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpListProducts); err != nil {
		return nil, err
	}

	out := []models.Product{}
	for _, p := range m.products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) FindProduct(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpFindProduct); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpListCategories); err != nil {
		return nil, err
	}
	out := append([]models.Category{}, m.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Cart ────────────────────────────────────────────────────────────────────

func (m *Memory) joinProduct(c models.CartItem) models.CartItem {
	if p, ok := m.products[c.ProductID]; ok {
		c.Product = &p
	}
	return c
}

func (m *Memory) ListCart(_ context.Context, userID string) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpListCart); err != nil {
		return nil, err
	}

	out := []models.CartItem{}
	for _, c := range m.cart {
		if c.UserID == userID {
			out = append(out, m.joinProduct(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) FindCartItem(_ context.Context, userID string, productID int64) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpFindCartItem); err != nil {
		return nil, err
	}

	var found *models.CartItem
	for _, c := range m.cart {
		if c.UserID == userID && c.ProductID == productID {
			if found == nil || c.ID < found.ID {
				cp := c
				found = &cp
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) InsertCartItem(_ context.Context, userID string, productID int64, quantity int) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpInsertCartItem); err != nil {
		return nil, err
	}

	item := models.CartItem{
		ID:        m.nextID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	item.CreatedAt = m.tick()
	m.cart[item.ID] = item
	return &item, nil
}

func (m *Memory) UpdateCartQuantity(_ context.Context, userID string, itemID int64, quantity int) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpUpdateCartItem); err != nil {
		return nil, err
	}

	c, ok := m.cart[itemID]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	c.Quantity = quantity
	m.cart[itemID] = c
	return &c, nil
}

func (m *Memory) DeleteCartItem(_ context.Context, userID string, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpDeleteCartItem); err != nil {
		return err
	}
	if c, ok := m.cart[itemID]; ok && c.UserID == userID {
		delete(m.cart, itemID)
	}
	return nil
}

func (m *Memory) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpClearCart); err != nil {
		return err
	}
	for id, c := range m.cart {
		if c.UserID == userID {
			delete(m.cart, id)
		}
	}
	return nil
}

// ── Orders ──────────────────────────────────────────────────────────────────

func (m *Memory) InsertOrder(_ context.Context, o *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpInsertOrder); err != nil {
		return nil, err
	}

	row := models.Order{
		ID:              m.nextID(),
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
	}
	row.CreatedAt = m.tick()
	m.orders[row.ID] = row
	return &row, nil
}

func (m *Memory) InsertOrderItems(_ context.Context, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpInsertOrderItems); err != nil {
		return err
	}
	for _, it := range items {
		it.ID = m.nextID()
		it.Product = nil
		m.orderItems[it.ID] = it
	}
	return nil
}

func (m *Memory) ListOrders(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpListOrders); err != nil {
		return nil, err
	}

	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		o.Items = nil
		for _, it := range m.orderItems {
			if it.OrderID != o.ID {
				continue
			}
			if p, ok := m.products[it.ProductID]; ok {
				it.Product = &p
			}
			o.Items = append(o.Items, it)
		}
		sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ── Users ───────────────────────────────────────────────────────────────────

func (m *Memory) UpdateUser(_ context.Context, userID string, fields map[string]interface{}) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(OpUpdateUser); err != nil {
		return nil, err
	}

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "full_name":
			u.FullName = s
		case "phone":
			u.Phone = s
		case "address":
			u.Address = s
		case "avatar_url":
			u.AvatarURL = s
		}
	}
	u.UpdatedAt = m.now()
	m.users[userID] = u
	return &u, nil
}

// ── Local credentials (auth.CredentialStore) ────────────────────────────────

func (m *Memory) CreateCredential(_ context.Context, c *auth.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.creds {
		if strings.EqualFold(existing.Email, c.Email) {
			return auth.ErrEmailTaken
		}
	}
	m.creds[c.ID] = *c
	m.users[c.ID] = models.User{ID: c.ID, Email: c.Email, FullName: c.FullName, CreatedAt: c.CreatedAt}
	return nil
}

func (m *Memory) FindCredentialByEmail(_ context.Context, email string) (*auth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creds {
		if strings.EqualFold(c.Email, email) {
			cp := c
			return &cp, nil
		}
	}
	return nil, auth.ErrCredentialNotFound
}

func (m *Memory) FindCredentialByID(_ context.Context, id string) (*auth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.creds[id]; ok {
		return &c, nil
	}
	return nil, auth.ErrCredentialNotFound
}
