package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type CartController struct{ base }

// NewCartController builds the controller. Cart writes are announced on events
// when it is not nil.
func NewCartController(stores repositories.Factory, events *event.Dispatcher) *CartController {
	return &CartController{base{stores: stores, events: events}}
}

type cartView struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity"   validate:"omitempty,min=1,max=999"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	items, err := c.gateway(r).GetCart(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	response.Success(w, cartView{Items: items, Count: models.CartQuantity(items), Total: models.CartTotal(items)})
}

// Add puts a product in the cart. quantity defaults to 1.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decode(w, r, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := c.gateway(r).AddToCart(r.Context(), req.ProductID, qty)
	if err != nil {
		fail(w, err)
		return
	}
	response.Notice(w, http.StatusCreated, "Added to cart", item)
}

func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req updateCartRequest
	if !decode(w, r, &req) {
		return
	}

	item, err := c.gateway(r).UpdateCartItemQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		fail(w, err)
		return
	}
	if item == nil {
		// no row of this user matched; nothing changed
		response.Success(w, nil)
		return
	}
	response.Notice(w, http.StatusOK, "Cart updated", item)
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := c.gateway(r).RemoveFromCart(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	response.Notice(w, http.StatusOK, "Removed from cart", nil)
}
