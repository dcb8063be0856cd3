package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type OrderController struct{ base }

// NewOrderController builds the controller. Placed orders are announced on
// events when it is not nil.
func NewOrderController(stores repositories.Factory, events *event.Dispatcher) *OrderController {
	return &OrderController{base{stores: stores, events: events}}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=1000"`
}

type orderView struct {
	models.Order
	StatusLabel string `json:"status_label"`
}

func view(o models.Order) orderView {
	return orderView{Order: o, StatusLabel: models.StatusLabel(o.Status)}
}

// Create checks the cart out into a pending order.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := c.gateway(r).CreateOrder(r.Context(), req.ShippingAddress)
	if err != nil {
		fail(w, err)
		return
	}
	response.Notice(w, http.StatusCreated, "Order placed", view(*order))
}

func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	orders, err := c.gateway(r).ListUserOrders(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = view(o)
	}
	response.Success(w, out)
}
