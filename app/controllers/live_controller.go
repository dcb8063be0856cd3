package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// LiveController upgrades signed-in clients to a WebSocket that receives
// cart counts and placed orders.
type LiveController struct {
	hub *ws.Hub
}

func NewLiveController(hub *ws.Hub) *LiveController {
	return &LiveController{hub: hub}
}

func (c *LiveController) Connect(w http.ResponseWriter, r *http.Request) {
	if c.hub == nil {
		response.Error(w, http.StatusServiceUnavailable, "Live updates are not available")
		return
	}
	c.hub.Serve(w, r, auth.IdentityFrom(r.Context()).UserID())
}
