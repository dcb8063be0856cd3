package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type ProfileController struct{ base }

func NewProfileController(stores repositories.Factory) *ProfileController {
	return &ProfileController{base{stores: stores}}
}

func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	u, err := c.gateway(r).UpdateUserProfile(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	response.Notice(w, http.StatusOK, "Profile saved", u)
}

type meView struct {
	Authenticated bool       `json:"authenticated"`
	User          *auth.User `json:"user"`
	CartCount     int        `json:"cart_count"`
}

// Me is what a page needs on load: who is signed in and the cart badge.
func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	gw := c.gateway(r)
	response.Success(w, meView{
		Authenticated: gw.IsAuthenticated(),
		User:          gw.CurrentUser(),
		CartCount:     services.CartCount(r.Context(), gw),
	})
}
