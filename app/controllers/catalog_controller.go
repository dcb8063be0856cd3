package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type CatalogController struct{ base }

func NewCatalogController(stores repositories.Factory) *CatalogController {
	return &CatalogController{base{stores: stores}}
}

// Products lists active products, optionally by ?category=.
func (c *CatalogController) Products(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.Product
		err error
	)
	gw := c.gateway(r)
	if cat := r.URL.Query().Get("category"); cat != "" {
		out, err = gw.ListProductsByCategory(r.Context(), cat)
	} else {
		out, err = gw.ListActiveProducts(r.Context())
	}
	if err != nil {
		fail(w, err)
		return
	}
	response.Success(w, out)
}

func (c *CatalogController) Product(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := c.gateway(r).GetProduct(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	response.Success(w, p)
}

func (c *CatalogController) Categories(w http.ResponseWriter, r *http.Request) {
	out, err := c.gateway(r).ListCategories(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	response.Success(w, out)
}

// Search matches ?q= against name, description and category.
func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	out, err := services.SearchProducts(r.Context(), c.gateway(r), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, err)
		return
	}
	response.Success(w, out)
}
