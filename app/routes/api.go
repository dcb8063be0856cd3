// Package routes mounts the storefront endpoints.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// Deps are what the controllers need from the running application.
type Deps struct {
	Stores repositories.Factory
	Auth   auth.Provider
	// Events and Live are optional; without them cart and order changes
	// are not pushed.
	Events *event.Dispatcher
	Live   *ws.Hub
}

func RegisterAPI(r *router.Router, d Deps) {
	catalog := controllers.NewCatalogController(d.Stores)
	cart := controllers.NewCartController(d.Stores, d.Events)
	orders := controllers.NewOrderController(d.Stores, d.Events)
	live := controllers.NewLiveController(d.Live)
	profile := controllers.NewProfileController(d.Stores)
	authc := controllers.NewAuthController(d.Auth)

	r.Get("/login", "auth.login_page", authc.LoginPage)

	api := r.Group("/api")
	api.Get("/products", "products.index", catalog.Products)
	api.Get("/products/{id}", "products.show", catalog.Product)
	api.Get("/categories", "categories.index", catalog.Categories)
	api.Get("/search", "products.search", catalog.Search)
	api.Get("/cart", "cart.show", cart.Show)
	api.Get("/me", "auth.me", profile.Me)

	api.Post("/login", "auth.login", authc.Login)
	api.Post("/signup", "auth.signup", authc.Signup)
	api.Post("/logout", "auth.logout", authc.Logout)

	protected := api.Group("", middleware.RequireAuth(services.AuthGate{}.Require))
	protected.Post("/cart", "cart.add", cart.Add)
	protected.Patch("/cart/{id}", "cart.update", cart.Update)
	protected.Delete("/cart/{id}", "cart.remove", cart.Remove)
	protected.Post("/orders", "orders.create", orders.Create)
	protected.Get("/orders", "orders.index", orders.Index)
	protected.Patch("/profile", "profile.update", profile.Update)
	protected.Get("/ws", "live.connect", live.Connect)
}
