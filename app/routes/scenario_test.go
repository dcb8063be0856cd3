package routes_test

import (
	"testing"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/postgrest"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

// TestHostedBackendScenarios drives the API against canned PostgREST and
// GoTrue answers.
func TestHostedBackendScenarios(t *testing.T) {
	const project = "https://demo.supabase.co"
	gotrue := auth.NewGoTrue(project, "anon", "")

	r := router.New()
	r.Use(middleware.Identity(gotrue))
	routes.RegisterAPI(r, routes.Deps{
		Stores: repositories.RestFactory(postgrest.New(project, "anon")),
		Auth:   gotrue,
	})

	testkit.RunDir(t, r.Handler(), "testdata")
}
