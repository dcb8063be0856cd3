// Package kernel is the composition root. Boot reads the configuration and
// assembles the backend, the auth provider and the local state that the
// HTTP server and the CLI share.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/kv"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/postgrest"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// ErrNotConfigured is returned by operations that need a backend while the
// supabase URL or anon key is missing.
var ErrNotConfigured = errors.New("kernel: supabase configuration required")

// Kernel holds the wired application.
type Kernel struct {
	Backend  string
	Bus      *event.Dispatcher
	KV       kv.Store
	Stores   repositories.Factory
	Provider auth.Provider
	// Auth runs the persisted CLI session. Nil until the backend is ready.
	Auth *auth.Manager
	// Live pushes cart and order events to browser sockets.
	Live *ws.Hub

	ready bool
	mongo *logger.MongoHandler
	sql   bool
}

// Boot wires everything selected by the configuration.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	k := &Kernel{Backend: config.BackendDriver(), Bus: event.New()}

	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(ctx, uri, config.LogMongoDB(), config.LogMongoCollection(), slog.LevelInfo)
		if err != nil {
			logger.Warn("kernel: mongo log mirror disabled", "error", err)
		} else {
			logger.Mirror(h)
			k.mongo = h
		}
	}

	store, err := kv.Open(ctx)
	if err != nil {
		k.Close()
		return nil, fmt.Errorf("kv: %w", err)
	}
	k.KV = store

	switch k.Backend {
	case "memory":
		err = k.bootMemory()
	case "sql":
		err = k.bootSQL()
	default:
		err = k.bootSupabase(ctx)
	}
	if err != nil {
		k.Close()
		return nil, err
	}

	k.Bus.Listen(auth.EventName, func(p interface{}) {
		if c, ok := p.(auth.Change); ok {
			uid := ""
			if c.Session != nil && c.Session.User != nil {
				uid = c.Session.User.ID
			}
			logger.Debug("auth: state changed", "event", c.Event, "user_id", uid)
		}
	})

	if k.ready {
		box, err := crypt.New(config.AppKey())
		if err != nil {
			k.Close()
			return nil, err
		}
		k.Auth = auth.NewManager(k.Provider, k.Bus, auth.KVSessionStore{Store: k.KV, Box: box})
		k.Live = ws.NewHub()
		k.listenLive()
	}
	return k, nil
}

// listenLive forwards gateway events to the user's open sockets.
func (k *Kernel) listenLive() {
	k.Bus.Listen(services.EventCartChanged, func(p interface{}) {
		if c, ok := p.(services.CartChanged); ok {
			k.Live.SendJSON(c.UserID, map[string]interface{}{"type": "cart.count", "count": c.Count})
		}
	})
	k.Bus.Listen(services.EventOrderPlaced, func(p interface{}) {
		if o, ok := p.(services.OrderPlaced); ok {
			k.Live.SendJSON(o.UserID, map[string]interface{}{"type": "order.placed", "order": o.Order})
		}
	})
}

func (k *Kernel) bootSupabase(ctx context.Context) error {
	url := config.SupabaseURL()
	if url == "" {
		url = kv.GetString(ctx, k.KV, kv.KeySupabaseURL)
	}
	key := config.SupabaseAnonKey()
	if key == "" {
		key = kv.GetString(ctx, k.KV, kv.KeySupabaseAnonKey)
	}
	if url == "" || key == "" {
		logger.Warn("kernel: supabase url or anon key missing")
		return nil
	}

	base := postgrest.New(url, key).WithTimeout(config.HTTPTimeout())
	k.Stores = repositories.RestFactory(base)
	k.Provider = auth.NewGoTrue(url, key, config.SupabaseJWTSecret())
	k.ready = true
	return nil
}

func (k *Kernel) bootSQL() error {
	if err := database.Connect(); err != nil {
		return err
	}
	k.sql = true
	if err := migration.New(database.DB).WithOutput(io.Discard).Run(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	s := repositories.NewSQL(database.DB)
	k.Stores = repositories.Static(s)
	k.Provider = auth.NewLocal(s, config.JWTSecret())
	k.ready = true
	return nil
}

func (k *Kernel) bootMemory() error {
	m := repositories.NewMemory()
	for _, c := range seeders.DemoCategories() {
		m.AddCategory(c)
	}
	for _, p := range seeders.DemoProducts() {
		m.AddProduct(p)
	}
	k.Stores = repositories.Static(m)
	k.Provider = auth.NewLocal(m, config.JWTSecret())
	k.ready = true
	return nil
}

// Ready reports whether a backend is configured.
func (k *Kernel) Ready() bool { return k.ready }

// Router builds the router with the global middleware and every route.
func (k *Kernel) Router() *router.Router {
	r := router.New()

	// outermost first
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.SetupRequired(k.Ready, "/metrics"))
	// throttle by client IP before any token costs an auth round trip
	r.Use(middleware.NewRateLimiter(config.RateLimit(), 2*config.RateLimit()).Handler)
	r.Use(k.identity)

	r.HandleFunc("/metrics", metrics.Handler())
	routes.RegisterAPI(r, routes.Deps{Stores: k.Stores, Auth: k.Provider, Events: k.Bus, Live: k.Live})
	return r
}

// HTTPHandler is Router().Handler().
func (k *Kernel) HTTPHandler() http.Handler { return k.Router().Handler() }

// identity resolves bearer tokens once a provider exists.
func (k *Kernel) identity(next http.Handler) http.Handler {
	if k.Provider == nil {
		return next
	}
	return middleware.Identity(k.Provider)(next)
}

// Close releases the stores opened by Boot.
func (k *Kernel) Close() {
	if k.Live != nil {
		k.Live.Close()
	}
	if k.KV != nil {
		if err := k.KV.Close(); err != nil {
			logger.Warn("kernel: kv close", "error", err)
		}
	}
	if k.sql {
		if err := database.Close(); err != nil {
			logger.Warn("kernel: database close", "error", err)
		}
	}
	if k.mongo != nil {
		k.mongo.Close()
	}
}
