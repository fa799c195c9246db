package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/mw"
)

func init() { Register(registerBulk) }

func registerBulk(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(withTimeout(d.BulkTimeout))

		r.Post("/api/duplicates/find", handlers.FindDuplicates(d))
		r.Post("/api/duplicates/delete", handlers.DeleteDuplicates(d))
		r.With(bulkRateLimit(d)).Post("/api/links/validate", handlers.ValidateLinks(d))
		r.Post("/api/links/remove-dead", handlers.RemoveDeadLinks(d))
	})
}

// bulkRateLimit guards the endpoints that fan out to the network or parse uploads.
func bulkRateLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})
}
