package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/mw"
)

func init() { Register(registerTransfer) }

// exportTypes are the export payloads worth compressing.
var exportTypes = []string{"text/html", "application/json", "application/xml", "text/csv"}

func registerTransfer(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.With(withTimeout(d.RequestTimeout), middleware.Compress(5, exportTypes...)).
			Get("/api/export", handlers.Export(d))

		r.With(withTimeout(d.BulkTimeout), bulkRateLimit(d)).
			Post("/api/import", handlers.Import(d))
	})
}
