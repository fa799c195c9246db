package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(withTimeout(d.RequestTimeout))

		r.Get("/api/bookmarks", handlers.ListBookmarks(d))
		r.Post("/api/bookmarks", handlers.CreateBookmark(d))
		r.Get("/api/bookmarks/{id}", handlers.GetBookmark(d))
		r.Put("/api/bookmarks/{id}", handlers.UpdateBookmark(d))
		r.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
		r.Post("/api/bookmarks/{id}/lock", handlers.LockBookmark(d))
		r.Put("/api/bookmarks/{id}/status", handlers.SetBookmarkStatus(d))
		r.Post("/api/bookmarks/{id}/move", handlers.MoveBookmark(d))
		r.Post("/api/bookmarks/{id}/check", handlers.CheckBookmark(d))

		r.Get("/api/categories", handlers.CategoryTree(d))
		r.Post("/api/categories", handlers.CreateCategory(d))
		r.Delete("/api/categories/{name}", handlers.DeleteCategory(d))

		r.Get("/api/bulk", handlers.Bulk(d))
		r.Get("/api/stats", handlers.Stats(d))
	})
}
