package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/logger"
)

type categoryTreeResponse struct {
	Categories []*domain.CategoryNode `json:"categories"`
}

func CategoryTree(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := d.Service.CategoryTree(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if tree == nil {
			tree = []*domain.CategoryNode{}
		}
		writeJSON(w, http.StatusOK, categoryTreeResponse{Categories: tree})
	}
}

func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c domain.Category
		if err := decodeJSON(w, r, &c); err != nil {
			writeError(w, r, d, err)
			return
		}

		c, err := d.Service.CreateCategory(r.Context(), c)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("category created",
			logger.String("name", c.Name),
			logger.String("parent", c.ParentCategory))
		writeJSON(w, http.StatusCreated, c)
	}
}

// DeleteCategory removes /{name}; ?parent= selects a nested category.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := domain.Category{
			Name:           chi.URLParam(r, "name"),
			ParentCategory: r.URL.Query().Get("parent"),
		}
		if err := d.Service.DeleteCategory(r.Context(), c); err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("category deleted",
			logger.String("name", c.Name),
			logger.String("parent", c.ParentCategory))
		w.WriteHeader(http.StatusNoContent)
	}
}
