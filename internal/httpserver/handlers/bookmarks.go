package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/service"
)

type listResponse struct {
	Total     int                `json:"total"`
	Bookmarks []*domain.Bookmark `json:"bookmarks"`
}

// ListBookmarks supports ?category=&subcategory=&status=&tag=&q=.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := service.ListFilter{
			Category:    q.Get("category"),
			Subcategory: q.Get("subcategory"),
			Tag:         q.Get("tag"),
			Query:       q.Get("q"),
		}
		if raw := q.Get("status"); raw != "" {
			st, err := domain.ParseStatus(raw)
			if err != nil {
				writeError(w, r, d, err)
				return
			}
			f.Status = st
		}

		records, err := d.Service.List(r.Context(), f)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if records == nil {
			records = []*domain.Bookmark{}
		}
		writeJSON(w, http.StatusOK, listResponse{Total: len(records), Bookmarks: records})
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}

		b, err := d.Service.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("bookmark created",
			logger.String("id", b.ID),
			logger.String("url", b.URL))
		w.Header().Set("Location", "/api/bookmarks/"+b.ID)
		writeJSON(w, http.StatusCreated, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.BookmarkInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}

		b, err := d.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Service.Delete(r.Context(), id); err != nil {
			writeError(w, r, d, err)
			return
		}
		d.Logger.Info("bookmark deleted", logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

type lockRequest struct {
	Locked *bool `json:"locked"`
}

// LockBookmark sets the lock from {"locked": bool}; an empty body toggles it.
func LockBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lockRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		id := chi.URLParam(r, "id")
		var (
			b   *domain.Bookmark
			err error
		)
		if req.Locked == nil {
			b, err = d.Service.ToggleLock(r.Context(), id)
		} else {
			b, err = d.Service.SetLock(r.Context(), id, *req.Locked)
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

type statusRequest struct {
	Status string `json:"status_type"`
}

func SetBookmarkStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		b, err := d.Service.SetStatus(r.Context(), chi.URLParam(r, "id"), st)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

type moveRequest struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func MoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		b, err := d.Service.Move(r.Context(), chi.URLParam(r, "id"),
			strings.TrimSpace(req.Category), strings.TrimSpace(req.Subcategory))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CheckBookmark validates a single link right away.
func CheckBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Service.CheckLink(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
