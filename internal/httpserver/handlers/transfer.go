package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/logger"
)

// Import accepts a multipart upload (field "file") or a raw body whose
// name is given by ?filename=. The name only helps format detection.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxImportBytes)

		filename, data, err := readUpload(r, d.MaxImportBytes)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if len(data) == 0 {
			writeError(w, r, d, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput))
			return
		}

		res, err := d.Service.Import(r.Context(), filename, data)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("import completed",
			logger.String("file", filename),
			logger.String("format", res.Summary.Format),
			logger.Int("imported", res.Summary.ImportedCount),
			logger.Int("duplicates", res.Summary.DuplicatesFoundCount),
			logger.Int("skipped", res.Summary.SkippedCount))
		writeJSON(w, http.StatusOK, res)
	}
}

func readUpload(r *http.Request, limit int64) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return r.URL.Query().Get("filename"), data, err
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: missing form field \"file\"", domain.ErrInvalidInput)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	return hdr.Filename, data, err
}

// Export serves ?format=html|json|xml|csv (json by default) as a download.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		raw := q.Get("format")
		if raw == "" {
			raw = string(formats.JSON)
		}
		f, err := formats.ParseFormat(raw)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		opts := formats.ExportOptions{Category: q.Get("category")}
		if st := q.Get("status"); st != "" {
			if opts.Status, err = domain.ParseStatus(st); err != nil {
				writeError(w, r, d, err)
				return
			}
		}

		res, err := d.Service.Export(r.Context(), f, opts)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
		w.Header().Set("X-Export-Count", strconv.Itoa(res.Count))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Data); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
