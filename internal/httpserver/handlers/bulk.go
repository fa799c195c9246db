package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/utils"
)

// FindDuplicates is the mark phase of duplicate removal.
func FindDuplicates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Service.FindDuplicates(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// DeleteDuplicates removes what the last FindDuplicates marked.
func DeleteDuplicates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Service.DeleteDuplicates(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type triggerResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// ValidateLinks runs a full validation and returns the report. With
// ?async=true it only pokes the scheduler: 202 when triggered, 429 when a
// run is already queued.
func ValidateLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
		if async && d.ValidateTrigger != nil {
			remote := utils.ClientIP(r, d.TrustProxy)
			select {
			case d.ValidateTrigger <- struct{}{}:
				d.Logger.Info("manual link validation triggered via endpoint",
					logger.String("remote_ip", remote))
				writeJSON(w, http.StatusAccepted, triggerResponse{Triggered: true, Message: "validation triggered"})
			default:
				d.Logger.Warn("link validation already in progress",
					logger.String("remote_ip", remote))
				writeJSON(w, http.StatusTooManyRequests, triggerResponse{Message: "validation already in progress, please wait"})
			}
			return
		}

		rep, err := d.Service.ValidateLinks(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func RemoveDeadLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Service.RemoveDeadLinks(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type bulkResponse struct {
	Busy       bool                `json:"busy"`
	Operations []*domain.BulkState `json:"operations"`
}

// Bulk reports the phase of every bulk operation.
func Bulk(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bulkResponse{
			Busy:       d.Service.Busy(),
			Operations: d.Service.BulkStates(),
		})
	}
}

func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Service.Stats(r.Context())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
