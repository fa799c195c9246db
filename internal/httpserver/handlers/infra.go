package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/scheduler"
)

type componentStatus struct {
	OK        bool               `json:"ok"`
	Kind      string             `json:"kind,omitempty"`
	Bookmarks *int               `json:"bookmarks,omitempty"`
	Busy      *bool              `json:"busy,omitempty"`
	LastRun   *scheduler.RunInfo `json:"last_run,omitempty"`
	Mode      string             `json:"mode,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		busy := d.Service.Busy()

		components := map[string]componentStatus{
			"store":     checkStore(r.Context(), d),
			"validator": validatorStatus(d),
			"bulk": {
				OK:   true,
				Busy: &busy,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical" // nothing works without the store
	}
	if v, exists := components["validator"]; exists && !v.OK {
		return "degraded" // last validation failed, statuses may be stale
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Service.Ping(ctx); err != nil {
		return componentStatus{OK: false, Kind: d.StoreKind, Error: err.Error()}
	}

	st, err := d.Service.Stats(ctx)
	if err != nil {
		return componentStatus{OK: false, Kind: d.StoreKind, Error: err.Error()}
	}
	return componentStatus{OK: true, Kind: d.StoreKind, Bookmarks: &st.Total}
}

func validatorStatus(d deps.Deps) componentStatus {
	if d.Scheduler == nil {
		return componentStatus{OK: true, Mode: "on-demand"}
	}
	last := d.Scheduler.LastRun()
	if last == nil {
		return componentStatus{OK: true, Mode: "scheduled"}
	}
	return componentStatus{OK: last.Error == "", Mode: "scheduled", LastRun: last}
}
