package api

import (
	"net/http"

	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// handleGetResults returns the latest results of a cycle, or a specific run
// when ?run= is given.
func (h *Handler) handleGetResults(w http.ResponseWriter, r *http.Request) {
	cycleID := r.PathValue("cycleID")
	runID := r.URL.Query().Get("run")
	if err := framework.ValidateID("cycle id", cycleID); err != nil {
		writeBadID(w, err)
		return
	}
	if runID != "" {
		if err := framework.ValidateID("run id", runID); err != nil {
			writeBadID(w, err)
			return
		}
	}

	if runID == "" {
		if res := h.cache.Get(cycleID); res != nil {
			h.metrics.cacheLookups.WithLabelValues("hit").Inc()
			writeJSON(w, http.StatusOK, res)
			return
		}
		h.metrics.cacheLookups.WithLabelValues("miss").Inc()

		res, err := h.results.Latest(r.Context(), cycleID)
		if err != nil {
			writeFailure(w, err)
			return
		}
		h.cache.Put(cycleID, res)
		writeJSON(w, http.StatusOK, res)
		return
	}

	res, err := h.results.Get(r.Context(), cycleID, runID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListRuns lists a cycle's computation runs, newest first.
func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	cycleID := r.PathValue("cycleID")
	if err := framework.ValidateID("cycle id", cycleID); err != nil {
		writeBadID(w, err)
		return
	}
	runs, err := h.results.Runs(r.Context(), cycleID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if runs == nil {
		runs = []results.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
