package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/lucasprac/dea-choquet/pkg/engine"
	"github.com/lucasprac/dea-choquet/pkg/framework"
)

// handleCompute evaluates the cycle document in the request body and stores
// the results. Identical concurrent requests share one computation.
func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	cycleID := r.PathValue("cycleID")
	if err := framework.ValidateID("cycle id", cycleID); err != nil {
		writeBadID(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	cycle, err := framework.ParseCycle(body, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if cycle.ID == "" {
		cycle.ID = cycleID
	}
	if cycle.ID != cycleID {
		writeError(w, http.StatusBadRequest, "cycleId in body does not match path")
		return
	}

	sum := sha256.Sum256(body)
	key := cycleID + ":" + hex.EncodeToString(sum[:])

	start := time.Now()
	v, err, shared := h.inflight.Do(key, func() (any, error) {
		// A disconnecting caller must not fail the others sharing this run.
		return h.results.Run(context.WithoutCancel(r.Context()), cycle)
	})
	h.metrics.ObserveCompute(time.Since(start), err)
	if err != nil {
		h.logger.Warn("compute failed", "cycle_id", cycleID, "error", err)
		writeFailure(w, err)
		return
	}

	res := v.(*engine.CycleResults)
	h.cache.Put(cycleID, res)
	if shared {
		w.Header().Set("X-Choquet-Shared", "true")
	}
	h.metrics.dmusEvaluated.Add(float64(res.PopulationStats.TotalDMUs))
	writeJSON(w, http.StatusOK, res)
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
	DMUs  int    `json:"dmus,omitempty"`
}

// handleValidate checks a cycle document without computing it.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	cycle, err := framework.ParseCycle(body, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := cycle.Validate(); err != nil {
		writeJSON(w, http.StatusOK, validateResponse{
			Valid: false,
			Kind:  string(framework.KindOf(err)),
			Error: err.Error(),
		})
		return
	}
	// Range and scale checks happen during normalization.
	if _, err := engine.Normalize(&cycle.Framework, cycle.Scores); err != nil {
		writeJSON(w, http.StatusOK, validateResponse{
			Valid: false,
			Kind:  string(framework.KindOf(err)),
			Error: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, DMUs: len(cycle.Scores)})
}
