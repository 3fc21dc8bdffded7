package cli

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/drugsafe/dilictl/pkg/score"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryParamInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func targetAPIHandler(store *score.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("s")
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "missing target symbol (s)")
			return
		}

		rec, err := store.FindExact(symbol)
		if err != nil {
			if errors.Is(err, score.ErrNotFound) {
				writeError(w, http.StatusNotFound, "target not found")
				return
			}
			slog.Error("failed to query target", "symbol", symbol, "error", err)
			writeError(w, http.StatusInternalServerError, "error querying target")
			return
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

func suggestAPIHandler(store *score.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, store.Suggest(q))
	}
}

func targetListAPIHandler(store *score.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Records())
	}
}

func thresholdsAPIHandler(store *score.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		th, err := score.ComputeThresholds(store.Scores())
		if err != nil {
			if errors.Is(err, score.ErrNoScores) {
				writeError(w, http.StatusNotFound, "no scores imported")
				return
			}
			slog.Error("failed to compute thresholds", "error", err)
			writeError(w, http.StatusInternalServerError, "error computing thresholds")
			return
		}

		writeJSON(w, http.StatusOK, th)
	}
}

func histogramAPIHandler(store *score.Store, defaultBins int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins := queryParamInt(r, "bins", defaultBins)

		th, err := score.ComputeThresholds(store.Scores())
		if err != nil {
			if errors.Is(err, score.ErrNoScores) {
				writeError(w, http.StatusNotFound, "no scores imported")
				return
			}
			slog.Error("failed to compute thresholds", "error", err)
			writeError(w, http.StatusInternalServerError, "error computing thresholds")
			return
		}

		hist, err := score.BuildHistogram(store.Scores(), th, bins)
		if err != nil {
			slog.Error("failed to build histogram", "error", err)
			writeError(w, http.StatusInternalServerError, "error building histogram")
			return
		}

		writeJSON(w, http.StatusOK, hist)
	}
}

// ScoreSummary is the shape of the /data/summary response.
type ScoreSummary struct {
	Targets    int            `json:"targets" yaml:"targets"`
	Categories map[string]int `json:"categories" yaml:"categories"`
	MaxScore   float64        `json:"max_score" yaml:"max_score"`
}

func summaryAPIHandler(store *score.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := &ScoreSummary{
			Targets:    store.Len(),
			Categories: make(map[string]int),
		}
		for _, rec := range store.Records() {
			summary.Categories[rec.Category]++
			if rec.RiskScore > summary.MaxScore {
				summary.MaxScore = rec.RiskScore
			}
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
