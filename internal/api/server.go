// Package api exposes the recommendation pipeline over HTTP. The API is
// stateless: each request runs to completion independently, with no
// cross-request session.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VineetKiragi/cinemind/internal/metadata"
	"github.com/VineetKiragi/cinemind/internal/profile"
	"github.com/VineetKiragi/cinemind/internal/session"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Recommender is the pipeline surface the API depends on.
type Recommender interface {
	Answer(ctx context.Context, query string) session.Turn
	Profile(ctx context.Context, query string) (profile.Profile, error)
}

// RecommendRequest is the body of POST /recommend and POST /profile.
type RecommendRequest struct {
	Query string `json:"query"`
}

// RecommendResponse is the body returned by POST /recommend.
type RecommendResponse struct {
	Recommendation string                   `json:"recommendation"`
	Movies         []metadata.EnrichedMovie `json:"movies"`
	Failed         bool                     `json:"failed,omitempty"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// NewHandler builds the HTTP routes over the given pipeline.
func NewHandler(pipeline Recommender) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/recommend", handleRecommend(pipeline))
	r.Post("/profile", handleProfile(pipeline))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleRecommend(pipeline Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}

		start := time.Now()
		turn := pipeline.Answer(r.Context(), req.Query)
		slog.Info("recommendation served",
			"failed", turn.Failed,
			"movies", len(turn.Movies),
			"duration", time.Since(start))

		writeJSON(w, http.StatusOK, RecommendResponse{
			Recommendation: turn.Text,
			Movies:         turn.Movies,
			Failed:         turn.Failed,
			GeneratedAt:    turn.CreatedAt,
		})
	}
}

func handleProfile(pipeline Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeQuery(w, r)
		if !ok {
			return
		}

		prof, err := pipeline.Profile(r.Context(), req.Query)
		if err != nil {
			slog.Warn("profile extraction failed", "error", err)
			httpError(w, http.StatusBadGateway, "api_error", "profile extraction failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, prof)
	}
}

// decodeQuery parses and validates the shared request body. On failure it
// writes the error response and returns ok=false.
func decodeQuery(w http.ResponseWriter, r *http.Request) (RecommendRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return RecommendRequest{}, false
	}
	if req.Query == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
		return RecommendRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
