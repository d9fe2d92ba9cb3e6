package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/privacy"
	"github.com/hyperjump/omoide/internal/synth"
	"go.uber.org/zap"
)

// clientIdentifier picks the rate-limit identifier: the X-Client-ID header
// when present, otherwise the remote address. There is always some
// identifier; the admission check is never skipped.
func clientIdentifier(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	identifier := clientIdentifier(r)

	var req models.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.setRateHeaders(w, identifier)
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.orch.Synthesize(r.Context(), identifier, &req)
	s.setRateHeaders(w, identifier)
	if err != nil {
		var fieldErrs models.FieldErrors
		switch {
		case errors.Is(err, synth.ErrRateLimited):
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		case errors.As(err, &fieldErrs):
			s.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "invalid request",
				"fields": fieldErrs,
			})
		case errors.Is(err, synth.ErrOutputSchema):
			s.logger.Error("synthesis produced invalid output", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "internal error assembling moment")
		default:
			s.logger.Error("synthesis failed", privacy.Error(err))
			s.respondError(w, http.StatusInternalServerError, privacy.SanitizeText(err.Error()))
		}
		return
	}

	s.logger.Debug("moment synthesized",
		zap.String("id", record.ID),
		zap.String("tier", string(record.Processing.Tier)),
	)
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"cached_venues":       s.store.Len(),
		"tracked_identifiers": s.limiter.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) setRateHeaders(w http.ResponseWriter, identifier string) {
	h := s.limiter.Headers(identifier)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(h.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(h.ResetAt.Unix(), 10))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
