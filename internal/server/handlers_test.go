package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/omoide/internal/cache"
	"github.com/hyperjump/omoide/internal/config"
	"github.com/hyperjump/omoide/internal/enrich"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/narrative"
	"github.com/hyperjump/omoide/internal/ratelimit"
	"github.com/hyperjump/omoide/internal/synth"
	"go.uber.org/zap"
)

type stubEnricher struct{}

func (stubEnricher) Enrich(ctx context.Context, venue *models.Venue, destination string) *enrich.Result {
	return &enrich.Result{VenueSource: enrich.VenueSourceNone}
}

type stubNarrative struct{ err error }

func (s stubNarrative) Generate(ctx context.Context, req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) (*narrative.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &narrative.Response{
		PrimaryEmotion: "joyful",
		Narratives:     models.Narratives{Short: "s", Medium: "m", Long: "l"},
		ExcitementHook: "hook",
		MemoryAnchors: models.MemoryAnchors{
			TriggerPhrase: "t", SensoryCue: "s", EmotionalCue: "e",
			LocationCue: "l", TemporalCue: "tc",
		},
		Sensory: models.Sensory{Sight: "a", Sound: "b", Scent: "c"},
	}, nil
}

func newTestServer(limit int) *Server {
	limiter := ratelimit.NewLimiter(limit, time.Minute)
	orch := synth.NewOrchestrator(limiter, stubEnricher{}, stubNarrative{})
	return NewServer(orch, limiter, cache.NewMemoryStore(), &config.ServerConfig{Host: "localhost", Port: 0}, zap.NewNop())
}

func requestBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{
		"photos":      map[string]interface{}{"count": 2},
		"captured_at": "2026-04-12T16:30:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func postSynthesize(handler http.Handler, clientID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moments/synthesize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSynthesize(t *testing.T) {
	handler := newTestServer(30).Router()
	rec := postSynthesize(handler, "client-a", requestBody(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var record models.MomentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ID == "" {
		t.Error("record missing id")
	}
	if err := record.Validate(); err != nil {
		t.Errorf("returned record fails self-check: %v", err)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "30" {
		t.Errorf("X-RateLimit-Limit = %q, want 30", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "29" {
		t.Errorf("X-RateLimit-Remaining = %q, want 29", got)
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset missing")
	}
	// Transcript is present and explicitly null.
	if !strings.Contains(rec.Body.String(), `"voice_note_transcript":null`) {
		t.Error("response missing explicit null transcript")
	}
}

func TestHandleSynthesizeInvalidBody(t *testing.T) {
	handler := newTestServer(30).Router()
	rec := postSynthesize(handler, "client-a", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSynthesizeFieldErrors(t *testing.T) {
	handler := newTestServer(30).Router()
	body, _ := json.Marshal(map[string]interface{}{
		"photos": map[string]interface{}{"count": 0},
	})
	rec := postSynthesize(handler, "client-a", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error  string             `json:"error"`
		Fields models.FieldErrors `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fields) == 0 {
		t.Error("field errors missing from response")
	}
}

func TestHandleSynthesizeRateLimited(t *testing.T) {
	handler := newTestServer(1).Router()
	if rec := postSynthesize(handler, "client-a", requestBody(t)); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := postSynthesize(handler, "client-a", requestBody(t))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	// A different client identifier has its own window.
	if rec := postSynthesize(handler, "client-b", requestBody(t)); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(30)
	s.store.Put("senso-ji", &models.VenueEnrichment{Name: "Sensō-ji"}, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["cached_venues"] != 1 {
		t.Errorf("cached_venues = %d, want 1", resp["cached_venues"])
	}
}

func TestHandleHealth(t *testing.T) {
	handler := newTestServer(30).Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleSynthesizeDegraded(t *testing.T) {
	limiter := ratelimit.NewLimiter(30, time.Minute)
	orch := synth.NewOrchestrator(limiter, stubEnricher{}, stubNarrative{err: errors.New("model down")})
	s := NewServer(orch, limiter, cache.NewMemoryStore(), &config.ServerConfig{}, zap.NewNop())

	rec := postSynthesize(s.Router(), "client-a", requestBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded synthesis status = %d, want 200", rec.Code)
	}
	var record models.MomentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record.Processing.Tier != models.TierLocalOnly {
		t.Errorf("tier = %q, want local_only", record.Processing.Tier)
	}
}

func TestClientIdentifier(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	if got := clientIdentifier(req); got != "192.0.2.10" {
		t.Errorf("identifier = %q, want the remote host", got)
	}
	req.Header.Set("X-Client-ID", "device-7")
	if got := clientIdentifier(req); got != "device-7" {
		t.Errorf("identifier = %q, want the header value", got)
	}
}
