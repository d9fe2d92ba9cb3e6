package synth

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hyperjump/omoide/internal/enrich"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/narrative"
	"github.com/hyperjump/omoide/internal/ratelimit"
)

type stubEnricher struct {
	result *enrich.Result
}

func (s *stubEnricher) Enrich(ctx context.Context, venue *models.Venue, destination string) *enrich.Result {
	if s.result != nil {
		return s.result
	}
	return &enrich.Result{VenueSource: enrich.VenueSourceNone}
}

type stubNarrative struct {
	resp  *narrative.Response
	err   error
	calls int
}

func (s *stubNarrative) Generate(ctx context.Context, req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) (*narrative.Response, error) {
	s.calls++
	return s.resp, s.err
}

func modelResponse() *narrative.Response {
	return &narrative.Response{
		PrimaryEmotion:    "joyful",
		SecondaryEmotions: []string{"excited"},
		Narratives:        models.Narratives{Short: "s", Medium: "m", Long: "l"},
		ExcitementHook:    "hook",
		MemoryAnchors: models.MemoryAnchors{
			TriggerPhrase: "t", SensoryCue: "s", EmotionalCue: "e",
			LocationCue: "l", TemporalCue: "tc",
		},
		Sensory: models.Sensory{Sight: "a", Sound: "b", Scent: "c"},
	}
}

func testRequest() *models.SynthesisRequest {
	sentiment := 0.8
	return &models.SynthesisRequest{
		Photos: models.PhotoSet{
			Count: 3,
			Analyses: []models.PhotoAnalysis{
				{Lighting: "golden_hour", EnergyLevel: "serene", Setting: "outdoor", CrowdLevel: "moderate", DetectedEmotion: "joy"},
			},
		},
		Audio: &models.VoiceSignal{SentimentScore: sentiment, SentimentKeywords: []string{"amazing"}},
		Venue: &models.Venue{
			Name:        "Senso-ji Temple",
			Coordinates: &models.Coordinates{Lat: 35.7148, Lon: 139.7967},
		},
		Companions:  []models.Companion{{Name: "Yuki", Relationship: "partner"}},
		CapturedAt:  time.Date(2026, time.April, 12, 16, 30, 0, 0, time.UTC),
		Detection:   models.Detection{Trigger: "dwell", Confidence: 0.85},
		Preferences: models.Preferences{FirstVisit: true},
		Destination: "Tokyo",
	}
}

func newTestOrchestrator(e Enricher, n NarrativeService) *Orchestrator {
	limiter := ratelimit.NewLimiter(30, time.Minute)
	return NewOrchestrator(limiter, e, n)
}

func enrichedResult() *enrich.Result {
	fame := 0.9
	year := 645
	return &enrich.Result{
		Venue: &models.VenueEnrichment{
			Name:         "Sensō-ji",
			Category:     models.CategoryLandmark,
			Description:  "Ancient Buddhist temple in Asakusa.",
			FoundedYear:  &year,
			UniqueClaims: []string{"Tokyo's oldest temple"},
			FameScore:    &fame,
		},
		VenueSource: enrich.VenueSourceLive,
		Weather:     &models.WeatherSnapshot{Condition: "clear", TemperatureC: 21, OutdoorComfort: 0.9},
		WeatherLive: true,
	}
}

func TestSynthesizeFullTier(t *testing.T) {
	o := newTestOrchestrator(&stubEnricher{result: enrichedResult()}, &stubNarrative{resp: modelResponse()})

	record, err := o.Synthesize(context.Background(), "client", testRequest())
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if record.Processing.Tier != models.TierFull {
		t.Errorf("tier = %q, want full", record.Processing.Tier)
	}
	if record.Processing.LocalPercentage != 65 {
		t.Errorf("local percentage = %d, want 65", record.Processing.LocalPercentage)
	}
	if record.Emotions.Primary != "joyful" {
		t.Errorf("primary = %q", record.Emotions.Primary)
	}
	if record.ID == "" {
		t.Error("record missing id")
	}
	if record.Transcendence.Score < 0 || record.Transcendence.Score > 1 {
		t.Errorf("score = %v, want in [0,1]", record.Transcendence.Score)
	}
	// Full tier reports the narrative model among its cloud calls.
	found := false
	for _, call := range record.Processing.CloudCalls {
		if call == models.CloudCallNarrative {
			found = true
		}
	}
	if !found {
		t.Errorf("cloud calls %v missing the narrative model", record.Processing.CloudCalls)
	}
}

func TestSynthesizeDegradesOnModelFailure(t *testing.T) {
	// Famous venue, model down: synthesis still succeeds with the local
	// generator and the lowered tier.
	stub := &stubNarrative{err: errors.New("connection refused")}
	o := newTestOrchestrator(&stubEnricher{result: enrichedResult()}, stub)

	record, err := o.Synthesize(context.Background(), "client", testRequest())
	if err != nil {
		t.Fatalf("degraded synthesis should succeed: %v", err)
	}
	if record.Processing.Tier != models.TierLocalOnly {
		t.Errorf("tier = %q, want local_only", record.Processing.Tier)
	}
	if record.Processing.LocalPercentage != 95 {
		t.Errorf("local percentage = %d, want 95", record.Processing.LocalPercentage)
	}
	if record.Narratives.Short == "" {
		t.Error("fallback narrative missing")
	}
	if stub.calls != 1 {
		t.Errorf("model called %d times, want exactly 1", stub.calls)
	}
	for _, call := range record.Processing.CloudCalls {
		if call == models.CloudCallNarrative {
			t.Error("degraded record must not report a narrative model call")
		}
	}
	if record.Reflection.VoiceNoteTranscript != nil {
		t.Error("transcript must stay null")
	}
}

func TestSynthesizeMockVenueNoWeather(t *testing.T) {
	// Unknown venue without coordinates: mock enrichment, absent weather,
	// still a complete record.
	result := &enrich.Result{
		Venue:       enrich.MockVenueData("Tiny Unknown Spot"),
		VenueSource: enrich.VenueSourceMock,
	}
	o := newTestOrchestrator(&stubEnricher{result: result}, &stubNarrative{err: errors.New("down")})

	req := testRequest()
	req.Venue = &models.Venue{Name: "Tiny Unknown Spot"}
	record, err := o.Synthesize(context.Background(), "client", req)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if record.Environment.Weather != nil {
		t.Error("weather should be absent")
	}
	if record.Venue == nil || record.Venue.Name != "Tiny Unknown Spot" {
		t.Errorf("venue = %+v", record.Venue)
	}
	if err := record.Validate(); err != nil {
		t.Errorf("record failed self-check: %v", err)
	}
}

func TestSynthesizeRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	o := NewOrchestrator(limiter, &stubEnricher{}, &stubNarrative{resp: modelResponse()})

	if _, err := o.Synthesize(context.Background(), "client", testRequest()); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	_, err := o.Synthesize(context.Background(), "client", testRequest())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestSynthesizeInvalidRequest(t *testing.T) {
	stub := &stubNarrative{resp: modelResponse()}
	o := newTestOrchestrator(&stubEnricher{}, stub)

	req := testRequest()
	req.Photos.Count = 0
	_, err := o.Synthesize(context.Background(), "client", req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var fieldErrs models.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Errorf("error type = %T, want FieldErrors", err)
	}
	if stub.calls != 0 {
		t.Error("invalid request must not reach the model")
	}
}

func TestSynthesizeOutputSchemaFailure(t *testing.T) {
	// A model response that passes its own validation but breaks the record
	// contract cannot happen through narrative.Response.Validate alone; force
	// it with a stub that returns schema-breaking content downstream.
	bad := modelResponse()
	bad.PrimaryEmotion = "" // slips past the stub, caught by the record check
	o := newTestOrchestrator(&stubEnricher{}, &stubNarrative{resp: bad})

	_, err := o.Synthesize(context.Background(), "client", testRequest())
	if !errors.Is(err, ErrOutputSchema) {
		t.Errorf("err = %v, want ErrOutputSchema", err)
	}
}

func TestAtmosphereQuality(t *testing.T) {
	if q := atmosphereQuality(nil); q != nil {
		t.Errorf("no photos should give nil, got %v", *q)
	}

	tests := []struct {
		name string
		lead models.PhotoAnalysis
		want float64
	}{
		{"golden hour serene", models.PhotoAnalysis{Lighting: "golden_hour", EnergyLevel: "serene"}, 0.9},
		{"neutral", models.PhotoAnalysis{Lighting: "bright", EnergyLevel: "calm"}, 0.5},
		{"overcast chaotic", models.PhotoAnalysis{Lighting: "overcast", EnergyLevel: "chaotic"}, 0.3},
		{"night lively", models.PhotoAnalysis{Lighting: "night", EnergyLevel: "lively"}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := atmosphereQuality([]models.PhotoAnalysis{tt.lead})
			if q == nil {
				t.Fatal("got nil")
			}
			if math.Abs(*q-tt.want) > 1e-9 {
				t.Errorf("quality = %v, want %v", *q, tt.want)
			}
		})
	}
}

func TestAssembleTags(t *testing.T) {
	req := testRequest()
	req.Photos.Analyses = []models.PhotoAnalysis{
		{DetectedEmotion: "joy"},
		{DetectedEmotion: "awe"},
		{DetectedEmotion: "joy"},
		{},
	}
	record := assemble(req, &enrich.Result{VenueSource: enrich.VenueSourceNone}, modelResponse(),
		models.TranscendenceResult{Score: 0.5, DominantFactor: "emotion_intensity"},
		models.TierFull, 10*time.Millisecond)

	want := []string{"joy", "awe"}
	if len(record.Emotions.Tags) != 2 || record.Emotions.Tags[0] != want[0] || record.Emotions.Tags[1] != want[1] {
		t.Errorf("tags = %v, want %v", record.Emotions.Tags, want)
	}
}

func TestAssembleDefaultConfidence(t *testing.T) {
	req := testRequest()
	req.Detection.Confidence = 0
	record := assemble(req, &enrich.Result{VenueSource: enrich.VenueSourceNone}, modelResponse(),
		models.TranscendenceResult{Score: 0.5, DominantFactor: "emotion_intensity"},
		models.TierLocalOnly, time.Millisecond)
	if record.Emotions.Confidence != 0.7 {
		t.Errorf("confidence = %v, want default 0.7", record.Emotions.Confidence)
	}
}
