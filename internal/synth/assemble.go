package synth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/omoide/internal/atmosphere"
	"github.com/hyperjump/omoide/internal/enrich"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/narrative"
	"github.com/hyperjump/omoide/internal/scoring"
)

// Fixed local-percentage mapping per tier. Deliberately not measured from
// real timing; the values are part of the documented contract.
const (
	localPercentageFull     = 65
	localPercentageDegraded = 95
)

// scoreRequest derives the 8 factors from the request and enrichment and
// runs the scoring engine. Pure aside from reading its inputs.
func scoreRequest(req *models.SynthesisRequest, enrichment *enrich.Result) models.TranscendenceResult {
	sig := scoring.Signals{
		FirstVisit:       req.Preferences.FirstVisit,
		UnexpectedMoment: req.Preferences.UnexpectedMoment,
		IntentMatch:      req.Preferences.IntentMatch,
		CompanionCount:   len(req.Companions),
	}
	if req.Audio != nil {
		s := req.Audio.SentimentScore
		sig.Sentiment = &s
	}
	if enrichment.Venue != nil {
		sig.FameScore = enrichment.Venue.FameScore
	}
	if enrichment.Weather != nil {
		w := enrichment.Weather.OutdoorComfort
		sig.WeatherMatch = &w
	}
	if q := atmosphereQuality(req.Photos.Analyses); q != nil {
		sig.AtmosphereQuality = q
	}
	return scoring.Score(scoring.BuildFactors(sig))
}

// atmosphereQuality condenses the photo scene labels into one [0,1] signal,
// or nil when there are no photo analyses to read.
func atmosphereQuality(photos []models.PhotoAnalysis) *float64 {
	if len(photos) == 0 {
		return nil
	}
	lead := photos[0]
	q := 0.5
	switch atmosphere.MapLighting(lead.Lighting) {
	case atmosphere.LightingGoldenHour:
		q += 0.3
	case atmosphere.LightingNight:
		q += 0.1
	case atmosphere.LightingOvercast:
		q -= 0.1
	}
	switch atmosphere.MapEnergy(lead.EnergyLevel) {
	case atmosphere.EnergyTranquil, atmosphere.EnergyLively:
		q += 0.1
	case atmosphere.EnergyChaotic:
		q -= 0.1
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	return &q
}

// assemble builds the final record from the pipeline outputs. The record is
// complete on return and never mutated afterwards.
func assemble(req *models.SynthesisRequest, enrichment *enrich.Result, content *narrative.Response, score models.TranscendenceResult, tier models.ProcessingTier, elapsed time.Duration) *models.MomentRecord {
	var lead models.PhotoAnalysis
	if len(req.Photos.Analyses) > 0 {
		lead = req.Photos.Analyses[0]
	}

	confidence := req.Detection.Confidence
	if confidence == 0 {
		confidence = 0.7
	}

	var tags []string
	seen := make(map[string]bool)
	for _, p := range req.Photos.Analyses {
		if p.DetectedEmotion != "" && !seen[p.DetectedEmotion] {
			seen[p.DetectedEmotion] = true
			tags = append(tags, p.DetectedEmotion)
		}
	}

	excitement := models.Excitement{Hook: content.ExcitementHook}
	if enrichment.Venue != nil {
		excitement.FameScore = enrichment.Venue.FameScore
		excitement.UniqueClaims = enrichment.Venue.UniqueClaims
	}

	reflection := models.UserReflection{VoiceNoteTranscript: nil}
	if req.Audio != nil {
		s := req.Audio.SentimentScore
		reflection.SentimentScore = &s
		reflection.Keywords = req.Audio.SentimentKeywords
	}

	localPercentage := localPercentageFull
	if tier == models.TierLocalOnly {
		localPercentage = localPercentageDegraded
	}
	cloudCalls := enrichment.CloudCalls()
	if tier == models.TierFull {
		cloudCalls = append(cloudCalls, models.CloudCallNarrative)
	}

	return &models.MomentRecord{
		ID:         uuid.NewString(),
		CapturedAt: req.CapturedAt,
		CreatedAt:  time.Now().UTC(),
		Venue:      enrichment.Venue,
		Detection:  req.Detection,
		Emotions: models.EmotionProfile{
			Primary:    content.PrimaryEmotion,
			Secondary:  content.SecondaryEmotions,
			Tags:       tags,
			Confidence: confidence,
		},
		Atmosphere: models.Atmosphere{
			Lighting: atmosphere.MapLighting(lead.Lighting),
			Energy:   atmosphere.MapEnergy(lead.EnergyLevel),
			Setting:  atmosphere.MapSetting(lead.Setting),
			Crowd:    atmosphere.MapCrowd(lead.CrowdLevel),
		},
		Transcendence: score,
		Sensory:       content.Sensory,
		Excitement:    excitement,
		MemoryAnchors: content.MemoryAnchors,
		Narratives:    content.Narratives,
		Companions:    content.CompanionExperiences,
		Environment: models.Environment{
			Weather:   enrichment.Weather,
			TimeOfDay: narrative.TimeOfDay(req.CapturedAt.Hour()),
			Season:    narrative.Season(req.CapturedAt.Month()),
		},
		Reflection: reflection,
		Processing: models.Processing{
			Tier:             tier,
			LocalPercentage:  localPercentage,
			CloudCalls:       cloudCalls,
			ProcessingTimeMS: elapsed.Milliseconds(),
		},
	}
}
