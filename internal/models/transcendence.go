package models

// TranscendenceFactors are the 8 normalized inputs to the transcendence
// score. Every value is expected to be in [0,1]; the scoring engine clamps
// defensively. The field order here is the canonical enumeration order used
// for dominant-factor tie-breaking.
type TranscendenceFactors struct {
	EmotionIntensity    float64 `json:"emotion_intensity"`
	AtmosphereQuality   float64 `json:"atmosphere_quality"`
	NoveltyFactor       float64 `json:"novelty_factor"`
	FameScore           float64 `json:"fame_score"`
	WeatherMatch        float64 `json:"weather_match"`
	CompanionEngagement float64 `json:"companion_engagement"`
	IntentMatch         float64 `json:"intent_match"`
	SurpriseFactor      float64 `json:"surprise_factor"`
}

// FactorNames lists the factor names in enumeration order.
var FactorNames = []string{
	"emotion_intensity",
	"atmosphere_quality",
	"novelty_factor",
	"fame_score",
	"weather_match",
	"companion_engagement",
	"intent_match",
	"surprise_factor",
}

// Values returns the factor values in enumeration order.
func (f TranscendenceFactors) Values() []float64 {
	return []float64{
		f.EmotionIntensity,
		f.AtmosphereQuality,
		f.NoveltyFactor,
		f.FameScore,
		f.WeatherMatch,
		f.CompanionEngagement,
		f.IntentMatch,
		f.SurpriseFactor,
	}
}

// TranscendenceResult is the scored outcome for one moment.
type TranscendenceResult struct {
	Score          float64              `json:"score"`
	Factors        TranscendenceFactors `json:"factors"`
	IsHighlight    bool                 `json:"is_highlight"`
	DominantFactor string               `json:"dominant_factor"`
}
