// Package scoring computes the transcendence score for a moment.
package scoring

import (
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/pkg/utils"
)

// HighlightThreshold is the score at or above which a moment is a highlight.
const HighlightThreshold = 0.70

// Weights are the fixed factor weights in enumeration order. They must sum
// to exactly 1.0; WeightSum is verified in tests.
var Weights = []float64{
	0.25, // emotion_intensity
	0.15, // atmosphere_quality
	0.15, // novelty_factor
	0.10, // fame_score
	0.10, // weather_match
	0.10, // companion_engagement
	0.10, // intent_match
	0.05, // surprise_factor
}

// WeightSum returns the sum of all factor weights.
func WeightSum() float64 {
	var sum float64
	for _, w := range Weights {
		sum += w
	}
	return sum
}

// Score maps factors to the final transcendence result. Pure; it has no
// failure mode. Out-of-range inputs are clamped to [0,1].
func Score(factors models.TranscendenceFactors) models.TranscendenceResult {
	values := factors.Values()

	var total float64
	dominant := 0
	best := -1.0
	for i, v := range values {
		v = utils.Clamp01(v)
		contribution := Weights[i] * v
		total += contribution
		// Strict > keeps the first-listed factor on ties.
		if contribution > best {
			best = contribution
			dominant = i
		}
	}

	score := utils.Round2(total)
	return models.TranscendenceResult{
		Score:          score,
		Factors:        factors,
		IsHighlight:    score >= HighlightThreshold,
		DominantFactor: models.FactorNames[dominant],
	}
}
