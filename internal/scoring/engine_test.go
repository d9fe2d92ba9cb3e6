package scoring

import (
	"math"
	"testing"

	"github.com/hyperjump/omoide/internal/models"
)

func uniformFactors(v float64) models.TranscendenceFactors {
	return models.TranscendenceFactors{
		EmotionIntensity:    v,
		AtmosphereQuality:   v,
		NoveltyFactor:       v,
		FameScore:           v,
		WeatherMatch:        v,
		CompanionEngagement: v,
		IntentMatch:         v,
		SurpriseFactor:      v,
	}
}

func TestWeightSum(t *testing.T) {
	if diff := math.Abs(WeightSum() - 1.0); diff > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", WeightSum())
	}
	if len(Weights) != len(models.FactorNames) {
		t.Errorf("len(Weights) = %d, want %d", len(Weights), len(models.FactorNames))
	}
}

func TestScoreUniform(t *testing.T) {
	// Because weights sum to 1, uniform factors score exactly that value.
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
	}
	for _, tt := range tests {
		got := Score(uniformFactors(tt.in))
		if got.Score != tt.want {
			t.Errorf("Score(uniform %v) = %v, want %v", tt.in, got.Score, tt.want)
		}
	}
}

func TestScoreClampsInputs(t *testing.T) {
	got := Score(uniformFactors(5.0))
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0 after clamping", got.Score)
	}
	got = Score(uniformFactors(-3.0))
	if got.Score != 0 {
		t.Errorf("score = %v, want 0 after clamping", got.Score)
	}
}

func TestHighlightThreshold(t *testing.T) {
	tests := []struct {
		in        float64
		highlight bool
	}{
		{0.69, false},
		{0.70, true},
		{0.80, true},
	}
	for _, tt := range tests {
		got := Score(uniformFactors(tt.in))
		if got.IsHighlight != tt.highlight {
			t.Errorf("Score(uniform %v).IsHighlight = %v, want %v", tt.in, got.IsHighlight, tt.highlight)
		}
	}
}

func TestDominantFactor(t *testing.T) {
	f := uniformFactors(0.5)
	f.SurpriseFactor = 1.0 // contribution 0.05, still below emotion's 0.125
	got := Score(f)
	if got.DominantFactor != "emotion_intensity" {
		t.Errorf("dominant = %q, want emotion_intensity", got.DominantFactor)
	}

	f = uniformFactors(0.1)
	f.FameScore = 1.0 // contribution 0.10 beats emotion's 0.025
	got = Score(f)
	if got.DominantFactor != "fame_score" {
		t.Errorf("dominant = %q, want fame_score", got.DominantFactor)
	}
}

func TestDominantFactorTieBreak(t *testing.T) {
	// novelty and fame tie on contribution (0.15*0.4 == 0.10*0.6); the
	// earlier-enumerated factor wins.
	f := uniformFactors(0)
	f.NoveltyFactor = 0.4
	f.FameScore = 0.6
	got := Score(f)
	if got.DominantFactor != "novelty_factor" {
		t.Errorf("dominant = %q, want novelty_factor on tie", got.DominantFactor)
	}
}

func TestScoreRounding(t *testing.T) {
	f := uniformFactors(0.333)
	got := Score(f)
	if got.Score != math.Round(got.Score*100)/100 {
		t.Errorf("score %v is not rounded to 2 decimals", got.Score)
	}
}
