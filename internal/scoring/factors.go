package scoring

import (
	"math"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/pkg/utils"
)

// Signals are the raw request-level inputs from which the 8 factors are
// derived. Nil pointers mean the signal is unknown and the documented
// default applies.
type Signals struct {
	Sentiment         *float64
	AtmosphereQuality *float64
	FirstVisit        bool
	FameScore         *float64
	WeatherMatch      *float64
	CompanionCount    int
	IntentMatch       *float64
	UnexpectedMoment  bool
}

// BuildFactors derives the 8 normalized factors from raw signals. Each
// factor is clamped to [0,1] and rounded to 2 decimals before weighting.
func BuildFactors(sig Signals) models.TranscendenceFactors {
	emotion := 0.5
	if sig.Sentiment != nil {
		intensity := math.Abs(*sig.Sentiment)
		if *sig.Sentiment <= 0 {
			// Negative sentiment still marks an intense moment, at half weight.
			intensity *= 0.5
		}
		emotion = intensity
	}

	novelty := 0.4
	if sig.FirstVisit {
		novelty = 0.85
	}

	surprise := 0.2
	if sig.UnexpectedMoment {
		surprise = 0.8
	}

	return models.TranscendenceFactors{
		EmotionIntensity:    norm(emotion),
		AtmosphereQuality:   norm(orDefault(sig.AtmosphereQuality, 0.5)),
		NoveltyFactor:       norm(novelty),
		FameScore:           norm(orDefault(sig.FameScore, 0.3)),
		WeatherMatch:        norm(orDefault(sig.WeatherMatch, 0.5)),
		CompanionEngagement: norm(math.Min(0.9, 0.3+0.2*float64(sig.CompanionCount))),
		IntentMatch:         norm(orDefault(sig.IntentMatch, 0.5)),
		SurpriseFactor:      norm(surprise),
	}
}

func norm(v float64) float64 {
	return utils.Round2(utils.Clamp01(v))
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
