package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/pkg/utils"
)

// themeKeywords maps recall themes to the keyword sets that trigger them.
// Checked in order; the first theme with a matching keyword wins.
var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"fulfillment", []string{"dream", "finally", "bucket", "wanted", "wish"}},
	{"discovery", []string{"found", "discovered", "hidden", "explore", "secret", "surprise"}},
	{"nostalgia", []string{"remember", "childhood", "memories", "again", "miss"}},
	{"tranquility", []string{"peaceful", "quiet", "calm", "serene", "still"}},
	{"wonder", []string{"amazing", "incredible", "breathtaking", "stunning", "beautiful", "wow"}},
	{"connection", []string{"together", "friends", "family", "love", "shared", "laugh"}},
}

// InferTheme derives a recall theme from voice keywords, or "" when none match.
func InferTheme(keywords []string) string {
	for _, row := range themeKeywords {
		for _, kw := range keywords {
			lower := strings.ToLower(kw)
			for _, trigger := range row.keywords {
				if strings.Contains(lower, trigger) {
					return row.theme
				}
			}
		}
	}
	return ""
}

// EmotionLabel derives the primary and secondary emotions from the
// sentiment score, falling back to the detected tone and finally to a
// neutral default. Never empty.
func EmotionLabel(sentiment *float64, tone string) (string, []string) {
	if sentiment != nil {
		s := *sentiment
		switch {
		case s >= 0.6:
			return "joyful", []string{"excited", "grateful"}
		case s >= 0.2:
			return "content", []string{"relaxed"}
		case s > -0.2:
			return "reflective", []string{"curious"}
		case s > -0.6:
			return "wistful", []string{"pensive"}
		default:
			return "melancholic", []string{"subdued"}
		}
	}
	if tone != "" {
		return strings.ToLower(tone), nil
	}
	return "reflective", nil
}

// Fallback assembles a complete, schema-valid narrative response locally.
// It is pure, deterministic for a given input, and has no failure mode: it
// is the floor the pipeline can always stand on when the model cannot be
// reached or returns garbage.
func Fallback(req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) *Response {
	place := "this place"
	if venue != nil && venue.Name != "" {
		place = venue.Name
	}

	var sentiment *float64
	var keywords []string
	tone := ""
	if req.Audio != nil {
		s := req.Audio.SentimentScore
		sentiment = &s
		keywords = req.Audio.SentimentKeywords
		tone = req.Audio.DetectedTone
	}
	primary, secondary := EmotionLabel(sentiment, tone)
	theme := InferTheme(keywords)

	companions := utils.JoinNames(req.CompanionNames())
	weatherClause := ""
	if weather != nil {
		weatherClause = fmt.Sprintf(" under %s skies", weather.Condition)
	}

	short := fmt.Sprintf("A %s moment at %s%s.", primary, place, weatherClause)

	medium := short
	if companions != "" {
		medium = fmt.Sprintf("We spent time at %s with %s%s. The mood was %s throughout.",
			place, companions, weatherClause, primary)
	} else {
		medium = fmt.Sprintf("Time at %s%s, and the mood stayed %s throughout.",
			place, weatherClause, primary)
	}

	var long strings.Builder
	fmt.Fprintf(&long, "We found ourselves at %s%s.", place, weatherClause)
	if venue != nil && venue.Description != "" {
		fmt.Fprintf(&long, " %s", utils.Truncate(venue.Description, 160))
	}
	if companions != "" {
		fmt.Fprintf(&long, " Sharing it with %s made it feel bigger than the place itself.", companions)
	}
	switch theme {
	case "":
		fmt.Fprintf(&long, " What stays is the feeling of being %s, right there, right then.", primary)
	default:
		fmt.Fprintf(&long, " More than anything, it was a moment of %s.", theme)
	}

	hook := fmt.Sprintf("The moment at %s that stayed with us", place)
	if venue != nil && len(venue.UniqueClaims) > 0 {
		hook = venue.UniqueClaims[0]
	}

	season := Season(req.CapturedAt.Month())
	timeOfDay := TimeOfDay(req.CapturedAt.Hour())

	experiences := make([]models.CompanionExperience, 0, len(req.Companions))
	for _, c := range req.Companions {
		experiences = append(experiences, models.CompanionExperience{
			Name:         c.Name,
			Relationship: c.Relationship,
			SharedMoment: fmt.Sprintf("Shared the %s at %s with %s.", timeOfDay, place, c.Name),
		})
	}

	return &Response{
		PrimaryEmotion:    primary,
		SecondaryEmotions: secondary,
		Narratives: models.Narratives{
			Short:  short,
			Medium: medium,
			Long:   long.String(),
		},
		ExcitementHook: hook,
		MemoryAnchors: models.MemoryAnchors{
			TriggerPhrase: fmt.Sprintf("that %s at %s", timeOfDay, place),
			SensoryCue:    sensoryFor(venue, weather).Sight,
			EmotionalCue:  fmt.Sprintf("feeling %s", primary),
			LocationCue:   place,
			TemporalCue:   fmt.Sprintf("a %s %s", season, timeOfDay),
		},
		CompanionExperiences: experiences,
		Sensory:              sensoryFor(venue, weather),
	}
}

// sensoryFor infers plausible sensory impressions from category and weather.
func sensoryFor(venue *models.VenueEnrichment, weather *models.WeatherSnapshot) models.Sensory {
	category := models.CategoryOther
	if venue != nil {
		category = venue.Category
	}

	s := models.Sensory{
		Sight: "the scene opening up in front of us",
		Sound: "a low murmur of voices around us",
		Scent: "the faint scent of the open air",
	}
	switch category {
	case models.CategoryLandmark:
		s.Sight = "weathered stone and details worn smooth by time"
		s.Sound = "footsteps echoing alongside quiet conversation"
		s.Scent = "old stone and a trace of incense"
	case models.CategoryDining:
		s.Sight = "plates moving past and steam rising off them"
		s.Sound = "cutlery, chatter, and the kitchen behind it all"
		s.Scent = "something cooking that made us hungrier"
	case models.CategoryNature:
		s.Sight = "green in every direction, light filtering through"
		s.Sound = "wind through the leaves and distant birdsong"
		s.Scent = "earth and growing things"
	case models.CategoryShopping:
		s.Sight = "stalls and color stacked to the rafters"
		s.Sound = "vendors calling and bags rustling"
		s.Scent = "spices and fresh goods mingling"
	case models.CategoryEvent:
		s.Sight = "stage lights cutting through the dark"
		s.Sound = "a crowd finding its shared voice"
		s.Scent = "warm air thick with anticipation"
	case models.CategoryTransit:
		s.Sight = "departure boards and people in motion"
		s.Sound = "announcements rolling over the platform"
		s.Scent = "coffee carried at walking speed"
	}
	if weather != nil {
		switch {
		case strings.Contains(weather.Condition, "rain"):
			s.Scent = "rain on warm pavement"
		case strings.Contains(weather.Condition, "snow"):
			s.Scent = "the clean cold of falling snow"
		}
	}
	return s
}

// Season names the meteorological season for a month.
func Season(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// TimeOfDay buckets an hour into night/morning/afternoon/evening.
func TimeOfDay(hour int) string {
	switch {
	case hour < 5:
		return "night"
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	case hour < 21:
		return "evening"
	default:
		return "night"
	}
}
