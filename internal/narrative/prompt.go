package narrative

import (
	"fmt"
	"strings"

	"github.com/hyperjump/omoide/internal/models"
)

const responseShapeInstruction = `Respond with one JSON object of exactly this shape:
{
  "primary_emotion": string,
  "secondary_emotions": [string],
  "narratives": {"short": string, "medium": string, "long": string},
  "excitement_hook": string,
  "memory_anchors": {"trigger_phrase": string, "sensory_cue": string, "emotional_cue": string, "location_cue": string, "temporal_cue": string},
  "companion_experiences": [{"name": string, "relationship": string, "shared_moment": string}],
  "sensory": {"sight": string, "sound": string, "scent": string}
}`

// BuildPrompt assembles the single user message sent to the narrative
// model. Voice analysis is included as metadata only; no transcript text
// exists at this layer and none is ever sent.
func BuildPrompt(req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) string {
	var b strings.Builder

	b.WriteString("## PHOTO ANALYSIS\n")
	fmt.Fprintf(&b, "photos: %d\n", req.Photos.Count)
	for i, p := range req.Photos.Analyses {
		fmt.Fprintf(&b, "photo %d: scene=%s lighting=%s setting=%s faces=%d crowd=%s energy=%s emotion=%s\n",
			i+1, p.Scene, p.Lighting, p.Setting, p.FaceCount, p.CrowdLevel, p.EnergyLevel, p.DetectedEmotion)
	}

	if req.Audio != nil {
		b.WriteString("\n## VOICE ANALYSIS (metadata only)\n")
		fmt.Fprintf(&b, "sentiment: %.2f\nduration_seconds: %.0f\n", req.Audio.SentimentScore, req.Audio.DurationSeconds)
		if len(req.Audio.SentimentKeywords) > 0 {
			fmt.Fprintf(&b, "keywords: %s\n", strings.Join(req.Audio.SentimentKeywords, ", "))
		}
		if req.Audio.DetectedTone != "" {
			fmt.Fprintf(&b, "tone: %s\n", req.Audio.DetectedTone)
		}
	}

	if venue != nil {
		b.WriteString("\n## VENUE CONTEXT\n")
		fmt.Fprintf(&b, "name: %s\ncategory: %s\n", venue.Name, venue.Category)
		if venue.Description != "" {
			fmt.Fprintf(&b, "about: %s\n", venue.Description)
		}
		if venue.FoundedYear != nil {
			fmt.Fprintf(&b, "founded: %d\n", *venue.FoundedYear)
		}
		for _, claim := range venue.UniqueClaims {
			fmt.Fprintf(&b, "claim: %s\n", claim)
		}
	}

	if weather != nil {
		b.WriteString("\n## WEATHER\n")
		fmt.Fprintf(&b, "condition: %s\ntemperature_c: %.1f\noutdoor_comfort: %.2f\n",
			weather.Condition, weather.TemperatureC, weather.OutdoorComfort)
	}

	if len(req.Companions) > 0 {
		b.WriteString("\n## COMPANIONS\n")
		for _, c := range req.Companions {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", c.Name, orUnknown(c.Relationship), orUnknown(c.AgeGroup))
		}
	}

	b.WriteString("\n## TEMPORAL CONTEXT\n")
	fmt.Fprintf(&b, "captured_at: %s\n", req.CapturedAt.Format("Monday, January 2 2006, 15:04"))
	if req.Destination != "" {
		fmt.Fprintf(&b, "trip_destination: %s\n", req.Destination)
	}

	b.WriteString("\n")
	b.WriteString(responseShapeInstruction)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
