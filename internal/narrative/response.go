// Package narrative produces the narrative content of a moment record,
// either through the external narrative model or a local fallback.
package narrative

import (
	"fmt"
	"strings"

	"github.com/hyperjump/omoide/internal/models"
)

// Response is the narrative content block, whether model-generated or
// locally assembled. It is the JSON shape the model is required to return.
type Response struct {
	PrimaryEmotion       string                       `json:"primary_emotion"`
	SecondaryEmotions    []string                     `json:"secondary_emotions"`
	Narratives           models.Narratives            `json:"narratives"`
	ExcitementHook       string                       `json:"excitement_hook"`
	MemoryAnchors        models.MemoryAnchors         `json:"memory_anchors"`
	CompanionExperiences []models.CompanionExperience `json:"companion_experiences"`
	Sensory              models.Sensory               `json:"sensory"`
}

// Validate checks the response against the required shape. A model reply
// failing this check is treated as a failed call.
func (r *Response) Validate() error {
	var missing []string
	if r.PrimaryEmotion == "" {
		missing = append(missing, "primary_emotion")
	}
	if r.Narratives.Short == "" {
		missing = append(missing, "narratives.short")
	}
	if r.Narratives.Medium == "" {
		missing = append(missing, "narratives.medium")
	}
	if r.Narratives.Long == "" {
		missing = append(missing, "narratives.long")
	}
	if r.ExcitementHook == "" {
		missing = append(missing, "excitement_hook")
	}
	anchors := r.MemoryAnchors
	if anchors.TriggerPhrase == "" || anchors.SensoryCue == "" || anchors.EmotionalCue == "" ||
		anchors.LocationCue == "" || anchors.TemporalCue == "" {
		missing = append(missing, "memory_anchors")
	}
	if r.Sensory.Sight == "" || r.Sensory.Sound == "" || r.Sensory.Scent == "" {
		missing = append(missing, "sensory")
	}
	if len(missing) > 0 {
		return fmt.Errorf("narrative response missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
