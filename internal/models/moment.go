package models

import "time"

// ProcessingTier reports where the narrative text came from.
type ProcessingTier string

const (
	// TierFull means the external narrative model produced the narratives.
	TierFull ProcessingTier = "full"
	// TierLocalOnly means the local fallback generator produced them.
	TierLocalOnly ProcessingTier = "local_only"
)

// Cloud call names reported in the processing-transparency block.
const (
	CloudCallVenue     = "wikipedia"
	CloudCallMockVenue = "mock-venue"
	CloudCallWeather   = "openweather"
	CloudCallNarrative = "narrative-model"
)

// EmotionProfile is the classified emotional content of the moment.
type EmotionProfile struct {
	Primary    string   `json:"primary"`
	Secondary  []string `json:"secondary,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Atmosphere is the closed-enum view of the scene.
type Atmosphere struct {
	Lighting string `json:"lighting"`
	Energy   string `json:"energy"`
	Setting  string `json:"setting"`
	Crowd    string `json:"crowd"`
}

// Narratives holds the three narrative lengths.
type Narratives struct {
	Short  string `json:"short"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}

// Sensory holds the three inferred sensory impressions.
type Sensory struct {
	Sight string `json:"sight"`
	Sound string `json:"sound"`
	Scent string `json:"scent"`
}

// Excitement summarizes why the venue is notable.
type Excitement struct {
	FameScore    *float64 `json:"fame_score,omitempty"`
	UniqueClaims []string `json:"unique_claims,omitempty"`
	Hook         string   `json:"hook"`
}

// MemoryAnchors are five short cues for later recall.
type MemoryAnchors struct {
	TriggerPhrase string `json:"trigger_phrase"`
	SensoryCue    string `json:"sensory_cue"`
	EmotionalCue  string `json:"emotional_cue"`
	LocationCue   string `json:"location_cue"`
	TemporalCue   string `json:"temporal_cue"`
}

// CompanionExperience is the per-companion entry in the record.
type CompanionExperience struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	SharedMoment string `json:"shared_moment"`
}

// Environment is the captured surroundings snapshot.
type Environment struct {
	Weather   *WeatherSnapshot `json:"weather,omitempty"`
	TimeOfDay string           `json:"time_of_day"`
	Season    string           `json:"season"`
}

// UserReflection carries the voice-note reduction. VoiceNoteTranscript is
// always null in outbound records; the field exists only to make that
// contract visible.
type UserReflection struct {
	SentimentScore      *float64 `json:"sentiment_score,omitempty"`
	Keywords            []string `json:"keywords,omitempty"`
	VoiceNoteTranscript *string  `json:"voice_note_transcript"`
}

// Processing is the transparency block reported with every record.
type Processing struct {
	Tier             ProcessingTier `json:"tier"`
	LocalPercentage  int            `json:"local_percentage"`
	CloudCalls       []string       `json:"cloud_calls"`
	ProcessingTimeMS int64          `json:"processing_time_ms"`
}

// MomentRecord is the fully assembled synthesis output. Created once per
// request and never mutated after construction.
type MomentRecord struct {
	ID            string                `json:"id"`
	CapturedAt    time.Time             `json:"captured_at"`
	CreatedAt     time.Time             `json:"created_at"`
	Venue         *VenueEnrichment      `json:"venue,omitempty"`
	Detection     Detection             `json:"detection"`
	Emotions      EmotionProfile        `json:"emotions"`
	Atmosphere    Atmosphere            `json:"atmosphere"`
	Transcendence TranscendenceResult   `json:"transcendence"`
	Sensory       Sensory               `json:"sensory"`
	Excitement    Excitement            `json:"excitement"`
	MemoryAnchors MemoryAnchors         `json:"memory_anchors"`
	Narratives    Narratives            `json:"narratives"`
	Companions    []CompanionExperience `json:"companions,omitempty"`
	Environment   Environment           `json:"environment"`
	Reflection    UserReflection        `json:"user_reflection"`
	Processing    Processing            `json:"processing"`
}

// Validate is the output self-check. A record failing this check must never
// be sent as a success; the orchestrator fails the request loudly instead.
func (m *MomentRecord) Validate() error {
	var errs FieldErrors
	if m.ID == "" {
		errs = append(errs, FieldError{"id", "must not be empty"})
	}
	if m.Emotions.Primary == "" {
		errs = append(errs, FieldError{"emotions.primary", "must not be empty"})
	}
	if m.Narratives.Short == "" || m.Narratives.Medium == "" || m.Narratives.Long == "" {
		errs = append(errs, FieldError{"narratives", "all three lengths must be non-empty"})
	}
	if m.Transcendence.Score < 0 || m.Transcendence.Score > 1 {
		errs = append(errs, FieldError{"transcendence.score", "must be in [0,1]"})
	}
	if m.Transcendence.DominantFactor == "" {
		errs = append(errs, FieldError{"transcendence.dominant_factor", "must not be empty"})
	}
	if m.Atmosphere.Lighting == "" || m.Atmosphere.Energy == "" || m.Atmosphere.Setting == "" || m.Atmosphere.Crowd == "" {
		errs = append(errs, FieldError{"atmosphere", "all fields must be set"})
	}
	if m.Processing.Tier != TierFull && m.Processing.Tier != TierLocalOnly {
		errs = append(errs, FieldError{"processing.tier", "must be full or local_only"})
	}
	if m.Reflection.VoiceNoteTranscript != nil {
		errs = append(errs, FieldError{"user_reflection.voice_note_transcript", "must be null"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
