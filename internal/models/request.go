// Package models defines the request and record types for moment synthesis.
package models

import (
	"fmt"
	"strings"
	"time"
)

// PhotoAnalysis holds the categorical on-device analysis for one photo.
// All fields are free-form labels produced upstream; mapping into closed
// enums happens in the atmosphere package.
type PhotoAnalysis struct {
	Scene           string `json:"scene,omitempty"`
	Lighting        string `json:"lighting,omitempty"`
	Setting         string `json:"setting,omitempty"` // indoor / outdoor
	FaceCount       int    `json:"face_count,omitempty"`
	CrowdLevel      string `json:"crowd_level,omitempty"`
	EnergyLevel     string `json:"energy_level,omitempty"`
	DetectedEmotion string `json:"detected_emotion,omitempty"`
}

// PhotoSet is the photo signal block of a synthesis request.
type PhotoSet struct {
	Count    int             `json:"count"`
	Analyses []PhotoAnalysis `json:"analyses,omitempty"`
}

// VoiceSignal carries the reduced voice-note analysis. The raw transcript
// never reaches this type; only the sentiment reduction and keywords do.
type VoiceSignal struct {
	SentimentScore    float64  `json:"sentiment_score"`
	DurationSeconds   float64  `json:"duration_seconds"`
	SentimentKeywords []string `json:"sentiment_keywords,omitempty"`
	DetectedTone      string   `json:"detected_tone,omitempty"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Venue identifies where the moment was captured.
type Venue struct {
	Name        string       `json:"name"`
	Category    string       `json:"category,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Companion is one person present at the moment.
type Companion struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	AgeGroup     string `json:"age_group,omitempty"`
}

// Detection describes what triggered the capture.
type Detection struct {
	Trigger    string  `json:"trigger,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Preferences holds per-request feature flags and intent signals.
type Preferences struct {
	FirstVisit       bool     `json:"first_visit,omitempty"`
	UnexpectedMoment bool     `json:"unexpected_moment,omitempty"`
	IntentMatch      *float64 `json:"intent_match,omitempty"`
}

// SynthesisRequest is the boundary input for one moment synthesis. It is
// immutable once received and lives for the duration of one request.
type SynthesisRequest struct {
	Photos      PhotoSet     `json:"photos"`
	Audio       *VoiceSignal `json:"audio,omitempty"`
	Venue       *Venue       `json:"venue,omitempty"`
	Companions  []Companion  `json:"companions,omitempty"`
	CapturedAt  time.Time    `json:"captured_at"`
	Detection   Detection    `json:"detection"`
	Preferences Preferences  `json:"preferences"`
	// Destination is an optional trip-level hint used to disambiguate
	// venue lookups ("Senso-ji" in Tokyo vs elsewhere).
	Destination string `json:"destination,omitempty"`
}

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a set of field errors; it implements error.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Validate checks the inbound contract and returns all violations at once.
// Returns nil when the request is acceptable.
func (r *SynthesisRequest) Validate() error {
	var errs FieldErrors
	if r.Photos.Count < 1 {
		errs = append(errs, FieldError{"photos.count", "must be at least 1"})
	}
	if r.Audio != nil {
		if r.Audio.SentimentScore < -1 || r.Audio.SentimentScore > 1 {
			errs = append(errs, FieldError{"audio.sentiment_score", "must be in [-1,1]"})
		}
		if r.Audio.DurationSeconds < 0 || r.Audio.DurationSeconds > 300 {
			errs = append(errs, FieldError{"audio.duration_seconds", "must be in [0,300]"})
		}
	}
	if r.Venue != nil {
		if strings.TrimSpace(r.Venue.Name) == "" {
			errs = append(errs, FieldError{"venue.name", "must not be empty"})
		}
		if c := r.Venue.Coordinates; c != nil {
			if c.Lat < -90 || c.Lat > 90 {
				errs = append(errs, FieldError{"venue.coordinates.lat", "must be in [-90,90]"})
			}
			if c.Lon < -180 || c.Lon > 180 {
				errs = append(errs, FieldError{"venue.coordinates.lon", "must be in [-180,180]"})
			}
		}
	}
	for i, c := range r.Companions {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("companions[%d].name", i), "must not be empty"})
		}
	}
	if r.CapturedAt.IsZero() {
		errs = append(errs, FieldError{"captured_at", "must be set"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CompanionNames returns the companion names in request order.
func (r *SynthesisRequest) CompanionNames() []string {
	names := make([]string, 0, len(r.Companions))
	for _, c := range r.Companions {
		names = append(names, c.Name)
	}
	return names
}
