// Package atmosphere maps free-form scene labels into closed enums.
//
// Every mapping is total: any input, including the empty string, lands on
// exactly one defined output. Unknown labels resolve to the documented
// default rather than an error.
package atmosphere

import "strings"

// Closed lighting values.
const (
	LightingGoldenHour = "golden_hour"
	LightingBright     = "bright"
	LightingOvercast   = "overcast"
	LightingNight      = "night"
)

// Closed energy values.
const (
	EnergyTranquil  = "tranquil"
	EnergyCalm      = "calm"
	EnergyLively    = "lively"
	EnergyEnergetic = "energetic"
	EnergyChaotic   = "chaotic"
)

// Closed crowd values.
const (
	CrowdEmpty    = "empty"
	CrowdSparse   = "sparse"
	CrowdModerate = "moderate"
	CrowdBusy     = "busy"
	CrowdPacked   = "packed"
)

// Closed setting values.
const (
	SettingIndoor  = "indoor"
	SettingOutdoor = "outdoor"
)

// MapLighting maps a free-form lighting label. Unknown labels and "mixed"
// default to bright.
func MapLighting(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "golden_hour", "golden hour":
		return LightingGoldenHour
	case "bright", "mixed":
		return LightingBright
	case "overcast":
		return LightingOvercast
	case "night":
		return LightingNight
	default:
		return LightingBright
	}
}

// MapEnergy maps a free-form energy label. "serene" promotes to tranquil and
// "intense" to chaotic; unknown labels default to calm.
func MapEnergy(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "serene", "tranquil":
		return EnergyTranquil
	case "calm":
		return EnergyCalm
	case "lively":
		return EnergyLively
	case "energetic":
		return EnergyEnergetic
	case "intense", "chaotic":
		return EnergyChaotic
	default:
		return EnergyCalm
	}
}

// MapCrowd maps a free-form crowd label. Unknown labels default to moderate.
func MapCrowd(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "empty":
		return CrowdEmpty
	case "sparse":
		return CrowdSparse
	case "moderate":
		return CrowdModerate
	case "busy":
		return CrowdBusy
	case "packed":
		return CrowdPacked
	default:
		return CrowdModerate
	}
}

// MapSetting maps a free-form setting label. "mixed" and unknown labels
// default to outdoor.
func MapSetting(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "indoor":
		return SettingIndoor
	case "outdoor", "mixed":
		return SettingOutdoor
	default:
		return SettingOutdoor
	}
}
