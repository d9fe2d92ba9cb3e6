package models

// VenueCategory is the closed set of venue categories.
type VenueCategory string

const (
	CategoryLandmark      VenueCategory = "landmark"
	CategoryDining        VenueCategory = "dining"
	CategoryShopping      VenueCategory = "shopping"
	CategoryNature        VenueCategory = "nature"
	CategoryEvent         VenueCategory = "event"
	CategoryAccommodation VenueCategory = "accommodation"
	CategoryTransit       VenueCategory = "transit"
	CategoryOther         VenueCategory = "other"
)

// VenueEnrichment is the enriched view of a venue, produced once per
// distinct lookup and cached. Immutable after creation.
type VenueEnrichment struct {
	Name                   string        `json:"name"`
	Category               VenueCategory `json:"category"`
	Description            string        `json:"description,omitempty"`
	FoundedYear            *int          `json:"founded_year,omitempty"`
	HistoricalSignificance string        `json:"historical_significance,omitempty"`
	UniqueClaims           []string      `json:"unique_claims,omitempty"`
	FameScore              *float64      `json:"fame_score,omitempty"`
	SourceURL              string        `json:"source_url,omitempty"`
}

// WeatherSnapshot is the per-request weather view derived from coarsened
// coordinates. Never cached.
type WeatherSnapshot struct {
	Condition      string   `json:"condition"`
	TemperatureC   float64  `json:"temperature_c"`
	Humidity       *float64 `json:"humidity,omitempty"`
	WindSpeedMS    *float64 `json:"wind_speed_ms,omitempty"`
	OutdoorComfort float64  `json:"outdoor_comfort"`
}
