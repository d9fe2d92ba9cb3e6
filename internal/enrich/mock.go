package enrich

import (
	"fmt"
	"strings"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/pkg/utils"
)

// famousVenues covers well-known venues so offline enrichment still reads
// plausibly for them. Matched by case-insensitive substring.
var famousVenues = []struct {
	match       string
	name        string
	category    models.VenueCategory
	description string
	foundedYear int
	claims      []string
	fame        float64
}{
	{
		match: "senso-ji", name: "Sensō-ji", category: models.CategoryLandmark,
		description: "Ancient Buddhist temple in Asakusa, Tokyo, and the city's oldest temple.",
		foundedYear: 645,
		claims:      []string{"Tokyo's oldest temple", "Known for the Kaminarimon thunder gate"},
		fame:        0.9,
	},
	{
		match: "eiffel", name: "Eiffel Tower", category: models.CategoryLandmark,
		description: "Wrought-iron lattice tower on the Champ de Mars in Paris.",
		foundedYear: 1889,
		claims:      []string{"Most-visited paid monument in the world"},
		fame:        1.0,
	},
	{
		match: "machu picchu", name: "Machu Picchu", category: models.CategoryLandmark,
		description: "15th-century Inca citadel in the Eastern Cordillera of southern Peru.",
		foundedYear: 1450,
		claims:      []string{"UNESCO World Heritage Site", "One of the New Seven Wonders of the World"},
		fame:        1.0,
	},
	{
		match: "colosseum", name: "Colosseum", category: models.CategoryLandmark,
		description: "Ancient amphitheatre in the centre of Rome.",
		foundedYear: 80,
		claims:      []string{"Largest ancient amphitheatre ever built"},
		fame:        1.0,
	},
	{
		match: "fushimi inari", name: "Fushimi Inari Taisha", category: models.CategoryLandmark,
		description: "Head shrine of the kami Inari in Kyoto, famous for thousands of vermilion torii gates.",
		foundedYear: 711,
		claims:      []string{"Known for its thousands of vermilion torii gates"},
		fame:        0.9,
	},
	{
		match: "sagrada", name: "Sagrada Família", category: models.CategoryLandmark,
		description: "Gaudí's unfinished basilica in Barcelona.",
		foundedYear: 1882,
		claims:      []string{"UNESCO World Heritage Site", "Largest unfinished Catholic church in the world"},
		fame:        1.0,
	},
	{
		match: "golden gate", name: "Golden Gate Bridge", category: models.CategoryLandmark,
		description: "Suspension bridge spanning the Golden Gate strait in San Francisco.",
		foundedYear: 1937,
		claims:      []string{"Once the longest and tallest suspension bridge in the world"},
		fame:        1.0,
	},
}

var mockCategories = []models.VenueCategory{
	models.CategoryLandmark,
	models.CategoryDining,
	models.CategoryNature,
	models.CategoryShopping,
	models.CategoryEvent,
	models.CategoryOther,
}

var mockDescriptors = []string{
	"a beloved local spot",
	"a quiet place off the usual routes",
	"a popular stop with travelers",
	"a small place with real character",
	"a spot locals speak fondly of",
}

// MockVenueData produces enrichment without any network call. Famous venues
// come from a fixed table; everything else is synthesized deterministically
// from a hash of the name, so the same name always yields the same output.
func MockVenueData(name string) *models.VenueEnrichment {
	lower := strings.ToLower(name)
	for _, fv := range famousVenues {
		if strings.Contains(lower, fv.match) {
			year := fv.foundedYear
			fame := fv.fame
			return &models.VenueEnrichment{
				Name:                   fv.name,
				Category:               fv.category,
				Description:            fv.description,
				FoundedYear:            &year,
				HistoricalSignificance: fv.description,
				UniqueClaims:           append([]string(nil), fv.claims...),
				FameScore:              &fame,
			}
		}
	}

	h := utils.HashString(lower)
	category := mockCategories[h%uint64(len(mockCategories))]
	descriptor := mockDescriptors[(h>>8)%uint64(len(mockDescriptors))]
	fame := utils.Round2(0.15 + float64((h>>16)%40)/100.0)
	return &models.VenueEnrichment{
		Name:         strings.TrimSpace(name),
		Category:     category,
		Description:  fmt.Sprintf("%s is %s.", strings.TrimSpace(name), descriptor),
		UniqueClaims: []string{fmt.Sprintf("Remembered as %s", descriptor)},
		FameScore:    &fame,
	}
}
