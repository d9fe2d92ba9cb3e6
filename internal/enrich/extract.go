// Package enrich gathers venue and weather enrichment from external
// sources, degrading to deterministic local data when they fail.
package enrich

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/pkg/utils"
)

// foundedPatterns are tried in order; the first match wins. Each pattern's
// first capture group is the year.
var foundedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:founded|established|built|constructed|created|opened)\s+in\s+(\d{3,4})`),
	regexp.MustCompile(`(?i)dates\s+back\s+to\s+(\d{3,4})`),
	regexp.MustCompile(`(?i)since\s+(\d{3,4})`),
	regexp.MustCompile(`(\d{3,4})\s*(?:CE|AD|BC)`),
}

// ExtractFoundedYear finds the founding year in an extract, or nil when no
// pattern matches. Years after the current year are rejected.
func ExtractFoundedYear(text string) *int {
	currentYear := time.Now().Year()
	for _, pattern := range foundedPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil || year > currentYear {
			continue
		}
		return &year
	}
	return nil
}

var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:known|famous|renowned|celebrated)\s+for\s+[^.;]{3,90}`),
	regexp.MustCompile(`(?i)(?:the\s+)?(?:largest|oldest|tallest|first|most\s+\w+)\s+[^.;]{3,80}`),
	regexp.MustCompile(`(?i)UNESCO\s+World\s+Heritage\s+[^.;]{0,80}`),
	regexp.MustCompile(`(?i)world\s+heritage\s+site[^.;]{0,60}`),
}

// ExtractUniqueClaims pulls up to three notable-claim phrases from an
// extract: superlatives, "known/famous/renowned for" phrases, and heritage
// mentions. Claims are length-filtered to [10,100] characters, deduplicated
// case-insensitively, and capitalized.
func ExtractUniqueClaims(text string) []string {
	var claims []string
	seen := make(map[string]bool)
	for _, pattern := range claimPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			claim := strings.TrimSpace(match)
			if len(claim) < 10 || len(claim) > 100 {
				continue
			}
			key := strings.ToLower(claim)
			if seen[key] {
				continue
			}
			seen[key] = true
			claims = append(claims, utils.Capitalize(claim))
			if len(claims) == 3 {
				return claims
			}
		}
	}
	return claims
}

// categoryKeywords is an ordered table; the first category with a matching
// keyword wins, so search order matters.
var categoryKeywords = []struct {
	category models.VenueCategory
	keywords []string
}{
	{models.CategoryLandmark, []string{"temple", "shrine", "church", "cathedral", "mosque", "museum", "monument", "palace", "castle", "tower", "religious"}},
	{models.CategoryDining, []string{"restaurant", "cafe", "bar", "bistro", "eatery"}},
	{models.CategoryAccommodation, []string{"hotel", "hostel", "ryokan", "resort"}},
	{models.CategoryNature, []string{"park", "beach", "garden", "mountain", "forest", "lake", "river"}},
	{models.CategoryShopping, []string{"market", "mall", "bazaar", "shopping"}},
	{models.CategoryEvent, []string{"theatre", "theater", "arena", "stadium", "concert", "festival"}},
	{models.CategoryTransit, []string{"station", "airport", "terminal", "port"}},
}

// InferCategory classifies a venue by keyword matching against name and
// extract text. Unmatched venues are "other".
func InferCategory(name, text string) models.VenueCategory {
	haystack := strings.ToLower(name + " " + text)
	for _, row := range categoryKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(haystack, kw) {
				return row.category
			}
		}
	}
	return models.CategoryOther
}

// significantKeywords mark categories of venues that carry extra notability.
var significantKeywords = []string{
	"temple", "cathedral", "palace", "castle", "monument", "museum", "landmark", "ancient", "historic",
}

// CalculateFameScore estimates venue notability in [0,1] from encyclopedic
// signals. Base is 0.1 with no article and 0.3 with one; extract length,
// significant-category keywords, heritage status, and age each add 0.1.
// The result is capped at 1.0 and rounded to 2 decimals.
func CalculateFameScore(hasArticle bool, extract string, claims []string, foundedYear *int) float64 {
	score := 0.1
	if hasArticle {
		score = 0.3
	}
	if len(extract) > 500 {
		score += 0.1
	}
	if len(extract) > 1500 {
		score += 0.1
	}
	lower := strings.ToLower(extract)
	for _, kw := range significantKeywords {
		if strings.Contains(lower, kw) {
			score += 0.1
			break
		}
	}
	if isWorldHeritage(lower, claims) {
		score += 0.1
	}
	if foundedYear != nil && time.Now().Year()-*foundedYear > 100 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return utils.Round2(score)
}

func isWorldHeritage(lowerExtract string, claims []string) bool {
	if strings.Contains(lowerExtract, "unesco") || strings.Contains(lowerExtract, "world heritage") {
		return true
	}
	for _, c := range claims {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "unesco") || strings.Contains(lc, "world heritage") {
			return true
		}
	}
	return false
}
