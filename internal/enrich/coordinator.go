package enrich

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/omoide/internal/cache"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/privacy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// VenueSource tags where a venue enrichment came from.
type VenueSource string

const (
	// VenueSourceNone means no venue was provided in the request.
	VenueSourceNone VenueSource = "none"
	// VenueSourceCache means the enrichment came from the TTL cache.
	VenueSourceCache VenueSource = "cache"
	// VenueSourceLive means the external knowledge source answered.
	VenueSourceLive VenueSource = "live"
	// VenueSourceMock means the lookup failed and the deterministic
	// local fallback was used.
	VenueSourceMock VenueSource = "mock"
)

// Result carries both enrichment outcomes with their source tags. The
// cloud-calls transparency list is derived mechanically from the tags
// rather than hand-maintained.
type Result struct {
	Venue       *models.VenueEnrichment
	VenueSource VenueSource
	Weather     *models.WeatherSnapshot
	WeatherLive bool
}

// CloudCalls lists the external services (or their stand-ins) that
// contributed to this result.
func (r *Result) CloudCalls() []string {
	calls := []string{}
	switch r.VenueSource {
	case VenueSourceLive:
		calls = append(calls, models.CloudCallVenue)
	case VenueSourceMock:
		calls = append(calls, models.CloudCallMockVenue)
	case VenueSourceCache, VenueSourceNone:
		// Cache hits invoked nothing this request.
	}
	if r.WeatherLive {
		calls = append(calls, models.CloudCallWeather)
	}
	return calls
}

// Coordinator runs venue and weather enrichment concurrently, each with
// independent failure tolerance. It never returns an error: venue lookups
// degrade to a deterministic mock and weather is simply absent on failure.
type Coordinator struct {
	store    cache.Store
	wiki     *WikipediaClient
	weather  *WeatherClient
	venueTTL time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets a logger for degradation events.
func WithCoordinatorLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator with its dependencies injected.
func NewCoordinator(store cache.Store, wiki *WikipediaClient, weather *WeatherClient, venueTTL time.Duration, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:    store,
		wiki:     wiki,
		weather:  weather,
		venueTTL: venueTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich resolves venue and weather enrichment in parallel. Both paths are
// bounded by their own call timeouts, so Enrich always completes.
func (c *Coordinator) Enrich(ctx context.Context, venue *models.Venue, destination string) *Result {
	result := &Result{VenueSource: VenueSourceNone}
	if venue == nil {
		return result
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		enrichment, source := c.lookupVenue(gctx, venue.Name, destination)
		result.Venue = enrichment
		result.VenueSource = source
		return nil
	})

	if venue.Coordinates != nil {
		coords := *venue.Coordinates
		g.Go(func() error {
			snapshot, err := c.weather.Fetch(gctx, coords.Lat, coords.Lon)
			if err != nil {
				if c.logger != nil {
					c.logger.Debug("weather enrichment unavailable", privacy.Error(err))
				}
				return nil
			}
			result.Weather = snapshot
			result.WeatherLive = true
			return nil
		})
	}

	// Goroutines only ever return nil; the group is used for the join.
	_ = g.Wait()
	return result
}

type venueLookup struct {
	enrichment *models.VenueEnrichment
	live       bool
}

// lookupVenue is the cache-then-fallback-search path. Concurrent lookups
// for the same normalized key share one flight.
func (c *Coordinator) lookupVenue(ctx context.Context, name, destination string) (*models.VenueEnrichment, VenueSource) {
	query := name
	if destination != "" {
		query = name + " " + destination
	}
	key := cache.NormalizeKey(query)

	if cached, ok := c.store.Get(key); ok {
		return cached, VenueSourceCache
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		enrichment, live := c.fetchVenue(ctx, name)
		// Mock results are cached too: a venue the source cannot answer
		// for today will not be answerable on the next request either.
		c.store.Put(key, enrichment, c.venueTTL)
		return venueLookup{enrichment: enrichment, live: live}, nil
	})
	lookup := v.(venueLookup)
	if lookup.live {
		return lookup.enrichment, VenueSourceLive
	}
	return lookup.enrichment, VenueSourceMock
}

// fetchVenue performs the two-round-trip live lookup, returning the
// deterministic mock on any failure.
func (c *Coordinator) fetchVenue(ctx context.Context, name string) (*models.VenueEnrichment, bool) {
	title, err := c.wiki.SearchRace(ctx, name)
	if err != nil {
		c.logDegraded(name, "search", err)
		return MockVenueData(name), false
	}

	extract, err := c.wiki.FetchExtract(ctx, title)
	if err != nil {
		c.logDegraded(name, "extract", err)
		return MockVenueData(name), false
	}

	foundedYear := ExtractFoundedYear(extract)
	claims := ExtractUniqueClaims(extract)
	fame := CalculateFameScore(true, extract, claims, foundedYear)

	description := extract
	if idx := firstParagraphEnd(extract); idx > 0 {
		description = extract[:idx]
	}

	enrichment := &models.VenueEnrichment{
		Name:         title,
		Category:     InferCategory(name, extract),
		Description:  description,
		FoundedYear:  foundedYear,
		UniqueClaims: claims,
		FameScore:    &fame,
		SourceURL:    PageURL(title),
	}
	if len(claims) > 0 {
		enrichment.HistoricalSignificance = claims[0]
	}
	return enrichment, true
}

func firstParagraphEnd(text string) int {
	if i := strings.IndexByte(text, '\n'); i >= 0 && i+1 < len(text) {
		return i
	}
	if len(text) > 400 {
		// back up to a rune boundary so the cut never splits a character
		cut := 400
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return cut
	}
	return 0
}

func (c *Coordinator) logDegraded(name, step string, err error) {
	if c.logger != nil {
		c.logger.Debug("venue enrichment degraded to mock",
			zap.String("venue", name),
			zap.String("step", step),
			privacy.Error(err),
		)
	}
}
