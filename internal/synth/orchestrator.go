// Package synth orchestrates one moment synthesis request end to end:
// admission, validation, enrichment fan-out, narrative with fallback,
// scoring, assembly, and the final output self-check.
package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/omoide/internal/enrich"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/narrative"
	"github.com/hyperjump/omoide/internal/privacy"
	"github.com/hyperjump/omoide/internal/ratelimit"
	"go.uber.org/zap"
)

var (
	// ErrRateLimited is returned when admission fails. Terminal; the
	// client may retry after the window resets.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrOutputSchema is returned when the assembled record fails its own
	// schema. The one failure that is never swallowed.
	ErrOutputSchema = errors.New("assembled record failed output self-check")
)

// State names the orchestrator's phases, in order. Terminal rejections
// (admission, validation) never enter the pipeline states.
type State string

const (
	StateAdmitted      State = "admitted"
	StateValidated     State = "validated"
	StateEnriching     State = "enriching"
	StateSynthesizing  State = "synthesizing"
	StateScoring       State = "scoring"
	StateAssembled     State = "assembled"
	StateOutputValid   State = "output_valid"
	StateOutputInvalid State = "output_invalid"
)

// Enricher resolves venue and weather context for a request.
type Enricher interface {
	Enrich(ctx context.Context, venue *models.Venue, destination string) *enrich.Result
}

// NarrativeService generates narrative content, or errors so the caller can
// fall back locally.
type NarrativeService interface {
	Generate(ctx context.Context, req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) (*narrative.Response, error)
}

// Orchestrator runs the synthesis pipeline. All state it touches across
// requests lives in the injected limiter and enricher; the orchestrator
// itself is stateless per request.
type Orchestrator struct {
	limiter   *ratelimit.Limiter
	enricher  Enricher
	narrative NarrativeService
	logger    *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a logger for pipeline diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator with its dependencies injected.
func NewOrchestrator(limiter *ratelimit.Limiter, enricher Enricher, narrativeSvc NarrativeService, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		limiter:   limiter,
		enricher:  enricher,
		narrative: narrativeSvc,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Synthesize runs one request through the full pipeline. The caller always
// gets either a complete, schema-valid record or an error; never a partial
// success. Enrichment and narrative failures degrade internally and are
// visible only through the processing-transparency block.
func (o *Orchestrator) Synthesize(ctx context.Context, identifier string, req *models.SynthesisRequest) (*models.MomentRecord, error) {
	start := time.Now()

	// Admission runs before any enrichment work, always.
	if !o.limiter.Admit(identifier) {
		return nil, ErrRateLimited
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	enrichment := o.enricher.Enrich(ctx, req.Venue, req.Destination)

	// Exactly one model attempt; any failure switches to the local
	// generator and lowers the tier. Enrichment outcomes do not affect
	// the tier.
	tier := models.TierFull
	content, err := o.narrative.Generate(ctx, req, enrichment.Venue, enrichment.Weather)
	if err != nil {
		if o.logger != nil {
			o.logger.Debug("narrative model unavailable, using local generator",
				privacy.Error(err), zap.String("state", string(StateSynthesizing)))
		}
		content = narrative.Fallback(req, enrichment.Venue, enrichment.Weather)
		tier = models.TierLocalOnly
	}

	score := scoreRequest(req, enrichment)

	record := assemble(req, enrichment, content, score, tier, time.Since(start))

	if err := record.Validate(); err != nil {
		if o.logger != nil {
			o.logger.Error("output self-check failed",
				zap.String("state", string(StateOutputInvalid)), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrOutputSchema, err)
	}

	if o.logger != nil {
		o.logger.Debug("moment synthesized",
			zap.String("id", record.ID),
			zap.String("tier", string(tier)),
			zap.Float64("score", record.Transcendence.Score),
			zap.String("state", string(StateOutputValid)),
		)
	}
	return record, nil
}

// Headers exposes the limiter state for response headers.
func (o *Orchestrator) Headers(identifier string) ratelimit.Headers {
	return o.limiter.Headers(identifier)
}
