// package tasks implements the review-to-catalog matching and favorite
// synchronization engine.
//
// The core abstraction is Engine, which resolves scraped review records to
// catalog albums and drives the multi-step remote mutation sequence behind a
// favorite toggle. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

// MatchResult represents the result of attempting to match a single review.
type MatchResult struct {
	Review  models.Review // Original review record from the feed
	Album   *models.Album // Matched album (nil if not found)
	Skipped bool          // True when the record was skipped
	Error   error         // Error if match failed (nil for clean no-match skips)
}

// MatchRunResult contains all data from a full match operation.
type MatchRunResult struct {
	Albums          []models.Album // Matched albums in review order
	Results         []MatchResult  // Individual per-review results
	TotalReviews    int            // Total review records processed
	MatchedCount    int            // Number of successfully matched reviews
	SkippedCount    int            // Number of skipped reviews
	MatchPercentage float64        // Success rate as percentage
}

// Engine resolves review records against the catalog and synchronizes
// favorite state with the remote library, follow list, and yearly playlists.
type Engine struct {
	catalog services.Catalog
	source  services.ReviewSource
	logger  *log.Logger
	limiter *rate.Limiter
	workers int
	now     func() time.Time
}

// EngineOpts contains configuration options for creating an Engine.
type EngineOpts struct {
	Catalog   services.Catalog
	Source    services.ReviewSource
	Logger    *log.Logger
	RateLimit float64          // Catalog searches per second (default: 5)
	Workers   int              // Concurrent track-detail fetches (default: 5)
	Now       func() time.Time // Clock override for tests
}

// NewEngine creates a new Engine with the provided collaborators.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		catalog: opts.Catalog,
		source:  opts.Source,
		logger:  opts.Logger,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		workers: opts.Workers,
		now:     opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// FetchAndMatch scrapes the review feed and matches every record against the catalog.
//
// A feed failure aborts the run; from that point on matching follows
// [Engine.MatchReviews] semantics.
func (e *Engine) FetchAndMatch(ctx context.Context, progress chan<- ProgressUpdate) (*MatchRunResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: review source not initialized", shared.ErrSourceUnavailable)
	}

	e.sendProgress(progress, fetchReviewsUpdate(1, 1, e.source.Name()))

	reviews, err := e.source.FetchReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return e.MatchReviews(ctx, progress, reviews)
}

// MatchReviews resolves each review record to a catalog album, in review order.
//
// A record whose search yields nothing, or whose catalog calls fail, is
// skipped and logged; a single unresolved review never aborts the batch.
// Duplicate album ids are not collapsed here; replacing the collection is the
// store's responsibility.
func (e *Engine) MatchReviews(ctx context.Context, progress chan<- ProgressUpdate, reviews []models.Review) (*MatchRunResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrCatalogUnavailable)
	}

	total := len(reviews)
	result := &MatchRunResult{
		TotalReviews: total,
		Results:      make([]MatchResult, 0, total),
	}

	for i, review := range reviews {
		e.sendProgress(progress, searchAlbumUpdate(i+1, total, review))

		album, err := e.matchOne(ctx, review)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}

			skip := MatchResult{Review: review, Skipped: true}
			if !errors.Is(err, shared.ErrNoMatch) {
				skip.Error = err
			}
			result.Results = append(result.Results, skip)
			result.SkippedCount++
			e.logger.Warnf("skipping review %s - %s: %v", review.Artist, review.Album, err)
			continue
		}

		result.Results = append(result.Results, MatchResult{Review: review, Album: album})
		result.Albums = append(result.Albums, *album)
		result.MatchedCount++
	}

	if result.TotalReviews > 0 {
		result.MatchPercentage = float64(result.MatchedCount) / float64(result.TotalReviews) * 100
	}

	e.sendProgress(progress, matchCompleteUpdate(result.MatchedCount, total))
	return result, nil
}

// matchOne resolves a single review: search for the album, then fetch the
// full record (search results are abbreviated) and attach the review.
func (e *Engine) matchOne(ctx context.Context, review models.Review) (*models.Album, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	summary, err := e.catalog.SearchAlbum(ctx, review.Artist, review.Album)
	if err != nil {
		return nil, err
	}

	album, err := e.catalog.GetAlbum(ctx, summary.ID)
	if err != nil {
		return nil, err
	}

	album.Favorited = false
	album.Listened = false
	attached := review
	album.Review = &attached

	return album, nil
}
