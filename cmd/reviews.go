package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ReviewsFetch scrapes the review feed and prints the records without matching.
func (r *Runner) ReviewsFetch(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: review source not initialized", shared.ErrSourceUnavailable)
	}

	r.logger.Info("fetching reviews", "source", r.source.Name())

	reviews, err := r.source.FetchReviews(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(reviews, cmd.Bool("pretty"))
	}

	r.writePlain("Latest reviews from %s (%d):\n\n", r.source.Name(), len(reviews))
	for i, review := range reviews {
		r.writePlain("%d. %s - %s", i+1, review.Artist, review.Album)
		if review.Score > 0 {
			r.writePlain(" [%.1f]", review.Score)
		}
		r.writePlain("\n")
		if review.PublishDate != "" {
			r.writePlain("   Published: %s\n", review.PublishDate)
		}
	}

	return nil
}

// ReviewsSync fetches the latest reviews, matches them against the catalog,
// replaces the collection, and persists the result.
func (r *Runner) ReviewsSync(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: review source not initialized", shared.ErrSourceUnavailable)
	}
	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	r.writePlain("Syncing reviews from %s...\n\n", r.source.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchReviews:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchAlbums:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.MatchComplete:
				r.writePlain("\n✓ %s\n", update.Message)
			}
		}
	}()

	reviews, err := r.source.FetchReviews(ctx)
	if err != nil {
		close(progressCh)
		return err
	}

	result, err := r.store.Refresh(ctx, progressCh, reviews)
	close(progressCh)

	if err != nil {
		return err
	}

	db, repo, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.ReplaceAll(r.store.Albums()); err != nil {
		return fmt.Errorf("failed to persist collection: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("Reviews fetched: %d\n", result.TotalReviews)
	r.writePlain("Albums matched: %d/%d (%.1f%%)\n", result.MatchedCount, result.TotalReviews, result.MatchPercentage)

	if result.SkippedCount > 0 {
		r.writePlain("\nSkipped %d reviews:\n", result.SkippedCount)
		for _, match := range result.Results {
			if match.Skipped {
				r.writePlain("  - %s - %s", match.Review.Artist, match.Review.Album)
				if match.Error != nil {
					r.writePlain(" (%v)", match.Error)
				}
				r.writePlain("\n")
			}
		}
	}

	return nil
}
