// Pitchfork review feed implementation of [ReviewSource]
package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const (
	defaultFeedURL   = "https://pitchfork.com/reviews/albums/"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) crate/0.3"
)

// PitchforkSource scrapes album review records from the Pitchfork reviews page.
//
// Individual reviews that fail to parse are skipped; only a whole-page failure
// surfaces as an error.
type PitchforkSource struct {
	feedURL    string
	userAgent  string
	maxReviews int
	httpClient *http.Client
	logger     *log.Logger
}

// PitchforkOpts contains configuration options for creating a PitchforkSource.
type PitchforkOpts struct {
	FeedURL    string
	UserAgent  string
	MaxReviews int
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewPitchforkSource creates a new Pitchfork review source.
func NewPitchforkSource(opts PitchforkOpts) *PitchforkSource {
	if opts.FeedURL == "" {
		opts.FeedURL = defaultFeedURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &PitchforkSource{
		feedURL:    opts.FeedURL,
		userAgent:  opts.UserAgent,
		maxReviews: opts.MaxReviews,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

func (p *PitchforkSource) Name() string {
	return "Pitchfork"
}

// FetchReviews fetches the reviews page and parses it into review records in page order.
func (p *PitchforkSource) FetchReviews(ctx context.Context) ([]models.Review, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrSourceUnavailable, resp.StatusCode)
	}

	reviews, err := p.parse(resp)
	if err != nil {
		return nil, err
	}

	if p.maxReviews > 0 && len(reviews) > p.maxReviews {
		reviews = reviews[:p.maxReviews]
	}

	return reviews, nil
}

// parse extracts review records from the page HTML.
func (p *PitchforkSource) parse(resp *http.Response) ([]models.Review, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page: %v", shared.ErrSourceUnavailable, err)
	}

	var reviews []models.Review

	doc.Find(".review").Each(func(_ int, sel *goquery.Selection) {
		artist := strings.TrimSpace(sel.Find(".review__title-artist").Text())
		album := strings.TrimSpace(sel.Find(".review__title-album").Text())

		scoreText := strings.TrimSpace(sel.Find(".score").Text())
		score, err := strconv.ParseFloat(scoreText, 64)

		if artist == "" || album == "" || err != nil {
			p.logger.Debugf("skipping malformed review entry (artist=%q album=%q score=%q)", artist, album, scoreText)
			return
		}

		reviewPath, _ := sel.Find("a.review__link").Attr("href")
		publishDate, _ := sel.Find("time").Attr("datetime")

		reviews = append(reviews, models.Review{
			Artist:      artist,
			Album:       album,
			Score:       score,
			PublishDate: publishDate,
			URL:         absoluteReviewURL(reviewPath),
		})
	})

	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: no reviews found, possible selector mismatch", shared.ErrSourceUnavailable)
	}

	return reviews, nil
}

func absoluteReviewURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return "https://pitchfork.com" + path
}
