package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"barsandbios/internal/store"
)

// ErrAlbumMissing is returned when the album being recomputed no longer exists.
var ErrAlbumMissing = errors.New("album missing")

var recomputesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "barsandbios_rating_recomputes_total",
		Help: "Album rating recomputations by outcome.",
	},
	[]string{"outcome"},
)

// Store defines the persistence hooks the aggregator needs.
type Store interface {
	ActiveReviewRatings(ctx context.Context, albumID int64) ([]int, error)
	SetAlbumRating(ctx context.Context, albumID int64, average float64, total int) error
}

// Summary is the aggregate written to an album.
type Summary struct {
	AlbumID       int64   `json:"albumId"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// Aggregator keeps an album's averageRating and totalReviews in step with
// its active reviews.
type Aggregator interface {
	Recompute(ctx context.Context, albumID int64) (Summary, error)
}

type service struct {
	store  Store
	logger zerolog.Logger
}

// New constructs an Aggregator backed by the given Store.
func New(store Store, logger zerolog.Logger) Aggregator {
	return &service{
		store:  store,
		logger: logger.With().Str("component", "ratings").Logger(),
	}
}

// Recompute reads every active rating of albumID and persists the rounded
// mean and count. Running it twice in a row yields the same album state.
func (s *service) Recompute(ctx context.Context, albumID int64) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	ratings, err := s.store.ActiveReviewRatings(ctx, albumID)
	if err != nil {
		recomputesTotal.WithLabelValues("error").Inc()
		return Summary{}, fmt.Errorf("load ratings for album %d: %w", albumID, err)
	}

	summary := Summarize(albumID, ratings)
	if err := s.store.SetAlbumRating(ctx, albumID, summary.AverageRating, summary.TotalReviews); err != nil {
		if errors.Is(err, store.ErrAlbumNotFound) {
			recomputesTotal.WithLabelValues("missing").Inc()
			return Summary{}, fmt.Errorf("%w: %w", ErrAlbumMissing, err)
		}
		recomputesTotal.WithLabelValues("error").Inc()
		return Summary{}, fmt.Errorf("store rating for album %d: %w", albumID, err)
	}

	recomputesTotal.WithLabelValues("updated").Inc()
	s.logger.Debug().
		Int64("album_id", albumID).
		Float64("average_rating", summary.AverageRating).
		Int("total_reviews", summary.TotalReviews).
		Msg("album rating recomputed")

	return summary, nil
}

// Summarize computes the aggregate for a set of ratings. The mean is rounded
// half-up to one decimal using integer arithmetic on tenths.
func Summarize(albumID int64, ratings []int) Summary {
	count := len(ratings)
	if count == 0 {
		return Summary{AlbumID: albumID}
	}

	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	n := int64(count)
	tenths := (sum*20 + n) / (2 * n)

	return Summary{
		AlbumID:       albumID,
		AverageRating: float64(tenths) / 10,
		TotalReviews:  count,
	}
}
