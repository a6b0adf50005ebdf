package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// ImportStore runs a whole import batch inside one transaction.
// fn's error (or a commit failure) rolls everything back.
type ImportStore interface {
	WithinTx(ctx context.Context, fn func(tx ImportTx) error) error
}

type ImportTx interface {
	// Geography: insert, or update the name when the id exists.
	UpsertCountry(ctx context.Context, c Country) error
	UpsertRegion(ctx context.Context, r Region) error
	UpsertCity(ctx context.Context, c City) error

	UpsertAccommodation(ctx context.Context, a Accommodation) error
	AccommodationExists(ctx context.Context, id string) (bool, error)
	ReplaceFacts(ctx context.Context, accommodationID string, fs []AccommodationFact) error
	ReplaceFilters(ctx context.Context, accommodationID string, fs []AccommodationFilter) error
	ReplaceReviewGroups(ctx context.Context, accommodationID string, gs []AccommodationReviewByGroup) error
	ReplaceReviewAspects(ctx context.Context, accommodationID string, as []AccommodationReviewAspect) error

	UpsertReview(ctx context.Context, r Review) error
	ReplaceScoreAspects(ctx context.Context, reviewID string, as []ReviewScoreAspect) error
}

type AccommodationRepository interface {
	ListAccommodations(ctx context.Context) ([]AccommodationItem, error)
	GetAccommodation(ctx context.Context, id string) (AccommodationView, error)
	ListReviews(ctx context.Context, accommodationID string) ([]ReviewItem, error)
	GetReview(ctx context.Context, accommodationID, reviewID string) (ReviewView, error)
}

// Read models

type AccommodationItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Stars  *int   `json:"stars"`
	CityID string `json:"city_id"`
}

type AccommodationView struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	Stars              *int       `json:"stars"`
	CityID             string     `json:"city_id"`
	RegionID           *string    `json:"region_id"`
	CountryID          string     `json:"country_id"`
	PopularityScore    *float64   `json:"popularity_score"`
	PhotosCount        *int       `json:"photos_count"`
	DefaultPrice       *float64   `json:"default_price"`
	OverallRating      *float64   `json:"overall_rating"`
	OverallReviewCount *int       `json:"overall_review_count"`
	AdjustedRating     *float64   `json:"adjusted_rating"`
	AdjustedPrice      *float64   `json:"adjusted_price"`
	LastReviewDate     *time.Time `json:"last_review_date"`
}

type ReviewItem struct {
	ID           string   `json:"id"`
	UserName     *string  `json:"user_name"`
	GeneralScore *float64 `json:"general_score"`
	Text         *string  `json:"text"`
}

type ReviewView struct {
	ID              string              `json:"id"`
	AccommodationID string              `json:"accommodation_id"`
	Title           *string             `json:"title"`
	UserName        *string             `json:"user_name"`
	GeneralScore    *float64            `json:"general_score"`
	Text            *string             `json:"text"`
	TravelParty     *string             `json:"travel_party"`
	TravelDate      *string             `json:"travel_date"`
	Locale          *string             `json:"locale"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	ScoreAspects    map[string]*float64 `json:"score_aspects"`
}
