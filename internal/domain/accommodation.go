package domain

import "time"

// Geographic lookups, keyed by the feed's destination ids.
type Country struct {
	ID   string
	Name string
}

type Region struct {
	ID        string
	Name      string
	CountryID string
}

type City struct {
	ID        string
	Name      string
	RegionID  *string
	CountryID string
}

type Accommodation struct {
	ID              string
	Name            string
	Type            string
	CountryID       string
	RegionID        *string
	CityID          string
	Stars           *int
	PhotosCount     *int
	PopularityScore *float64
	BookingInfo     []byte // raw bookingInfo object
	DefaultPrice    *float64

	// denormalized from reviewCalculations
	LastReviewDate     *time.Time
	OverallRating      *float64
	OverallReviewCount *int
	AdjustedPrice      *float64
	AdjustedRating     *float64
}

type AccommodationFact struct {
	AccommodationID string
	Name            string
	Value           *string
	Group           string
}

type AccommodationFilter struct {
	AccommodationID string
	Category        string
	Value           string
}

// AccommodationReviewByGroup is the rating for one travel party
// (family, couple, ...).
type AccommodationReviewByGroup struct {
	AccommodationID string
	TravelGroup     string
	Rating          *float64
	ReviewCount     *int
}

type AccommodationReviewAspect struct {
	AccommodationID string
	Aspect          string
	Rating          *float64
	ReviewCount     *int
}
