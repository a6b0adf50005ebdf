package domain

import "time"

type Review struct {
	ID              string
	AccommodationID string
	Title           *string
	UserName        *string
	UserEmail       *string
	UserIPAddress   *string
	TravelParty     *string
	TravelDate      *string
	GeneralScore    *float64
	Status          *string
	Text            *string
	Locale          *string
	Source          *string
	ZooverReviewID  *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ReviewScoreAspect struct {
	ReviewID string
	Aspect   string
	Score    *float64
}
