package app

import (
	"context"

	"zoover/internal/domain"
)

// QueryService is the read side; it never mutates state.
type QueryService struct {
	repo domain.AccommodationRepository
}

func NewQueryService(r domain.AccommodationRepository) *QueryService {
	return &QueryService{repo: r}
}

func (s *QueryService) ListAccommodations(ctx context.Context) ([]domain.AccommodationItem, error) {
	items, err := s.repo.ListAccommodations(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.AccommodationItem{}
	}
	return items, nil
}

func (s *QueryService) GetAccommodation(ctx context.Context, id string) (domain.AccommodationView, error) {
	return s.repo.GetAccommodation(ctx, id)
}

// ListReviews returns an empty slice, not an error, when the accommodation
// has no reviews (or does not exist).
func (s *QueryService) ListReviews(ctx context.Context, accommodationID string) ([]domain.ReviewItem, error) {
	items, err := s.repo.ListReviews(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ReviewItem{}
	}
	return items, nil
}

func (s *QueryService) GetReview(ctx context.Context, accommodationID, reviewID string) (domain.ReviewView, error) {
	v, err := s.repo.GetReview(ctx, accommodationID, reviewID)
	if err != nil {
		return domain.ReviewView{}, err
	}
	if v.ScoreAspects == nil {
		v.ScoreAspects = map[string]*float64{}
	}
	return v, nil
}
