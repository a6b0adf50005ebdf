package app_test

import (
	"context"
	"errors"
	"maps"

	"zoover/internal/domain"
)

// memState is everything an import can write.
type memState struct {
	countries      map[string]domain.Country
	regions        map[string]domain.Region
	cities         map[string]domain.City
	accommodations map[string]domain.Accommodation
	facts          map[string][]domain.AccommodationFact
	filters        map[string][]domain.AccommodationFilter
	groups         map[string][]domain.AccommodationReviewByGroup
	aspects        map[string][]domain.AccommodationReviewAspect
	reviews        map[string]domain.Review
	scores         map[string][]domain.ReviewScoreAspect
}

func newMemState() memState {
	return memState{
		countries:      map[string]domain.Country{},
		regions:        map[string]domain.Region{},
		cities:         map[string]domain.City{},
		accommodations: map[string]domain.Accommodation{},
		facts:          map[string][]domain.AccommodationFact{},
		filters:        map[string][]domain.AccommodationFilter{},
		groups:         map[string][]domain.AccommodationReviewByGroup{},
		aspects:        map[string][]domain.AccommodationReviewAspect{},
		reviews:        map[string]domain.Review{},
		scores:         map[string][]domain.ReviewScoreAspect{},
	}
}

func (s memState) clone() memState {
	return memState{
		countries:      maps.Clone(s.countries),
		regions:        maps.Clone(s.regions),
		cities:         maps.Clone(s.cities),
		accommodations: maps.Clone(s.accommodations),
		facts:          maps.Clone(s.facts),
		filters:        maps.Clone(s.filters),
		groups:         maps.Clone(s.groups),
		aspects:        maps.Clone(s.aspects),
		reviews:        maps.Clone(s.reviews),
		scores:         maps.Clone(s.scores),
	}
}

// memStore is an in-memory ImportStore. Each WithinTx works on a copy
// that only replaces the committed state when fn succeeds.
type memStore struct {
	state   memState
	commits int
	// failReview makes UpsertReview fail for this id.
	failReview string
}

func newMemStore() *memStore { return &memStore{state: newMemState()} }

var errInjected = errors.New("injected failure")

func (m *memStore) WithinTx(ctx context.Context, fn func(tx domain.ImportTx) error) error {
	tx := &memTx{st: m.state.clone(), failReview: m.failReview}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.st
	m.commits++
	return nil
}

type memTx struct {
	st         memState
	failReview string
}

func (t *memTx) UpsertCountry(ctx context.Context, c domain.Country) error {
	t.st.countries[c.ID] = c
	return nil
}

func (t *memTx) UpsertRegion(ctx context.Context, r domain.Region) error {
	if _, ok := t.st.countries[r.CountryID]; !ok {
		return errors.New("fk: region country missing")
	}
	t.st.regions[r.ID] = r
	return nil
}

func (t *memTx) UpsertCity(ctx context.Context, c domain.City) error {
	if _, ok := t.st.countries[c.CountryID]; !ok {
		return errors.New("fk: city country missing")
	}
	t.st.cities[c.ID] = c
	return nil
}

func (t *memTx) UpsertAccommodation(ctx context.Context, a domain.Accommodation) error {
	if _, ok := t.st.cities[a.CityID]; !ok {
		return errors.New("fk: accommodation city missing")
	}
	t.st.accommodations[a.ID] = a
	return nil
}

func (t *memTx) AccommodationExists(ctx context.Context, id string) (bool, error) {
	_, ok := t.st.accommodations[id]
	return ok, nil
}

func (t *memTx) ReplaceFacts(ctx context.Context, id string, fs []domain.AccommodationFact) error {
	t.st.facts[id] = fs
	return nil
}

func (t *memTx) ReplaceFilters(ctx context.Context, id string, fs []domain.AccommodationFilter) error {
	t.st.filters[id] = fs
	return nil
}

func (t *memTx) ReplaceReviewGroups(ctx context.Context, id string, gs []domain.AccommodationReviewByGroup) error {
	t.st.groups[id] = gs
	return nil
}

func (t *memTx) ReplaceReviewAspects(ctx context.Context, id string, as []domain.AccommodationReviewAspect) error {
	t.st.aspects[id] = as
	return nil
}

func (t *memTx) UpsertReview(ctx context.Context, r domain.Review) error {
	if r.ID == t.failReview {
		return errInjected
	}
	t.st.reviews[r.ID] = r
	return nil
}

func (t *memTx) ReplaceScoreAspects(ctx context.Context, reviewID string, as []domain.ReviewScoreAspect) error {
	t.st.scores[reviewID] = as
	return nil
}
