package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zoover/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}
func f64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var (
	_ domain.ImportStore             = (*Repo)(nil)
	_ domain.AccommodationRepository = (*Repo)(nil)
)

func (r *Repo) ListAccommodations(ctx context.Context) ([]domain.AccommodationItem, error) {
	rows, err := r.db.QueryContext(ctx, listAccommodationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AccommodationItem{}
	for rows.Next() {
		var it domain.AccommodationItem
		var stars sql.NullInt64
		if err := rows.Scan(&it.ID, &it.Name, &stars, &it.CityID); err != nil {
			return nil, err
		}
		it.Stars = intPtr(stars)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetAccommodation(ctx context.Context, id string) (domain.AccommodationView, error) {
	row := r.db.QueryRowContext(ctx, getAccommodationSQL, id)

	var v domain.AccommodationView
	var stars, photos, reviewCount sql.NullInt64
	var regionID sql.NullString
	var popularity, defaultPrice, overall, adjRating, adjPrice sql.NullFloat64
	var lastReview sql.NullTime

	if err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Type,
		&stars,
		&v.CityID,
		&regionID,
		&v.CountryID,
		&popularity,
		&photos,
		&defaultPrice,
		&overall,
		&reviewCount,
		&adjRating,
		&adjPrice,
		&lastReview,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AccommodationView{}, domain.ErrNotFound
		}
		return domain.AccommodationView{}, err
	}

	v.Stars = intPtr(stars)
	v.RegionID = strPtr(regionID)
	v.PopularityScore = f64Ptr(popularity)
	v.PhotosCount = intPtr(photos)
	v.DefaultPrice = f64Ptr(defaultPrice)
	v.OverallRating = f64Ptr(overall)
	v.OverallReviewCount = intPtr(reviewCount)
	v.AdjustedRating = f64Ptr(adjRating)
	v.AdjustedPrice = f64Ptr(adjPrice)
	if lastReview.Valid {
		t := lastReview.Time.UTC()
		v.LastReviewDate = &t
	}
	return v, nil
}

func (r *Repo) ListReviews(ctx context.Context, accommodationID string) ([]domain.ReviewItem, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, accommodationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ReviewItem{}
	for rows.Next() {
		var it domain.ReviewItem
		var userName, text sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&it.ID, &userName, &score, &text); err != nil {
			return nil, err
		}
		it.UserName = strPtr(userName)
		it.GeneralScore = f64Ptr(score)
		it.Text = strPtr(text)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetReview(ctx context.Context, accommodationID, reviewID string) (domain.ReviewView, error) {
	row := r.db.QueryRowContext(ctx, getReviewSQL, accommodationID, reviewID)

	var v domain.ReviewView
	var title, userName, text, party, travelDate, locale sql.NullString
	var score sql.NullFloat64
	if err := row.Scan(
		&v.ID,
		&v.AccommodationID,
		&title,
		&userName,
		&score,
		&text,
		&party,
		&travelDate,
		&locale,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewView{}, domain.ErrNotFound
		}
		return domain.ReviewView{}, err
	}
	v.Title = strPtr(title)
	v.UserName = strPtr(userName)
	v.GeneralScore = f64Ptr(score)
	v.Text = strPtr(text)
	v.TravelParty = strPtr(party)
	v.TravelDate = strPtr(travelDate)
	v.Locale = strPtr(locale)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()

	aspects, err := r.scoreAspects(ctx, reviewID)
	if err != nil {
		return domain.ReviewView{}, err
	}
	v.ScoreAspects = aspects
	return v, nil
}

func (r *Repo) scoreAspects(ctx context.Context, reviewID string) (map[string]*float64, error) {
	rows, err := r.db.QueryContext(ctx, listScoreAspectsSQL, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]*float64{}
	for rows.Next() {
		var aspect string
		var score sql.NullFloat64
		if err := rows.Scan(&aspect, &score); err != nil {
			return nil, err
		}
		out[aspect] = f64Ptr(score)
	}
	return out, rows.Err()
}
