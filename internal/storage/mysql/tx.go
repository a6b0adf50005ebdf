package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"zoover/internal/domain"
)

// WithinTx runs fn in a single transaction. The transaction is committed
// only when fn returns nil; every other path rolls back.
func (r *Repo) WithinTx(ctx context.Context, fn func(tx domain.ImportTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
	}()

	if err := fn(&txRepo{tx: tx}); err != nil {
		log.Error().Err(err).Msg("import failed, rolling back")
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

type txRepo struct{ tx *sql.Tx }

var _ domain.ImportTx = (*txRepo)(nil)

func (t *txRepo) UpsertCountry(ctx context.Context, c domain.Country) error {
	_, err := t.tx.ExecContext(ctx, upsertCountrySQL, c.ID, c.Name)
	return err
}

func (t *txRepo) UpsertRegion(ctx context.Context, r domain.Region) error {
	_, err := t.tx.ExecContext(ctx, upsertRegionSQL, r.ID, r.Name, r.CountryID)
	return err
}

func (t *txRepo) UpsertCity(ctx context.Context, c domain.City) error {
	_, err := t.tx.ExecContext(ctx, upsertCitySQL, c.ID, c.Name, valStr(c.RegionID), c.CountryID)
	return err
}

func (t *txRepo) UpsertAccommodation(ctx context.Context, a domain.Accommodation) error {
	_, err := t.tx.ExecContext(ctx, upsertAccommodationSQL,
		a.ID,
		a.Name,
		a.Type,
		a.CountryID,
		valStr(a.RegionID),
		a.CityID,
		valInt(a.Stars),
		valInt(a.PhotosCount),
		valF64(a.PopularityScore),
		valJSON(a.BookingInfo),
		valF64(a.DefaultPrice),
		valTime(a.LastReviewDate),
		valF64(a.OverallRating),
		valInt(a.OverallReviewCount),
		valF64(a.AdjustedPrice),
		valF64(a.AdjustedRating),
	)
	return err
}

func (t *txRepo) AccommodationExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, accommodationExistsSQL, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *txRepo) ReplaceFacts(ctx context.Context, accID string, fs []domain.AccommodationFact) error {
	args := make([]any, 0, len(fs)*4)
	for _, f := range fs {
		args = append(args, accID, f.Name, valStr(f.Value), f.Group)
	}
	return t.replace(ctx, deleteFactsSQL, accID, insertFactsPrefix, 4, args)
}

func (t *txRepo) ReplaceFilters(ctx context.Context, accID string, fs []domain.AccommodationFilter) error {
	args := make([]any, 0, len(fs)*3)
	for _, f := range fs {
		args = append(args, accID, f.Category, f.Value)
	}
	return t.replace(ctx, deleteFiltersSQL, accID, insertFiltersPrefix, 3, args)
}

func (t *txRepo) ReplaceReviewGroups(ctx context.Context, accID string, gs []domain.AccommodationReviewByGroup) error {
	args := make([]any, 0, len(gs)*4)
	for _, g := range gs {
		args = append(args, accID, g.TravelGroup, valF64(g.Rating), valInt(g.ReviewCount))
	}
	return t.replace(ctx, deleteReviewGroupsSQL, accID, insertReviewGroupsPrefix, 4, args)
}

func (t *txRepo) ReplaceReviewAspects(ctx context.Context, accID string, as []domain.AccommodationReviewAspect) error {
	args := make([]any, 0, len(as)*4)
	for _, a := range as {
		args = append(args, accID, a.Aspect, valF64(a.Rating), valInt(a.ReviewCount))
	}
	return t.replace(ctx, deleteReviewAspectsSQL, accID, insertReviewAspectsPrefix, 4, args)
}

func (t *txRepo) UpsertReview(ctx context.Context, rv domain.Review) error {
	_, err := t.tx.ExecContext(ctx, upsertReviewSQL,
		rv.ID,
		rv.AccommodationID,
		valStr(rv.Title),
		valStr(rv.UserName),
		valStr(rv.UserEmail),
		valStr(rv.UserIPAddress),
		valStr(rv.TravelParty),
		valStr(rv.TravelDate),
		valF64(rv.GeneralScore),
		valStr(rv.Status),
		valStr(rv.Text),
		valStr(rv.Locale),
		valStr(rv.Source),
		valInt64(rv.ZooverReviewID),
		rv.CreatedAt.UTC(),
		rv.UpdatedAt.UTC(),
	)
	return err
}

func (t *txRepo) ReplaceScoreAspects(ctx context.Context, reviewID string, as []domain.ReviewScoreAspect) error {
	args := make([]any, 0, len(as)*3)
	for _, a := range as {
		args = append(args, reviewID, a.Aspect, valF64(a.Score))
	}
	return t.replace(ctx, deleteScoreAspectsSQL, reviewID, insertScoreAspectsPrefix, 3, args)
}

// replace drops every child row of parentID and bulk-inserts the new set,
// so re-importing a record never duplicates children.
func (t *txRepo) replace(ctx context.Context, deleteSQL, parentID, insertPrefix string, width int, args []any) error {
	if _, err := t.tx.ExecContext(ctx, deleteSQL, parentID); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	group := "(" + strings.TrimSuffix(strings.Repeat("?,", width), ",") + ")"
	n := len(args) / width
	values := make([]string, n)
	for i := range values {
		values[i] = group
	}
	_, err := t.tx.ExecContext(ctx, insertPrefix+strings.Join(values, ","), args...)
	return err
}
