package app

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"zoover/internal/adapters/observability"
	"zoover/internal/domain"
)

const (
	kindAccommodation = "accommodation"
	kindReview        = "review"
)

// ImportResult summarizes one committed batch.
type ImportResult struct {
	Imported int
	Skipped  int
	Gaps     []ReferentialGap
	Duration time.Duration
}

type ImportService struct {
	store domain.ImportStore
}

func NewImportService(s domain.ImportStore) *ImportService {
	return &ImportService{store: s}
}

// ImportAccommodations merges every record in one transaction. Any bad
// record or database error rolls the whole batch back.
func (s *ImportService) ImportAccommodations(ctx context.Context, records []json.RawMessage) (ImportResult, error) {
	start := time.Now()
	var res ImportResult

	err := s.store.WithinTx(ctx, func(tx domain.ImportTx) error {
		for i, raw := range records {
			var rec accommodationRecord
			if err := decodeRecord(kindAccommodation, i, raw, &rec, func() string { return string(rec.ID) }); err != nil {
				return err
			}
			if err := s.importAccommodation(ctx, tx, rec); err != nil {
				return withRecord(err, kindAccommodation, i, string(rec.ID))
			}
			res.Imported++
		}
		return nil
	})
	res.Duration = time.Since(start)
	observability.ObserveImportBatch(kindAccommodation, err, res.Duration)
	if err != nil {
		return ImportResult{Duration: res.Duration}, err
	}

	observability.ObserveImportRecords(kindAccommodation, "imported", res.Imported)
	log.Info().
		Int("imported", res.Imported).
		Dur("took", res.Duration).
		Msg("accommodations and review calculations imported")
	return res, nil
}

func (s *ImportService) importAccommodation(ctx context.Context, tx domain.ImportTx, rec accommodationRecord) error {
	loc := mapLocation(rec)

	// Parents first to satisfy the accommodation FKs.
	if err := tx.UpsertCountry(ctx, loc.Country); err != nil {
		return err
	}
	if loc.Region != nil {
		if err := tx.UpsertRegion(ctx, *loc.Region); err != nil {
			return err
		}
	}
	if err := tx.UpsertCity(ctx, loc.City); err != nil {
		return err
	}

	rows, err := mapAccommodation(rec, loc)
	if err != nil {
		return err
	}
	id := rows.Accommodation.ID
	if err := tx.UpsertAccommodation(ctx, rows.Accommodation); err != nil {
		return err
	}
	if err := tx.ReplaceFacts(ctx, id, rows.Facts); err != nil {
		return err
	}
	if err := tx.ReplaceFilters(ctx, id, rows.Filters); err != nil {
		return err
	}
	if err := tx.ReplaceReviewGroups(ctx, id, rows.Groups); err != nil {
		return err
	}
	return tx.ReplaceReviewAspects(ctx, id, rows.Aspects)
}

// ImportReviews merges every review in one transaction. Reviews whose
// accommodation is unknown are skipped and reported in the result.
func (s *ImportService) ImportReviews(ctx context.Context, records []json.RawMessage) (ImportResult, error) {
	start := time.Now()
	var res ImportResult

	err := s.store.WithinTx(ctx, func(tx domain.ImportTx) error {
		for i, raw := range records {
			var rec reviewRecord
			if err := decodeRecord(kindReview, i, raw, &rec, func() string { return string(rec.ID) }); err != nil {
				return err
			}

			ok, err := tx.AccommodationExists(ctx, string(rec.AccommodationID))
			if err != nil {
				return err
			}
			if !ok {
				gap := ReferentialGap{ReviewID: string(rec.ID), AccommodationID: string(rec.AccommodationID)}
				log.Warn().
					Str("review_id", gap.ReviewID).
					Str("accommodation_id", gap.AccommodationID).
					Msg("accommodation not found for review, skipping")
				res.Skipped++
				res.Gaps = append(res.Gaps, gap)
				continue
			}

			rv, aspects, err := mapReview(rec)
			if err != nil {
				return withRecord(err, kindReview, i, string(rec.ID))
			}
			if err := tx.UpsertReview(ctx, rv); err != nil {
				return err
			}
			if err := tx.ReplaceScoreAspects(ctx, rv.ID, aspects); err != nil {
				return err
			}
			res.Imported++
		}
		return nil
	})
	res.Duration = time.Since(start)
	observability.ObserveImportBatch(kindReview, err, res.Duration)
	if err != nil {
		return ImportResult{Duration: res.Duration}, err
	}

	observability.ObserveImportRecords(kindReview, "imported", res.Imported)
	observability.ObserveImportRecords(kindReview, "skipped", res.Skipped)
	log.Info().
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Dur("took", res.Duration).
		Msg("reviews imported")
	return res, nil
}

// withRecord fills the record position into mapping errors; database
// errors pass through untouched.
func withRecord(err error, kind string, index int, id string) error {
	var de *ImportDataError
	if errors.As(err, &de) {
		de.Kind, de.Index, de.RecordID = kind, index, id
	}
	return err
}
