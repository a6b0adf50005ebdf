package app

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"zoover/internal/domain"
)

const unknownName = "Unknown"

// destination types used in parents[]
const (
	destCountry = "COUNTRY"
	destRegion  = "REGION"
	destCity    = "CITY"
)

/********** tiny helpers **********/

// parentName finds the display name for id among parents[] of the given
// destination type, or "Unknown".
func parentName(parents []parentRecord, id feedID, destType string) string {
	for _, p := range parents {
		if p.ID == id && strings.EqualFold(p.DestinationType, destType) && p.Name != "" {
			return p.Name
		}
	}
	return unknownName
}

// sortedKeys keeps child-row order stable across runs.
func sortedKeys(m map[string]ratingCount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/********** location **********/

type location struct {
	Country domain.Country
	Region  *domain.Region
	City    domain.City
}

func mapLocation(rec accommodationRecord) location {
	ids := rec.ParentIDs
	loc := location{
		Country: domain.Country{
			ID:   string(ids.CountryID),
			Name: parentName(rec.Parents, ids.CountryID, destCountry),
		},
		City: domain.City{
			ID:        string(ids.CityID),
			Name:      parentName(rec.Parents, ids.CityID, destCity),
			CountryID: string(ids.CountryID),
		},
	}
	if ids.RegionID != "" {
		loc.Region = &domain.Region{
			ID:        string(ids.RegionID),
			Name:      parentName(rec.Parents, ids.RegionID, destRegion),
			CountryID: string(ids.CountryID),
		}
		loc.City.RegionID = &loc.Region.ID
	}
	return loc
}

/********** accommodation mapper **********/

type accommodationRows struct {
	Accommodation domain.Accommodation
	Facts         []domain.AccommodationFact
	Filters       []domain.AccommodationFilter
	Groups        []domain.AccommodationReviewByGroup
	Aspects       []domain.AccommodationReviewAspect
}

func mapAccommodation(rec accommodationRecord, loc location) (accommodationRows, error) {
	id := string(rec.ID)
	calc := rec.ReviewCalculations

	a := domain.Accommodation{
		ID:              id,
		Name:            rec.Name,
		Type:            rec.Type,
		CountryID:       loc.Country.ID,
		CityID:          loc.City.ID,
		Stars:           rec.Stars.asInt(),
		PhotosCount:     rec.PhotosCount.asInt(),
		PopularityScore: rec.PopularityScore,
	}
	if loc.Region != nil {
		a.RegionID = &loc.Region.ID
	}

	if bi := bytes.TrimSpace(rec.BookingInfo); len(bi) > 0 && !bytes.Equal(bi, []byte("null")) {
		var info bookingInfo
		if err := json.Unmarshal(bi, &info); err != nil {
			return accommodationRows{}, fieldError("bookingInfo", err)
		}
		a.BookingInfo = append([]byte(nil), bi...)
		a.DefaultPrice = info.DefaultPrice
	}

	last, err := parseLastReviewDate(calc.LastReviewDate)
	if err != nil {
		return accommodationRows{}, fieldError("reviewCalculations.lastReviewDate", err)
	}
	a.LastReviewDate = last
	if calc.Overall != nil {
		a.OverallRating = calc.Overall.Rating
		a.OverallReviewCount = calc.Overall.Count.asInt()
	}
	if calc.Adjusted != nil {
		a.AdjustedPrice = calc.Adjusted.Price
		a.AdjustedRating = calc.Adjusted.Rating
	}

	out := accommodationRows{Accommodation: a}
	for _, f := range rec.Facts {
		out.Facts = append(out.Facts, domain.AccommodationFact{
			AccommodationID: id,
			Name:            f.Name,
			Value:           factValue(f.Value),
			Group:           f.Group,
		})
	}
	for _, f := range rec.Filters {
		out.Filters = append(out.Filters, domain.AccommodationFilter{
			AccommodationID: id,
			Category:        f.Category,
			Value:           f.Value,
		})
	}
	for _, k := range sortedKeys(calc.PerTraveledWith) {
		v := calc.PerTraveledWith[k]
		out.Groups = append(out.Groups, domain.AccommodationReviewByGroup{
			AccommodationID: id,
			TravelGroup:     k,
			Rating:          v.Rating,
			ReviewCount:     v.Count.asInt(),
		})
	}
	for _, k := range sortedKeys(calc.PerAspectGroup) {
		v := calc.PerAspectGroup[k]
		out.Aspects = append(out.Aspects, domain.AccommodationReviewAspect{
			AccommodationID: id,
			Aspect:          k,
			Rating:          v.Rating,
			ReviewCount:     v.Count.asInt(),
		})
	}
	return out, nil
}

// factValue: a missing value is stored as "N/A", an explicit null as NULL.
func factValue(raw json.RawMessage) *string {
	if len(bytes.TrimSpace(raw)) == 0 {
		na := "N/A"
		return &na
	}
	return rawString(raw)
}

// parseLastReviewDate takes a millisecond epoch (0 means "never") or an
// ISO-8601 string.
func parseLastReviewDate(raw json.RawMessage) (*time.Time, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil, nil
	}
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		ts, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		return &ts, nil
	}
	ms, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return nil, fmt.Errorf("not an epoch value: %s", t)
	}
	if ms == 0 {
		return nil, nil
	}
	ts := time.UnixMilli(int64(math.Round(ms))).UTC()
	return &ts, nil
}

/********** review mapper **********/

func mapReview(rec reviewRecord) (domain.Review, []domain.ReviewScoreAspect, error) {
	created, err := parseTimestamp(rec.CreatedAt)
	if err != nil {
		return domain.Review{}, nil, fieldError("createdAt", err)
	}
	updated, err := parseTimestamp(rec.UpdatedAt)
	if err != nil {
		return domain.Review{}, nil, fieldError("updatedAt", err)
	}
	scores, err := parseScoreAspects(rec.ScoreAspects)
	if err != nil {
		return domain.Review{}, nil, fieldError("scoreAspects", err)
	}

	rv := domain.Review{
		ID:              string(rec.ID),
		AccommodationID: string(rec.AccommodationID),
		Title:           rec.Title,
		UserName:        rec.UserName,
		UserEmail:       rec.UserEmail,
		UserIPAddress:   rec.UserIPAddress,
		TravelParty:     rec.TravelParty,
		TravelDate:      rec.TravelDate,
		GeneralScore:    rec.GeneralScore,
		Status:          rec.Status,
		Text:            rec.Text,
		Locale:          rec.Locale,
		Source:          rec.Source,
		ZooverReviewID:  rec.ZooverReviewID.asInt64(),
		CreatedAt:       created,
		UpdatedAt:       updated,
	}

	aspects := make([]string, 0, len(scores))
	for k := range scores {
		aspects = append(aspects, k)
	}
	sort.Strings(aspects)
	out := make([]domain.ReviewScoreAspect, 0, len(aspects))
	for _, k := range aspects {
		out = append(out, domain.ReviewScoreAspect{ReviewID: rv.ID, Aspect: k, Score: scores[k]})
	}
	return rv, out, nil
}

// parseScoreAspects decodes scoreAspects, which the feed ships as a JSON
// object serialized into a string. A bare object is accepted as well.
func parseScoreAspects(raw json.RawMessage) (map[string]*float64, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil, nil
	}
	if t[0] == '"' {
		var inner string
		if err := json.Unmarshal(t, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return nil, nil
		}
		t = []byte(inner)
	}
	var out map[string]*float64
	if err := json.Unmarshal(t, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp parses ISO-8601; values without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", s)
}

// fieldError tags a mapping failure with the offending feed field; the
// caller fills in kind, index and id.
func fieldError(field string, err error) *ImportDataError {
	return &ImportDataError{Field: field, Err: err}
}
