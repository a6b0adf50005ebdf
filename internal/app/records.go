package app

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

/********** feed record shapes **********/

// feedID accepts ids written either as JSON strings or numbers.
type feedID string

func (f *feedID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = feedID(strings.TrimSpace(s))
		return nil
	}
	// 1, 1.0 and 1e0 name the same record
	if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*f = feedID(strconv.FormatInt(i, 10))
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("id must be a string or number, got %s", b)
	}
	*f = feedID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// feedInt backs the INT columns. Fractional values are rounded half away
// from zero, the way MySQL coerces them, instead of failing the record.
type feedInt int64

func (n *feedInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = feedInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) >= math.MaxInt64 {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = feedInt(math.Round(f))
	return nil
}

func (n *feedInt) asInt() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

func (n *feedInt) asInt64() *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

type accommodationRecord struct {
	ID                 feedID             `json:"id" validate:"required"`
	Name               string             `json:"name" validate:"required"`
	Type               string             `json:"type" validate:"required"`
	Stars              *feedInt           `json:"stars"`
	PhotosCount        *feedInt           `json:"photosCount"`
	PopularityScore    *float64           `json:"popularityScore"`
	BookingInfo        json.RawMessage    `json:"bookingInfo"`
	ParentIDs          *parentIDs         `json:"parentIds" validate:"required"`
	Parents            []parentRecord     `json:"parents" validate:"dive"`
	Facts              []factRecord       `json:"facts" validate:"dive"`
	Filters            []filterRecord     `json:"filters" validate:"dive"`
	ReviewCalculations reviewCalculations `json:"reviewCalculations"`
}

type parentIDs struct {
	CountryID feedID `json:"countryId" validate:"required"`
	RegionID  feedID `json:"regionId"`
	CityID    feedID `json:"cityId" validate:"required"`
}

type parentRecord struct {
	ID              feedID `json:"id"`
	Name            string `json:"name"`
	DestinationType string `json:"destinationType"`
}

type factRecord struct {
	Name  string          `json:"name" validate:"required"`
	Group string          `json:"group" validate:"required"`
	Value json.RawMessage `json:"value"`
}

type filterRecord struct {
	Category string `json:"category" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

type bookingInfo struct {
	DefaultPrice *float64 `json:"defaultPrice"`
}

type ratingCount struct {
	Rating *float64 `json:"rating"`
	Count  *feedInt `json:"count"`
}

type adjustedCalc struct {
	Price  *float64 `json:"price"`
	Rating *float64 `json:"rating"`
}

type reviewCalculations struct {
	Overall         *ratingCount           `json:"overall"`
	Adjusted        *adjustedCalc          `json:"adjusted"`
	PerTraveledWith map[string]ratingCount `json:"perTraveledWith"`
	PerAspectGroup  map[string]ratingCount `json:"perAspectGroup"`
	LastReviewDate  json.RawMessage        `json:"lastReviewDate"`
}

type reviewRecord struct {
	ID              feedID          `json:"id" validate:"required"`
	AccommodationID feedID          `json:"accommodationId" validate:"required"`
	Title           *string         `json:"title"`
	UserName        *string         `json:"userName"`
	UserEmail       *string         `json:"userEmail"`
	UserIPAddress   *string         `json:"userIpAddress"`
	TravelParty     *string         `json:"travelParty"`
	TravelDate      *string         `json:"travelDate"`
	GeneralScore    *float64        `json:"generalScore"`
	Status          *string         `json:"status"`
	Text            *string         `json:"text"`
	Locale          *string         `json:"locale"`
	Source          *string         `json:"source"`
	ZooverReviewID  *feedInt        `json:"zooverReviewId"`
	CreatedAt       string          `json:"createdAt" validate:"required"`
	UpdatedAt       string          `json:"updatedAt" validate:"required"`
	ScoreAspects    json.RawMessage `json:"scoreAspects"`
}

/********** validation **********/

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report feed field names (parentIds.countryId), not Go names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeRecord unmarshals one feed element and checks its required fields.
func decodeRecord(kind string, index int, raw json.RawMessage, dst any, id func() string) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ImportDataError{Kind: kind, Index: index, Err: err}
	}
	if err := recordValidator().Struct(dst); err != nil {
		de := &ImportDataError{Kind: kind, Index: index, RecordID: id(), Err: err}
		if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
			de.Field = fieldPath(ves[0].Namespace())
			de.Err = errMissingField
			if ves[0].Tag() != "required" {
				de.Err = errInvalidField
			}
		}
		return de
	}
	return nil
}

// fieldPath drops the leading struct type from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// rawString renders a free-form JSON scalar as text: strings unquoted,
// everything else as its JSON literal.
func rawString(raw json.RawMessage) *string {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil
	}
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return &s
		}
	}
	s := string(t)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return &s
}
