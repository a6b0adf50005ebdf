package mysql

// -----------------------------------------------------------------------------
// IMPORT (write) STATEMENTS
// -----------------------------------------------------------------------------

// Geography rows only ever change their display name on re-import.
const upsertCountrySQL = `
INSERT INTO countries (id, name)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`

const upsertRegionSQL = `
INSERT INTO regions (id, name, country_id)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`

const upsertCitySQL = `
INSERT INTO cities (id, name, region_id, country_id)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE name = VALUES(name)
`

// ON DUPLICATE KEY instead of REPLACE: REPLACE deletes the row first and the
// FK cascade would wipe the accommodation's reviews.
const upsertAccommodationSQL = `
INSERT INTO accommodations
  (id, name, type, country_id, region_id, city_id, stars, photos_count,
   popularity_score, booking_info, default_price, last_review_date,
   overall_rating, overall_review_count, adjusted_price, adjusted_rating)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                 = VALUES(name),
  type                 = VALUES(type),
  country_id           = VALUES(country_id),
  region_id            = VALUES(region_id),
  city_id              = VALUES(city_id),
  stars                = VALUES(stars),
  photos_count         = VALUES(photos_count),
  popularity_score     = VALUES(popularity_score),
  booking_info         = VALUES(booking_info),
  default_price        = VALUES(default_price),
  last_review_date     = VALUES(last_review_date),
  overall_rating       = VALUES(overall_rating),
  overall_review_count = VALUES(overall_review_count),
  adjusted_price       = VALUES(adjusted_price),
  adjusted_rating      = VALUES(adjusted_rating),
  updated_at           = CURRENT_TIMESTAMP
`

const accommodationExistsSQL = `SELECT 1 FROM accommodations WHERE id = ?`

const (
	deleteFactsSQL         = `DELETE FROM accommodation_facts WHERE accommodation_id = ?`
	deleteFiltersSQL       = `DELETE FROM accommodation_filters WHERE accommodation_id = ?`
	deleteReviewGroupsSQL  = `DELETE FROM accommodation_review_by_group WHERE accommodation_id = ?`
	deleteReviewAspectsSQL = `DELETE FROM accommodation_review_aspects WHERE accommodation_id = ?`
	deleteScoreAspectsSQL  = `DELETE FROM review_score_aspects WHERE review_id = ?`
)

// Multi-row INSERT prefixes; the repo appends one "(?,...)" group per row.
const (
	insertFactsPrefix         = "INSERT INTO accommodation_facts (accommodation_id, fact_name, fact_value, fact_group) VALUES "
	insertFiltersPrefix       = "INSERT INTO accommodation_filters (accommodation_id, category, value) VALUES "
	insertReviewGroupsPrefix  = "INSERT INTO accommodation_review_by_group (accommodation_id, travel_group, rating, review_count) VALUES "
	insertReviewAspectsPrefix = "INSERT INTO accommodation_review_aspects (accommodation_id, aspect, rating, review_count) VALUES "
	insertScoreAspectsPrefix  = "INSERT INTO review_score_aspects (review_id, aspect, score) VALUES "
)

// Note: `text` is reserved; keep it quoted everywhere.
const upsertReviewSQL = "INSERT INTO reviews\n" +
	"  (id, accommodation_id, title, user_name, user_email, user_ip_address, travel_party,\n" +
	"   travel_date, general_score, status, `text`, locale, source, zoover_review_id, created_at, updated_at)\n" +
	"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)\n" +
	"ON DUPLICATE KEY UPDATE\n" +
	"  accommodation_id = VALUES(accommodation_id),\n" +
	"  title            = VALUES(title),\n" +
	"  user_name        = VALUES(user_name),\n" +
	"  user_email       = VALUES(user_email),\n" +
	"  user_ip_address  = VALUES(user_ip_address),\n" +
	"  travel_party     = VALUES(travel_party),\n" +
	"  travel_date      = VALUES(travel_date),\n" +
	"  general_score    = VALUES(general_score),\n" +
	"  status           = VALUES(status),\n" +
	"  `text`           = VALUES(`text`),\n" +
	"  locale           = VALUES(locale),\n" +
	"  source           = VALUES(source),\n" +
	"  zoover_review_id = VALUES(zoover_review_id),\n" +
	"  created_at       = VALUES(created_at),\n" +
	"  updated_at       = VALUES(updated_at)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listAccommodationsSQL = `
SELECT id, name, stars, city_id
FROM accommodations
ORDER BY id
`

const getAccommodationSQL = `
SELECT
  id,
  name,
  type,
  stars,
  city_id,
  region_id,
  country_id,
  popularity_score,
  photos_count,
  default_price,
  overall_rating,
  overall_review_count,
  adjusted_rating,
  adjusted_price,
  last_review_date
FROM accommodations
WHERE id = ?
`

const listReviewsSQL = "SELECT id, user_name, general_score, `text`\n" +
	"FROM reviews\n" +
	"WHERE accommodation_id = ?\n" +
	"ORDER BY id"

const getReviewSQL = "SELECT\n" +
	"  id, accommodation_id, title, user_name, general_score, `text`,\n" +
	"  travel_party, travel_date, locale, created_at, updated_at\n" +
	"FROM reviews\n" +
	"WHERE accommodation_id = ? AND id = ?"

const listScoreAspectsSQL = `
SELECT aspect, score
FROM review_score_aspects
WHERE review_id = ?
`
