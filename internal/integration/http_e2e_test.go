//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"zoover/internal/adapters/feed"
	server "zoover/internal/adapters/http_server"
	"zoover/internal/adapters/observability"
	"zoover/internal/app"
	"zoover/internal/domain"
	mysqlrepo "zoover/internal/storage/mysql"
)

const accommodationsJSON = `[
  {
    "id": 7001, "name": "Strandhotel", "type": "HOTEL", "stars": 3,
    "parentIds": {"countryId": "NL", "cityId": "ZVT"},
    "parents": [{"id": "ZVT", "name": "Zandvoort", "destinationType": "CITY"}],
    "reviewCalculations": {"overall": {"rating": 7.9, "count": 2}, "lastReviewDate": 1700000000000}
  },
  {
    "id": 7002, "name": "Lonely Lodge", "type": "LODGE",
    "parentIds": {"countryId": "NL", "cityId": "ZVT"}
  }
]`

const reviewsJSON = `[
  {"id": "e1", "accommodationId": 7001, "userName": "kim", "generalScore": 8.0, "text": "Nice",
   "createdAt": "2023-11-14T22:13:20Z", "updatedAt": "2023-11-14T22:13:20Z",
   "scoreAspects": "{\"beach\": 9}"},
  {"id": "e2", "accommodationId": 9999, "createdAt": "2023-11-14", "updatedAt": "2023-11-14"}
]`

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=zoover"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/zoover?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeFeed(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if dst != nil && res.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, dst); err != nil {
			t.Fatalf("decode %s: %v (%s)", url, err, body)
		}
	}
	return res.StatusCode
}

func TestHTTP_EndToEnd_ImportThenQuery(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// feeds go through the same loader the importer uses
	dir := t.TempDir()
	loader := feed.New(0, 10*time.Second)
	accRecs, err := loader.Load(ctx, writeFeed(t, dir, "accommodations.json", accommodationsJSON))
	if err != nil {
		t.Fatalf("load accommodations: %v", err)
	}
	revRecs, err := loader.Load(ctx, writeFeed(t, dir, "reviews.json", reviewsJSON))
	if err != nil {
		t.Fatalf("load reviews: %v", err)
	}

	repo := mysqlrepo.New(db)
	svc := app.NewImportService(repo)
	if _, err := svc.ImportAccommodations(ctx, accRecs); err != nil {
		t.Fatalf("ImportAccommodations: %v", err)
	}
	res, err := svc.ImportReviews(ctx, revRecs)
	if err != nil {
		t.Fatalf("ImportReviews: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("want 1 skipped review, got %+v", res)
	}

	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(repo)})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var list []domain.AccommodationItem
	if code := getJSON(t, ts.URL+"/accommodations", &list); code != http.StatusOK || len(list) != 2 {
		t.Fatalf("list: %d %+v", code, list)
	}

	var acc domain.AccommodationView
	if code := getJSON(t, ts.URL+"/accommodations/7001", &acc); code != http.StatusOK {
		t.Fatalf("get accommodation: %d", code)
	}
	want := time.UnixMilli(1700000000000).UTC()
	if acc.LastReviewDate == nil || !acc.LastReviewDate.Equal(want) {
		t.Fatalf("last_review_date: want %v, got %v", want, acc.LastReviewDate)
	}

	if code := getJSON(t, ts.URL+"/accommodations/404404", nil); code != http.StatusNotFound {
		t.Fatalf("missing accommodation: %d", code)
	}

	var none []domain.ReviewItem
	if code := getJSON(t, ts.URL+"/accommodations/7002/reviews", &none); code != http.StatusOK || none == nil || len(none) != 0 {
		t.Fatalf("reviews of 7002: %d %#v", code, none)
	}

	var rv domain.ReviewView
	if code := getJSON(t, ts.URL+"/accommodations/7001/reviews/e1", &rv); code != http.StatusOK {
		t.Fatalf("get review: %d", code)
	}
	if rv.ScoreAspects["beach"] == nil || *rv.ScoreAspects["beach"] != 9 {
		t.Fatalf("score aspects: %+v", rv.ScoreAspects)
	}

	if code := getJSON(t, ts.URL+"/metrics", nil); code != http.StatusOK {
		t.Fatalf("metrics: %d", code)
	}
}
