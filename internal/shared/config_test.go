package shared_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"zoover/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(shared.ConfigPathEnvVar, "")
	t.Setenv("HTTP_ADDR", "")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":8080" || c.FeedRPS != 5 || c.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	yml := "http_addr: \":9000\"\nreviews_feed: /srv/reviews.json\nfeed_timeout: 5s\n"
	if err := os.WriteFile(p, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(shared.ConfigPathEnvVar, p)
	t.Setenv("HTTP_ADDR", ":9100")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":9100" {
		t.Fatalf("env should win over file, got %s", c.HTTPAddr)
	}
	if c.ReviewsFeed != "/srv/reviews.json" {
		t.Fatalf("file value not applied: %s", c.ReviewsFeed)
	}
	if c.FeedTimeout != 5*time.Second {
		t.Fatalf("duration not parsed: %v", c.FeedTimeout)
	}
}
