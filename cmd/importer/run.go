package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"zoover/internal/adapters/feed"
	"zoover/internal/adapters/observability"
	"zoover/internal/app"
	"zoover/internal/shared"
	mysqlrepo "zoover/internal/storage/mysql"
)

type importFlags struct {
	accommodations string
	reviews        string
	metricsAddr    string
	skipMigrate    bool
}

var flags importFlags

func bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flags.accommodations, "accommodations", "", "accommodation feed (path or URL); defaults to ACCOMMODATIONS_FEED")
	f.StringVar(&flags.reviews, "reviews", "", "review feed (path or URL); defaults to REVIEWS_FEED")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "expose /metrics on this address while importing")
	f.BoolVar(&flags.skipMigrate, "skip-migrate", false, "do not apply the embedded schema")
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := shared.Load()
	if err != nil {
		return err
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if flags.accommodations != "" {
		cfg.AccommodationsFeed = flags.accommodations
	}
	if flags.reviews != "" {
		cfg.ReviewsFeed = flags.reviews
	}
	if flags.metricsAddr != "" {
		cfg.MetricsAddr = flags.metricsAddr
	}
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags.skipMigrate); err != nil {
		log.Error().Err(err).Msg("import failed")
		return err
	}
	return nil
}

func run(ctx context.Context, cfg shared.Config, skipMigrate bool) error {
	log.Info().
		Str("accommodations", cfg.AccommodationsFeed).
		Str("reviews", cfg.ReviewsFeed).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("db ping ok")

	if !skipMigrate {
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// Both feeds are fetched up front so a bad review feed fails the run
	// before anything is written.
	loader := feed.New(cfg.FeedRPS, cfg.FeedTimeout)
	var accRecs, revRecs []json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accRecs, err = loader.Load(gctx, cfg.AccommodationsFeed)
		if err != nil {
			return fmt.Errorf("accommodation feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		revRecs, err = loader.Load(gctx, cfg.ReviewsFeed)
		if err != nil {
			return fmt.Errorf("review feed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	svc := app.NewImportService(mysqlrepo.New(db))

	accRes, err := svc.ImportAccommodations(ctx, accRecs)
	if err != nil {
		return err
	}
	revRes, err := svc.ImportReviews(ctx, revRecs)
	if err != nil {
		return err
	}

	log.Info().
		Int("accommodations", accRes.Imported).
		Int("reviews", revRes.Imported).
		Int("reviews_skipped", len(revRes.Gaps)).
		Dur("took", accRes.Duration+revRes.Duration).
		Msg("import completed")
	return nil
}
