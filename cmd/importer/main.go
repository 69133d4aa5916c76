package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/directory"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mongostore "hotel_booking/internal/storage/mongo"
	mysqlstore "hotel_booking/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ids := flag.String("ids", "", "comma separated property ids (defaults to IMPORT_PROPERTY_IDS)")
	workers := flag.Int("workers", cfg.ImportWorkers, "concurrent directory requests")
	rps := flag.Int("rps", 5, "directory requests per second")
	flag.Parse()

	if *ids != "" {
		parsed, err := shared.ParseIDs(*ids)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -ids")
		}
		cfg.ImportIDs = parsed
	}
	if len(cfg.ImportIDs) == 0 {
		log.Fatal().Msg("no property ids given; set IMPORT_PROPERTY_IDS or -ids")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.DirectoryBase).
		Str("store", cfg.Store).
		Int("workers", *workers).
		Int("properties", len(cfg.ImportIDs)).
		Msg("importer starting")

	hotels, closeStore := openHotels(ctx, cfg)
	defer closeStore()

	client, err := directory.New(cfg.DirectoryBase, cfg.DirectoryKey, *rps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize directory client")
	}

	// bookings are never touched by an import
	svc := app.NewHotelService(hotels, nil, cfg.PageMaxLimit)
	imp := app.NewImportService(client, hotels, svc)

	sum, err := imp.ImportAll(ctx, cfg.ImportIDs, *workers)
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	for outcome, n := range sum {
		ev = ev.Int(string(outcome), n)
	}
	ev.Msg("import completed")
}

func openHotels(ctx context.Context, cfg shared.Config) (domain.HotelRepository, func()) {
	if cfg.Store == shared.StoreMongo {
		cl, err := mongostore.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		db, err := cl.DB(cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo database")
		}
		repo := mongostore.New(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo indexes")
		}
		return repo, func() { _ = cl.Close(context.Background()) }
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")
	return mysqlstore.New(db), func() { db.Close() }
}
