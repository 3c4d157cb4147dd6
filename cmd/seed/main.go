package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healthfinder/backend/internal/infrastructure/clients/postgres"
	"github.com/healthfinder/backend/internal/infrastructure/observability"
	"github.com/healthfinder/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS clinics (
	id TEXT PRIMARY KEY,
	region TEXT NOT NULL,
	clinic_operation TEXT NOT NULL,
	clinic_type TEXT NOT NULL,
	clinic_name TEXT NOT NULL,
	address TEXT NOT NULL,
	open_hours TEXT NOT NULL DEFAULT '',
	drop_in TEXT NOT NULL DEFAULT '',
	review_count INTEGER NOT NULL DEFAULT 0,
	average_rating NUMERIC(2,1) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	clinic_id TEXT NOT NULL REFERENCES clinics (id),
	review TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	name TEXT NOT NULL,
	title TEXT NOT NULL,
	review_date TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS reviews_clinic_id_idx ON reviews (clinic_id, review_date DESC);
`

// seedClinic mirrors one record of the static dataset file.
type seedClinic struct {
	Region          string `json:"region"`
	ClinicOperation string `json:"clinic_operation"`
	ClinicType      string `json:"clinic_type"`
	ClinicName      string `json:"clinic_name"`
	Address         string `json:"address"`
	OpenHours       string `json:"open_hours"`
	DropIn          string `json:"drop_in"`
}

func main() {
	reset := flag.Bool("reset", false, "truncate clinics and reviews before seeding")
	dataset := flag.String("dataset", "", "path to the clinic dataset (defaults to SEED_DATASET)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Server.Env)
	logger := observability.GetLogger()

	path := *dataset
	if path == "" {
		path = cfg.Seed.DatasetPath
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		logger.Fatal().Err(err).Msg("failed to create schema")
	}

	if *reset {
		logger.Info().Msg("reset requested, truncating clinics and reviews")
		if _, err := pgClient.DB().ExecContext(ctx, "TRUNCATE TABLE reviews, clinics"); err != nil {
			logger.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("failed to read dataset")
	}

	var clinics []seedClinic
	if err := json.Unmarshal(data, &clinics); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse dataset")
	}

	db := goqu.New("postgres", pgClient.DB())
	now := time.Now().UTC()

	inserted := 0
	for _, clinic := range clinics {
		record := goqu.Record{
			"id":               uuid.New().String(),
			"region":           clinic.Region,
			"clinic_operation": clinic.ClinicOperation,
			"clinic_type":      clinic.ClinicType,
			"clinic_name":      clinic.ClinicName,
			"address":          clinic.Address,
			"open_hours":       clinic.OpenHours,
			"drop_in":          clinic.DropIn,
			"created_at":       now,
			"updated_at":       now,
		}

		query, args, err := db.Insert("clinics").Rows(record).ToSQL()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build insert query")
		}

		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			logger.Fatal().Err(err).Str("clinic", clinic.ClinicName).Msg("failed to insert clinic")
		}
		inserted++
	}

	logger.Info().Int("clinics", inserted).Str("dataset", path).Msg("seeding complete")
}
