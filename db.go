package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const (
	seriesSent           = "sent"
	seriesUniqueContacts = "unique_contacts"
)

var schemaPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type DBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Init    bool   `mapstructure:"init"`
	URL     string `mapstructure:"url"`
	Schema  string `mapstructure:"schema"`
	Tag     string `mapstructure:"tag"`
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	if !schemaPattern.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func openDB(ctx context.Context, cfg DBConfig) (*sql.DB, string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, "", err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", err
	}
	if err := ensureSchema(ctx, db, schema); err != nil {
		db.Close()
		return nil, "", err
	}
	return db, schema, nil
}

// seedDatabase stores the report only when no run has been recorded yet.
// It returns an empty run id when the seed was skipped.
func seedDatabase(report Report, cfg DBConfig) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	db, schema, err := openDB(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.summary_runs`, schema)).Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		log.Info().Int("runs", count).Msg("summary data already present; skipping seed")
		return "", nil
	}

	return storeReportTx(ctx, db, report, schema, cfg.Tag)
}

func storeReportInDB(report Report, cfg DBConfig) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	db, schema, err := openDB(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	return storeReportTx(ctx, db, report, schema, cfg.Tag)
}

func storeReportTx(ctx context.Context, db *sql.DB, report Report, schema string, tag string) (string, error) {
	runID := uuid.New()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.summary_runs (
			id, top_n, raw_rows, duplicate_rows, incomplete_rows,
			reserved_sender_rows, clean_events, contact_facts, distinct_people,
			first_month, last_month, run_tag
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12
		)`, schema),
		runID,
		report.Summary.TopN,
		report.Summary.RawRows,
		report.Summary.DuplicateRows,
		report.Summary.IncompleteRows,
		report.Summary.ReservedRows,
		report.Summary.CleanEvents,
		report.Summary.ContactFacts,
		report.Summary.DistinctPeople,
		nullMonth(report.MonthlySent.Months, 0),
		nullMonth(report.MonthlySent.Months, len(report.MonthlySent.Months)-1),
		nullString(tag),
	)
	if err != nil {
		return "", err
	}

	insertPersonSQL := fmt.Sprintf(`
		INSERT INTO %s.summary_person_counts (
			id, run_id, rank, person, sent, received
		) VALUES (
			$1,$2,$3,$4,$5,$6
		)`, schema)

	for i, entry := range report.People {
		_, err = tx.ExecContext(ctx, insertPersonSQL,
			uuid.New(),
			runID,
			i+1,
			entry.Person,
			entry.Sent,
			entry.Received,
		)
		if err != nil {
			return "", err
		}
	}

	insertMonthlySQL := fmt.Sprintf(`
		INSERT INTO %s.summary_monthly_counts (
			id, run_id, series, month_end, person, count
		) VALUES (
			$1,$2,$3,$4,$5,$6
		)`, schema)

	series := []struct {
		name  string
		table MonthlyTable
	}{
		{seriesSent, report.MonthlySent},
		{seriesUniqueContacts, report.UniqueContacts},
	}
	for _, s := range series {
		for i, month := range s.table.Months {
			for j, person := range s.table.People {
				_, err = tx.ExecContext(ctx, insertMonthlySQL,
					uuid.New(),
					runID,
					s.name,
					month.End(),
					person,
					s.table.Counts[i][j],
				)
				if err != nil {
					return "", err
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return runID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.summary_runs (
			id uuid PRIMARY KEY,
			top_n integer NOT NULL,
			raw_rows integer NOT NULL,
			duplicate_rows integer NOT NULL,
			incomplete_rows integer NOT NULL,
			reserved_sender_rows integer NOT NULL,
			clean_events integer NOT NULL,
			contact_facts integer NOT NULL,
			distinct_people integer NOT NULL,
			first_month date,
			last_month date,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.summary_person_counts (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.summary_runs(id) ON DELETE CASCADE,
			rank integer NOT NULL,
			person text NOT NULL,
			sent integer NOT NULL,
			received integer NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.summary_monthly_counts (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.summary_runs(id) ON DELETE CASCADE,
			series text NOT NULL,
			month_end date NOT NULL,
			person text NOT NULL,
			count integer NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_summary_person_counts_run_idx ON %s.summary_person_counts (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_summary_monthly_counts_run_idx ON %s.summary_monthly_counts (run_id, series)`, schema, schema))
	return err
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullMonth(months []Month, idx int) sql.NullTime {
	if idx < 0 || idx >= len(months) {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: months[idx].End(), Valid: true}
}
