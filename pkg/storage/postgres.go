package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/zipfinder/pkg/common/jsoncompat"
	"github.com/matst80/zipfinder/pkg/index"
	"github.com/matst80/zipfinder/pkg/postal"
)

const (
	createRecordTable = `CREATE TABLE IF NOT EXISTS zip_records(
		city_key text NOT NULL,
		position integer NOT NULL,
		zip_code text NOT NULL,
		record json NOT NULL,
		PRIMARY KEY (city_key, position)
	);`

	selectBucket = `SELECT record FROM zip_records WHERE city_key = $1 ORDER BY position`
)

// PostgresStore keeps the city index in a Postgres table so it survives
// restarts and can be shared between instances.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and makes sure the table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	// Lookups run one statement over and over.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 16
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createRecordTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create zip_records: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

var recordColumns = []string{"city_key", "position", "zip_code", "record"}

// recordRows turns idx into zip_records rows. position is the index of the
// record inside its bucket, so ordering by it restores dataset order.
func recordRows(idx *index.CityIndex) ([][]any, error) {
	rows := make([][]any, 0, idx.Len())
	for key, bucket := range idx.Buckets() {
		for i, rec := range bucket {
			data, err := jsoncompat.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", rec.ZipCode, err)
			}
			rows = append(rows, []any{key, i, rec.ZipCode, string(data)})
		}
	}
	return rows, nil
}

// Publish replaces the table content with idx in a single transaction.
func (s *PostgresStore) Publish(ctx context.Context, idx *index.CityIndex) error {
	rows, err := recordRows(idx)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM zip_records"); err != nil {
		return fmt.Errorf("clear zip_records: %w", err)
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"zip_records"},
		recordColumns,
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy zip_records: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Bucket(ctx context.Context, key string) ([]postal.Record, bool, error) {
	rows, err := s.pool.Query(ctx, selectBucket, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var values [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, false, err
		}
		values = append(values, data)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return decodeBucket(key, values)
}

func decodeBucket(key string, values [][]byte) ([]postal.Record, bool, error) {
	if len(values) == 0 {
		return nil, false, nil
	}
	records := make([]postal.Record, len(values))
	for i, data := range values {
		if err := jsoncompat.Unmarshal(data, &records[i]); err != nil {
			return nil, false, fmt.Errorf("decode record for %q: %w", key, err)
		}
	}
	return records, true, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
