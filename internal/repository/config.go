package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConfigRepo struct {
	pool *pgxpool.Pool
}

func NewConfigRepo(pool *pgxpool.Pool) *ConfigRepo {
	return &ConfigRepo{pool: pool}
}

// Get returns the value for key, or fallback when the key is absent.
func (r *ConfigRepo) Get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM trader_config WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *ConfigRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM trader_config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *ConfigRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trader_config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	return err
}

// Seed inserts defaults for any keys not already present.
func (r *ConfigRepo) Seed(ctx context.Context, defaults map[string]string) error {
	for k, v := range defaults {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO trader_config (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`,
			k, v,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
