package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autotrader/internal/models"
)

type DecisionRepo struct {
	pool *pgxpool.Pool
}

func NewDecisionRepo(pool *pgxpool.Pool) *DecisionRepo {
	return &DecisionRepo{pool: pool}
}

func (r *DecisionRepo) Create(ctx context.Context, d *models.TradeDecision) (*models.TradeDecision, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO trade_decisions (decision, token_address, token_symbol, reason, status)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING *`,
		d.Action, d.TokenAddress, d.TokenSymbol, d.Reason, d.Status,
	)
	return scanDecision(row)
}

// Get returns the decision, or nil when no row exists.
func (r *DecisionRepo) Get(ctx context.Context, id int64) (*models.TradeDecision, error) {
	row := r.pool.QueryRow(ctx, `SELECT * FROM trade_decisions WHERE id = $1`, id)
	d, err := scanDecision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DecisionRepo) UpdateStatus(ctx context.Context, id int64, status models.DecisionStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trade_decisions SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}

// List returns the most recent decisions, optionally filtered by status.
// An empty statusFilter (or "all") means no filter.
func (r *DecisionRepo) List(ctx context.Context, limit int, statusFilter string) ([]models.TradeDecision, error) {
	query := `SELECT * FROM trade_decisions`
	args := []any{}
	if statusFilter != "" && statusFilter != "all" {
		args = append(args, statusFilter)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecisions(rows)
}

// All returns every decision in id order, for export.
func (r *DecisionRepo) All(ctx context.Context) ([]models.TradeDecision, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM trade_decisions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecisions(rows)
}

func (r *DecisionRepo) Stats(ctx context.Context) (*models.TradeStats, error) {
	var s models.TradeStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(CASE WHEN decision = 'BUY' THEN 1 END),
			COUNT(CASE WHEN decision = 'SELL' THEN 1 END),
			COUNT(CASE WHEN decision = 'HOLD' THEN 1 END),
			COUNT(CASE WHEN status = 'executed' THEN 1 END),
			COUNT(CASE WHEN status IN ('failed','reverted','broadcast_failed','quote_failed') THEN 1 END)
		 FROM trade_decisions`,
	).Scan(&s.Total, &s.Buys, &s.Sells, &s.Holds, &s.Executed, &s.Failed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes a decision with an explicit id, for backup restore.
func (r *DecisionRepo) Upsert(ctx context.Context, d *models.TradeDecision) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trade_decisions (id, decision, token_address, token_symbol, reason, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   decision = EXCLUDED.decision,
		   token_address = EXCLUDED.token_address,
		   token_symbol = EXCLUDED.token_symbol,
		   reason = EXCLUDED.reason,
		   status = EXCLUDED.status,
		   created_at = EXCLUDED.created_at,
		   updated_at = EXCLUDED.updated_at`,
		d.ID, d.Action, d.TokenAddress, d.TokenSymbol, d.Reason, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// SyncIDSequence realigns the id sequence after explicit-id upserts.
func (r *DecisionRepo) SyncIDSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('trade_decisions','id'),
		        (SELECT COALESCE(MAX(id), 1) FROM trade_decisions))`,
	)
	return err
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDecision(row scannable) (*models.TradeDecision, error) {
	var d models.TradeDecision
	err := row.Scan(
		&d.ID, &d.Action, &d.TokenAddress, &d.TokenSymbol, &d.Reason,
		&d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDecisions(rows rowsIter) ([]models.TradeDecision, error) {
	var out []models.TradeDecision
	for rows.Next() {
		var d models.TradeDecision
		if err := rows.Scan(
			&d.ID, &d.Action, &d.TokenAddress, &d.TokenSymbol, &d.Reason,
			&d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
