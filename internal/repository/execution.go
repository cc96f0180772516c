package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autotrader/internal/models"
)

type ExecutionRepo struct {
	pool *pgxpool.Pool
}

func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

func (r *ExecutionRepo) Create(ctx context.Context, e *models.TradeExecution) (*models.TradeExecution, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO trade_executions (decision_id, raw_tx_to, raw_tx_data, raw_tx_value, raw_tx_gas, status)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING *`,
		e.DecisionID, e.RawTxTo, e.RawTxData, e.RawTxValue, e.RawTxGas, e.Status,
	)
	return scanExecution(row)
}

// Get returns the execution, or nil when no row exists.
func (r *ExecutionRepo) Get(ctx context.Context, id int64) (*models.TradeExecution, error) {
	row := r.pool.QueryRow(ctx, `SELECT * FROM trade_executions WHERE id = $1`, id)
	e, err := scanExecution(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// StoreSignedTx records the signed payload and advances the row to signed.
func (r *ExecutionRepo) StoreSignedTx(ctx context.Context, id int64, signedHex string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trade_executions SET signed_tx = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		signedHex, models.ExecutionSigned, id,
	)
	return err
}

// MarkBroadcasted records the tx hash and advances the row to broadcasted.
func (r *ExecutionRepo) MarkBroadcasted(ctx context.Context, id int64, txHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trade_executions SET tx_hash = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		txHash, models.ExecutionBroadcasted, id,
	)
	return err
}

func (r *ExecutionRepo) UpdateStatus(ctx context.Context, id int64, status models.ExecutionStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trade_executions SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}

func (r *ExecutionRepo) MarkBroadcastFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE trade_executions SET status = $1, error_msg = $2, updated_at = NOW() WHERE id = $3`,
		models.ExecutionBroadcastFailed, errMsg, id,
	)
	return err
}

// All returns every execution in id order, for export.
func (r *ExecutionRepo) All(ctx context.Context) ([]models.TradeExecution, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM trade_executions ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExecutions(rows)
}

// Upsert writes an execution with an explicit id, for backup restore.
func (r *ExecutionRepo) Upsert(ctx context.Context, e *models.TradeExecution) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO trade_executions
		 (id, decision_id, raw_tx_to, raw_tx_data, raw_tx_value, raw_tx_gas,
		  signed_tx, tx_hash, status, error_msg, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET
		   decision_id = EXCLUDED.decision_id,
		   raw_tx_to = EXCLUDED.raw_tx_to,
		   raw_tx_data = EXCLUDED.raw_tx_data,
		   raw_tx_value = EXCLUDED.raw_tx_value,
		   raw_tx_gas = EXCLUDED.raw_tx_gas,
		   signed_tx = EXCLUDED.signed_tx,
		   tx_hash = EXCLUDED.tx_hash,
		   status = EXCLUDED.status,
		   error_msg = EXCLUDED.error_msg,
		   created_at = EXCLUDED.created_at,
		   updated_at = EXCLUDED.updated_at`,
		e.ID, e.DecisionID, e.RawTxTo, e.RawTxData, e.RawTxValue, e.RawTxGas,
		e.SignedTx, e.TxHash, e.Status, e.ErrorMsg, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// SyncIDSequence realigns the id sequence after explicit-id upserts.
func (r *ExecutionRepo) SyncIDSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('trade_executions','id'),
		        (SELECT COALESCE(MAX(id), 1) FROM trade_executions))`,
	)
	return err
}

// --- scan helpers ---

func scanExecution(row scannable) (*models.TradeExecution, error) {
	var e models.TradeExecution
	err := row.Scan(
		&e.ID, &e.DecisionID, &e.RawTxTo, &e.RawTxData, &e.RawTxValue, &e.RawTxGas,
		&e.SignedTx, &e.TxHash, &e.Status, &e.ErrorMsg, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectExecutions(rows rowsIter) ([]models.TradeExecution, error) {
	var out []models.TradeExecution
	for rows.Next() {
		var e models.TradeExecution
		if err := rows.Scan(
			&e.ID, &e.DecisionID, &e.RawTxTo, &e.RawTxData, &e.RawTxValue, &e.RawTxGas,
			&e.SignedTx, &e.TxHash, &e.Status, &e.ErrorMsg, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
