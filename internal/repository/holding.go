package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"autotrader/internal/models"
)

type HoldingRepo struct {
	pool *pgxpool.Pool
}

func NewHoldingRepo(pool *pgxpool.Pool) *HoldingRepo {
	return &HoldingRepo{pool: pool}
}

// ApplyBuy upserts the position for a token, incrementing the unit count by
// one and recording the settling tx hash.
func (r *HoldingRepo) ApplyBuy(ctx context.Context, tokenAddress, tokenSymbol, txHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio (token_address, token_symbol, amount_raw, last_tx_hash, updated_at)
		 VALUES ($1, $2, '1', $3, NOW())
		 ON CONFLICT (token_address) DO UPDATE SET
		   amount_raw = (portfolio.amount_raw::BIGINT + 1)::TEXT,
		   last_tx_hash = EXCLUDED.last_tx_hash,
		   updated_at = NOW()`,
		tokenAddress, tokenSymbol, txHash,
	)
	return err
}

// Remove deletes the position outright. A settled SELL is a full exit;
// zero-amount rows never linger.
func (r *HoldingRepo) Remove(ctx context.Context, tokenAddress string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM portfolio WHERE token_address = $1`, tokenAddress)
	return err
}

func (r *HoldingRepo) List(ctx context.Context) ([]models.HoldingsEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM portfolio ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HoldingsEntry
	for rows.Next() {
		var h models.HoldingsEntry
		if err := rows.Scan(
			&h.TokenAddress, &h.TokenSymbol, &h.AmountRaw,
			&h.AvgBuyPrice, &h.LastTxHash, &h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Upsert writes a full holdings row, for backup restore.
func (r *HoldingRepo) Upsert(ctx context.Context, h *models.HoldingsEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio (token_address, token_symbol, amount_raw, avg_buy_price, last_tx_hash, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (token_address) DO UPDATE SET
		   token_symbol = EXCLUDED.token_symbol,
		   amount_raw = EXCLUDED.amount_raw,
		   avg_buy_price = EXCLUDED.avg_buy_price,
		   last_tx_hash = EXCLUDED.last_tx_hash,
		   updated_at = EXCLUDED.updated_at`,
		h.TokenAddress, h.TokenSymbol, h.AmountRaw, h.AvgBuyPrice, h.LastTxHash, h.UpdatedAt,
	)
	return err
}
