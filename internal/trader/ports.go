package trader

import (
	"context"

	"autotrader/internal/models"
)

// Store ports. Implemented by internal/repository against Postgres and by
// in-memory fakes in tests. Point lookups return (nil, nil) when absent.

type DecisionStore interface {
	Create(ctx context.Context, d *models.TradeDecision) (*models.TradeDecision, error)
	Get(ctx context.Context, id int64) (*models.TradeDecision, error)
	UpdateStatus(ctx context.Context, id int64, status models.DecisionStatus) error
	List(ctx context.Context, limit int, statusFilter string) ([]models.TradeDecision, error)
	All(ctx context.Context) ([]models.TradeDecision, error)
	Stats(ctx context.Context) (*models.TradeStats, error)
	Upsert(ctx context.Context, d *models.TradeDecision) error
	SyncIDSequence(ctx context.Context) error
}

type ExecutionStore interface {
	Create(ctx context.Context, e *models.TradeExecution) (*models.TradeExecution, error)
	Get(ctx context.Context, id int64) (*models.TradeExecution, error)
	StoreSignedTx(ctx context.Context, id int64, signedHex string) error
	MarkBroadcasted(ctx context.Context, id int64, txHash string) error
	UpdateStatus(ctx context.Context, id int64, status models.ExecutionStatus) error
	MarkBroadcastFailed(ctx context.Context, id int64, errMsg string) error
	All(ctx context.Context) ([]models.TradeExecution, error)
	Upsert(ctx context.Context, e *models.TradeExecution) error
	SyncIDSequence(ctx context.Context) error
}

type HoldingStore interface {
	ApplyBuy(ctx context.Context, tokenAddress, tokenSymbol, txHash string) error
	Remove(ctx context.Context, tokenAddress string) error
	List(ctx context.Context) ([]models.HoldingsEntry, error)
	Upsert(ctx context.Context, h *models.HoldingsEntry) error
}

type ConfigStore interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Collaborator ports.

// QuoteClient obtains an unsigned swap transaction for a sell/buy pair.
// A nil tx without error means no usable quote was available.
type QuoteClient interface {
	GetSwapQuote(ctx context.Context, sellToken, buyToken, sellAmount string) (*models.UnsignedTx, error)
}

// ChainClient broadcasts signed payloads and polls for receipts.
// GetReceipt returns (nil, nil) while the transaction is still pending.
type ChainClient interface {
	BroadcastRaw(ctx context.Context, signedHex string) (string, error)
	GetReceipt(ctx context.Context, txHash string) (*models.TxReceipt, error)
}

// Notifier delivers events to the external decision-maker. Fire-and-forget:
// implementations log failures and never propagate them.
type Notifier interface {
	Notify(event string, data map[string]any)
}
