package models

import "time"

// HoldingsEntry is the tracked position for one token. AmountRaw counts
// position units as a string-encoded integer; it is not an on-chain balance.
// A row exists only while the position is open; a full exit deletes it.
type HoldingsEntry struct {
	TokenAddress string    `json:"token_address"`
	TokenSymbol  string    `json:"token_symbol"`
	AmountRaw    string    `json:"amount_raw"`
	AvgBuyPrice  *float64  `json:"avg_buy_price,omitempty"`
	LastTxHash   *string   `json:"last_tx_hash,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
