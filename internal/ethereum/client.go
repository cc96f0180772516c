package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"autotrader/internal/models"
)

// Client talks JSON-RPC to the chain node. Signing happens outside this
// process; the client only broadcasts pre-signed payloads and polls for
// their receipts.
type Client struct {
	rpc *rpc.Client
}

func Dial(rpcURL string) (*Client, error) {
	c, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	return &Client{rpc: c}, nil
}

func (c *Client) Close() { c.rpc.Close() }

// BroadcastRaw submits a signed transaction hex blob via
// eth_sendRawTransaction and returns the resulting tx hash.
func (c *Client) BroadcastRaw(ctx context.Context, signedHex string) (string, error) {
	var txHash string
	if err := c.rpc.CallContext(ctx, &txHash, "eth_sendRawTransaction", signedHex); err != nil {
		return "", fmt.Errorf("send raw tx: %w", err)
	}
	return txHash, nil
}

// rawReceipt is the subset of eth_getTransactionReceipt this service needs.
// Decoding into our own struct keeps us off the full go-ethereum receipt
// type, which rejects the trimmed responses some providers return.
type rawReceipt struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
	BlockNumber     string `json:"blockNumber"`
}

// GetReceipt fetches the receipt for a broadcast transaction. Returns
// (nil, nil) while the transaction is still pending.
func (c *Client) GetReceipt(ctx context.Context, txHash string) (*models.TxReceipt, error) {
	var raw *rawReceipt
	if err := c.rpc.CallContext(ctx, &raw, "eth_getTransactionReceipt", txHash); err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	status, err := hexutil.DecodeUint64(raw.Status)
	if err != nil {
		return nil, fmt.Errorf("decode receipt status %q: %w", raw.Status, err)
	}
	var block uint64
	if raw.BlockNumber != "" {
		if block, err = hexutil.DecodeUint64(raw.BlockNumber); err != nil {
			return nil, fmt.Errorf("decode block number %q: %w", raw.BlockNumber, err)
		}
	}

	return &models.TxReceipt{
		TxHash:      raw.TransactionHash,
		Status:      status,
		BlockNumber: block,
	}, nil
}
