package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"autotrader/internal/httputil"
	"autotrader/internal/models"
)

const defaultSwapQuoteURL = "https://api.0x.org/swap/permit2/quote"

// defaultGasLimit is used when a quote omits the gas field.
const defaultGasLimit = "350000"

// ZeroXClient fetches unsigned swap transactions from the 0x Swap API v2
// (Permit2). Missing API key, non-success responses and responses without a
// usable transaction all yield a nil quote rather than a hard error, so
// decision intake can degrade softly.
type ZeroXClient struct {
	apiKey     string
	chainID    int64
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewZeroXClient(apiKey string, chainID int64) *ZeroXClient {
	return &ZeroXClient{
		apiKey:  apiKey,
		chainID: chainID,
		baseURL: defaultSwapQuoteURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// WithBaseURL overrides the quote endpoint (tests).
func (c *ZeroXClient) WithBaseURL(u string) *ZeroXClient {
	c.baseURL = u
	return c
}

type quoteResponse struct {
	Transaction *quoteTx `json:"transaction"`
	Tx          *quoteTx `json:"tx"` // older response shape
}

type quoteTx struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasLimit string `json:"gasLimit"`
}

// GetSwapQuote requests a quote for selling sellAmount (base units) of
// sellToken into buyToken. Returns (nil, nil) when no usable quote exists.
func (c *ZeroXClient) GetSwapQuote(ctx context.Context, sellToken, buyToken, sellAmount string) (*models.UnsignedTx, error) {
	if c.apiKey == "" {
		fmt.Println("[0X] No API key configured, cannot fetch quotes")
		return nil, nil
	}

	params := url.Values{}
	params.Set("chainId", strconv.FormatInt(c.chainID, 10))
	params.Set("sellToken", sellToken)
	params.Set("buyToken", buyToken)
	params.Set("sellAmount", sellAmount)
	reqURL := c.baseURL + "?" + params.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("0x-api-key", c.apiKey)
		req.Header.Set("0x-chain-id", strconv.FormatInt(c.chainID, 10))
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("0x quote fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("[0X] Quote failed with status %d\n", resp.StatusCode)
		return nil, nil
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("0x quote decode: %w", err)
	}

	tx := quote.Transaction
	if tx == nil {
		tx = quote.Tx
	}
	if tx == nil || tx.To == "" {
		fmt.Println("[0X] Quote response carried no transaction")
		return nil, nil
	}

	out := &models.UnsignedTx{
		To:    tx.To,
		Data:  tx.Data,
		Value: tx.Value,
		Gas:   tx.Gas,
	}
	if out.Data == "" {
		out.Data = "0x"
	}
	if out.Value == "" {
		out.Value = "0"
	}
	if out.Gas == "" {
		out.Gas = tx.GasLimit
	}
	if out.Gas == "" {
		out.Gas = defaultGasLimit
	}
	return out, nil
}
