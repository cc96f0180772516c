package trader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"autotrader/internal/models"
)

// Hook events delivered to the external decision-maker.
const (
	EventPulse  = "auto_trader_pulse"
	EventSignTx = "auto_trader_sign_tx"
)

// usdPerETH is a fixed conversion rate used to size trades in wei from the
// configured max_trade_usd. An explicit approximation, not a live oracle:
// $20 at $3300/ETH is roughly 0.006 ETH.
const usdPerETH = 3300

const (
	DefaultMaxTradeUSD   = "20"
	DefaultPulseInterval = 240

	defaultPollAttempts = 12
	defaultPollDelay    = 5 * time.Second
	defaultListLimit    = 20
	maxListLimit        = 1000
)

// Options tunes the coordinator. Zero values fall back to defaults.
type Options struct {
	ChainID      int64
	WETHAddress  string // fallback when weth_address is missing from config
	PollAttempts int
	PollDelay    time.Duration
}

// Coordinator owns the trade lifecycle: decision intake, quote construction,
// signing handoff, broadcast, confirmation polling and ledger settlement.
// Each execution is driven by a single goroutine from signing onward, so
// writes within one lifecycle are strictly sequential.
type Coordinator struct {
	decisions DecisionStore
	execs     ExecutionStore
	holdings  HoldingStore
	config    ConfigStore
	quotes    QuoteClient
	chain     ChainClient
	notify    Notifier
	opts      Options
}

func New(
	decisions DecisionStore,
	execs ExecutionStore,
	holdings HoldingStore,
	config ConfigStore,
	quotes QuoteClient,
	chain ChainClient,
	notify Notifier,
	opts Options,
) *Coordinator {
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = defaultPollAttempts
	}
	if opts.PollDelay <= 0 {
		opts.PollDelay = defaultPollDelay
	}
	return &Coordinator{
		decisions: decisions,
		execs:     execs,
		holdings:  holdings,
		config:    config,
		quotes:    quotes,
		chain:     chain,
		notify:    notify,
		opts:      opts,
	}
}

// DecisionResult is the synchronous outcome of SubmitDecision.
type DecisionResult struct {
	DecisionID  int64                 `json:"decision_id"`
	Action      models.Action         `json:"decision"`
	TokenSymbol string                `json:"token_symbol"`
	Status      models.DecisionStatus `json:"status"`
	ExecutionID *int64                `json:"tx_id,omitempty"`
	UnsignedTx  *models.UnsignedTx    `json:"tx,omitempty"`
	Warning     string                `json:"warning,omitempty"`
}

// SubmitDecision persists a decision and, for BUY/SELL, constructs the swap
// transaction and hands it to the signer via the sign-tx hook. Intake always
// succeeds once the row is persisted; a failed quote degrades to the
// quote_failed status and a warning, never an error.
func (c *Coordinator) SubmitDecision(ctx context.Context, action models.Action, tokenAddress, tokenSymbol, reason string) (*DecisionResult, error) {
	if !action.Valid() {
		return nil, invalidInputf("decision must be BUY, SELL, or HOLD")
	}

	status := models.DecisionPending
	if action == models.ActionHold {
		status = models.DecisionLogged
	}

	d, err := c.decisions.Create(ctx, &models.TradeDecision{
		Action:       action,
		TokenAddress: tokenAddress,
		TokenSymbol:  tokenSymbol,
		Reason:       reason,
		Status:       status,
	})
	if err != nil {
		return nil, storagef("create decision", err)
	}

	result := &DecisionResult{
		DecisionID:  d.ID,
		Action:      d.Action,
		TokenSymbol: d.TokenSymbol,
		Status:      d.Status,
	}
	if action == models.ActionHold {
		return result, nil
	}

	tx, err := c.constructSwapTx(ctx, action, tokenAddress)
	if err != nil || tx == nil {
		if err != nil {
			fmt.Printf("[TRADER] Quote failed for decision %d: %v\n", d.ID, err)
		}
		if uerr := c.decisions.UpdateStatus(ctx, d.ID, models.DecisionQuoteFailed); uerr != nil {
			return nil, storagef("mark quote_failed", uerr)
		}
		result.Status = models.DecisionQuoteFailed
		result.Warning = "failed to get swap quote"
		return result, nil
	}

	exec, err := c.execs.Create(ctx, &models.TradeExecution{
		DecisionID: d.ID,
		RawTxTo:    tx.To,
		RawTxData:  tx.Data,
		RawTxValue: tx.Value,
		RawTxGas:   tx.Gas,
		Status:     models.ExecutionUnsigned,
	})
	if err != nil {
		return nil, storagef("create execution", err)
	}
	if err := c.decisions.UpdateStatus(ctx, d.ID, models.DecisionTxConstructed); err != nil {
		return nil, storagef("mark tx_constructed", err)
	}

	result.Status = models.DecisionTxConstructed
	result.ExecutionID = &exec.ID
	result.UnsignedTx = tx

	c.notify.Notify(EventSignTx, map[string]any{
		"tx_id":        exec.ID,
		"decision_id":  d.ID,
		"decision":     string(action),
		"token_symbol": tokenSymbol,
		"to":           tx.To,
		"data":         tx.Data,
		"value":        tx.Value,
		"gas":          tx.Gas,
		"chain_id":     c.opts.ChainID,
	})

	return result, nil
}

// constructSwapTx asks the quote service for an unsigned swap.
// BUY sells WETH for the token; SELL sells the token for WETH.
func (c *Coordinator) constructSwapTx(ctx context.Context, action models.Action, tokenAddress string) (*models.UnsignedTx, error) {
	amountWei, err := c.tradeAmountWei(ctx)
	if err != nil {
		return nil, err
	}

	weth, err := c.config.Get(ctx, "weth_address", c.opts.WETHAddress)
	if err != nil {
		return nil, err
	}

	switch action {
	case models.ActionBuy:
		return c.quotes.GetSwapQuote(ctx, weth, tokenAddress, amountWei)
	case models.ActionSell:
		return c.quotes.GetSwapQuote(ctx, tokenAddress, weth, amountWei)
	}
	return nil, nil
}

// tradeAmountWei converts max_trade_usd to wei at the fixed rate.
func (c *Coordinator) tradeAmountWei(ctx context.Context) (string, error) {
	raw, err := c.config.Get(ctx, "max_trade_usd", DefaultMaxTradeUSD)
	if err != nil {
		return "", err
	}
	usd, err := decimal.NewFromString(raw)
	if err != nil || usd.Sign() <= 0 {
		usd = decimal.RequireFromString(DefaultMaxTradeUSD)
	}
	wei := usd.Shift(18).Div(decimal.NewFromInt(usdPerETH)).Floor()
	return wei.String(), nil
}

// SignResult is the synchronous outcome of SubmitSignedTx. Broadcasting and
// confirmation continue in the background; progress is visible only through
// decision/execution status queries.
type SignResult struct {
	ExecutionID int64  `json:"tx_id"`
	Status      string `json:"status"`
}

// SubmitSignedTx stores the signed payload and starts the async
// broadcast-then-poll task for the execution.
func (c *Coordinator) SubmitSignedTx(ctx context.Context, executionID int64, signedHex string) (*SignResult, error) {
	if executionID <= 0 {
		return nil, invalidInputf("tx_id is required")
	}
	if !validSignedPayload(signedHex) {
		return nil, invalidInputf("signed_tx must be a 0x-prefixed hex string")
	}

	exec, err := c.execs.Get(ctx, executionID)
	if err != nil {
		return nil, storagef("get execution", err)
	}
	if exec == nil {
		return nil, notFoundf("no execution with tx_id=%d", executionID)
	}
	if !exec.Status.CanTransition(models.ExecutionSigned) {
		return nil, invalidInputf("execution %d is %s; signed payload may be submitted only once", executionID, exec.Status)
	}

	if err := c.execs.StoreSignedTx(ctx, executionID, signedHex); err != nil {
		return nil, storagef("store signed tx", err)
	}

	go c.broadcastAndConfirm(executionID, exec.DecisionID, signedHex)

	return &SignResult{ExecutionID: executionID, Status: "broadcasting"}, nil
}

// validSignedPayload accepts a non-empty 0x-prefixed hex blob.
func validSignedPayload(s string) bool {
	if len(s) <= 2 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hexutil.Decode(s)
	return err == nil
}

// broadcastAndConfirm owns the execution row from broadcast onward. It runs
// detached from the submitting request: failures land in row statuses and
// logs, never in a caller.
func (c *Coordinator) broadcastAndConfirm(executionID, decisionID int64, signedHex string) {
	ctx := context.Background()

	txHash, err := c.chain.BroadcastRaw(ctx, signedHex)
	if err != nil || txHash == "" {
		detail := "RPC error"
		if err != nil {
			detail = err.Error()
		}
		fmt.Printf("[TRADER] Broadcast failed for tx_id=%d: %s\n", executionID, detail)
		if serr := c.execs.MarkBroadcastFailed(ctx, executionID, detail); serr != nil {
			fmt.Printf("[TRADER] Failed to mark broadcast_failed for tx_id=%d: %v\n", executionID, serr)
		}
		if serr := c.decisions.UpdateStatus(ctx, decisionID, models.DecisionFailed); serr != nil {
			fmt.Printf("[TRADER] Failed to mark decision %d failed: %v\n", decisionID, serr)
		}
		return
	}

	if err := c.execs.MarkBroadcasted(ctx, executionID, txHash); err != nil {
		fmt.Printf("[TRADER] Failed to record broadcast for tx_id=%d: %v\n", executionID, err)
		return
	}
	if err := c.decisions.UpdateStatus(ctx, decisionID, models.DecisionBroadcasted); err != nil {
		fmt.Printf("[TRADER] Failed to mark decision %d broadcasted: %v\n", decisionID, err)
	}
	fmt.Printf("[TRADER] Broadcasted tx_id=%d hash=%s\n", executionID, txHash)

	receipt := c.pollReceipt(ctx, txHash)
	if receipt == nil {
		// Known limitation: the row stays at broadcasted and needs manual
		// reconciliation; no automatic re-poll.
		fmt.Printf("[TRADER] Receipt timeout for tx_id=%d hash=%s\n", executionID, txHash)
		return
	}

	final := models.ExecutionExecuted
	finalDecision := models.DecisionExecuted
	if !receipt.Success() {
		final = models.ExecutionReverted
		finalDecision = models.DecisionReverted
	}

	if err := c.execs.UpdateStatus(ctx, executionID, final); err != nil {
		fmt.Printf("[TRADER] Failed to finalize tx_id=%d: %v\n", executionID, err)
		return
	}
	if err := c.decisions.UpdateStatus(ctx, decisionID, finalDecision); err != nil {
		fmt.Printf("[TRADER] Failed to finalize decision %d: %v\n", decisionID, err)
	}
	fmt.Printf("[TRADER] tx_id=%d confirmed: %s\n", executionID, final)

	if final == models.ExecutionExecuted {
		c.settle(ctx, decisionID, txHash)
	}
}

// pollReceipt polls with a bounded attempt budget and fixed delay.
// Returns nil when the budget is exhausted.
func (c *Coordinator) pollReceipt(ctx context.Context, txHash string) *models.TxReceipt {
	for attempt := 0; attempt < c.opts.PollAttempts; attempt++ {
		receipt, err := c.chain.GetReceipt(ctx, txHash)
		if err != nil {
			fmt.Printf("[TRADER] Receipt poll error for %s: %v\n", txHash, err)
		} else if receipt != nil {
			return receipt
		}
		time.Sleep(c.opts.PollDelay)
	}
	return nil
}

// settle applies a confirmed trade to the holdings ledger. BUY increments
// the position by one unit; SELL is a full exit and removes the row.
// Position count, not on-chain balance.
func (c *Coordinator) settle(ctx context.Context, decisionID int64, txHash string) {
	d, err := c.decisions.Get(ctx, decisionID)
	if err != nil || d == nil {
		fmt.Printf("[TRADER] Settlement skipped, decision %d unavailable: %v\n", decisionID, err)
		return
	}

	switch d.Action {
	case models.ActionBuy:
		if err := c.holdings.ApplyBuy(ctx, d.TokenAddress, d.TokenSymbol, txHash); err != nil {
			fmt.Printf("[TRADER] Holdings update failed for %s: %v\n", d.TokenSymbol, err)
		}
	case models.ActionSell:
		if err := c.holdings.Remove(ctx, d.TokenAddress); err != nil {
			fmt.Printf("[TRADER] Holdings removal failed for %s: %v\n", d.TokenSymbol, err)
		}
	}
}

// --- queries ---

func (c *Coordinator) ListDecisions(ctx context.Context, limit int, statusFilter string) ([]models.TradeDecision, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	out, err := c.decisions.List(ctx, limit, statusFilter)
	if err != nil {
		return nil, storagef("list decisions", err)
	}
	return out, nil
}

func (c *Coordinator) GetStats(ctx context.Context) (*models.TradeStats, error) {
	s, err := c.decisions.Stats(ctx)
	if err != nil {
		return nil, storagef("stats", err)
	}
	return s, nil
}

func (c *Coordinator) ListHoldings(ctx context.Context) ([]models.HoldingsEntry, error) {
	out, err := c.holdings.List(ctx)
	if err != nil {
		return nil, storagef("list holdings", err)
	}
	return out, nil
}

func (c *Coordinator) GetConfig(ctx context.Context) (map[string]string, error) {
	out, err := c.config.All(ctx)
	if err != nil {
		return nil, storagef("get config", err)
	}
	return out, nil
}

// allowedConfigKeys is the closed set of runtime trading settings.
var allowedConfigKeys = map[string]struct{}{
	"pulse_interval": {},
	"max_trade_usd":  {},
	"chain":          {},
	"enabled":        {},
	"weth_address":   {},
}

// SetConfig validates the key against the fixed set and the value against
// the key's expected shape before persisting.
func (c *Coordinator) SetConfig(ctx context.Context, key, value string) error {
	if _, ok := allowedConfigKeys[key]; !ok {
		return invalidInputf("unknown config key: %s", key)
	}
	if err := validateConfigValue(key, value); err != nil {
		return err
	}
	if err := c.config.Set(ctx, key, value); err != nil {
		return storagef("set config", err)
	}
	return nil
}

func validateConfigValue(key, value string) error {
	switch key {
	case "pulse_interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return invalidInputf("pulse_interval must be a positive integer (seconds)")
		}
	case "max_trade_usd":
		d, err := decimal.NewFromString(value)
		if err != nil || d.Sign() <= 0 {
			return invalidInputf("max_trade_usd must be a positive decimal amount")
		}
	case "enabled":
		switch strings.ToLower(value) {
		case "true", "false":
		default:
			return invalidInputf("enabled must be true or false")
		}
	case "weth_address":
		if !common.IsHexAddress(value) {
			return invalidInputf("weth_address must be a hex address")
		}
	}
	return nil
}
