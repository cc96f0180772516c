package trader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"autotrader/internal/models"
)

// In-memory store fakes. They mirror the repository contracts, including
// (nil, nil) point lookups for absent rows.

type memDecisions struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.TradeDecision
}

func newMemDecisions() *memDecisions {
	return &memDecisions{rows: map[int64]*models.TradeDecision{}}
}

func (m *memDecisions) Create(_ context.Context, d *models.TradeDecision) (*models.TradeDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *d
	cp.ID = m.seq
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDecisions) Get(_ context.Context, id int64) (*models.TradeDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDecisions) UpdateStatus(_ context.Context, id int64, status models.DecisionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("decision %d not found", id)
	}
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memDecisions) List(_ context.Context, limit int, statusFilter string) ([]models.TradeDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TradeDecision
	for _, d := range m.rows {
		if statusFilter != "" && statusFilter != "all" && string(d.Status) != statusFilter {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDecisions) All(_ context.Context) ([]models.TradeDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TradeDecision
	for _, d := range m.rows {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDecisions) Stats(_ context.Context) (*models.TradeStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	failed := map[models.DecisionStatus]bool{}
	for _, s := range models.FailedFamily {
		failed[s] = true
	}
	stats := &models.TradeStats{}
	for _, d := range m.rows {
		stats.Total++
		switch d.Action {
		case models.ActionBuy:
			stats.Buys++
		case models.ActionSell:
			stats.Sells++
		case models.ActionHold:
			stats.Holds++
		}
		if d.Status == models.DecisionExecuted {
			stats.Executed++
		}
		if failed[d.Status] {
			stats.Failed++
		}
	}
	return stats, nil
}

func (m *memDecisions) Upsert(_ context.Context, d *models.TradeDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.rows[cp.ID] = &cp
	return nil
}

func (m *memDecisions) SyncIDSequence(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.rows {
		if id > m.seq {
			m.seq = id
		}
	}
	return nil
}

type memExecutions struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.TradeExecution
}

func newMemExecutions() *memExecutions {
	return &memExecutions{rows: map[int64]*models.TradeExecution{}}
}

func (m *memExecutions) Create(_ context.Context, e *models.TradeExecution) (*models.TradeExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *e
	cp.ID = m.seq
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memExecutions) Get(_ context.Context, id int64) (*models.TradeExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memExecutions) StoreSignedTx(_ context.Context, id int64, signedHex string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("execution %d not found", id)
	}
	e.SignedTx = &signedHex
	e.Status = models.ExecutionSigned
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memExecutions) MarkBroadcasted(_ context.Context, id int64, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("execution %d not found", id)
	}
	e.TxHash = &txHash
	e.Status = models.ExecutionBroadcasted
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memExecutions) UpdateStatus(_ context.Context, id int64, status models.ExecutionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("execution %d not found", id)
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memExecutions) MarkBroadcastFailed(_ context.Context, id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("execution %d not found", id)
	}
	e.ErrorMsg = &errMsg
	e.Status = models.ExecutionBroadcastFailed
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memExecutions) All(_ context.Context) ([]models.TradeExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TradeExecution
	for _, e := range m.rows {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memExecutions) Upsert(_ context.Context, e *models.TradeExecution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.rows[cp.ID] = &cp
	return nil
}

func (m *memExecutions) SyncIDSequence(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.rows {
		if id > m.seq {
			m.seq = id
		}
	}
	return nil
}

type memHoldings struct {
	mu   sync.Mutex
	rows map[string]*models.HoldingsEntry
}

func newMemHoldings() *memHoldings {
	return &memHoldings{rows: map[string]*models.HoldingsEntry{}}
}

func (m *memHoldings) ApplyBuy(_ context.Context, tokenAddress, tokenSymbol, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.rows[tokenAddress]
	if !ok {
		h = &models.HoldingsEntry{TokenAddress: tokenAddress, AmountRaw: "0"}
		m.rows[tokenAddress] = h
	}
	var n int64
	fmt.Sscanf(h.AmountRaw, "%d", &n)
	h.AmountRaw = fmt.Sprintf("%d", n+1)
	h.TokenSymbol = tokenSymbol
	h.LastTxHash = &txHash
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memHoldings) Remove(_ context.Context, tokenAddress string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, tokenAddress)
	return nil
}

func (m *memHoldings) List(_ context.Context) ([]models.HoldingsEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HoldingsEntry
	for _, h := range m.rows {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenAddress < out[j].TokenAddress })
	return out, nil
}

func (m *memHoldings) Upsert(_ context.Context, h *models.HoldingsEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.rows[cp.TokenAddress] = &cp
	return nil
}

type memConfig struct {
	mu   sync.Mutex
	rows map[string]string
}

func newMemConfig(seed map[string]string) *memConfig {
	rows := map[string]string{}
	for k, v := range seed {
		rows[k] = v
	}
	return &memConfig{rows: rows}
}

func (m *memConfig) Get(_ context.Context, key, fallback string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.rows[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (m *memConfig) All(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.rows {
		out[k] = v
	}
	return out, nil
}

func (m *memConfig) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key] = value
	return nil
}

// Collaborator fakes.

type quoteCall struct {
	sellToken, buyToken, sellAmount string
}

type fakeQuotes struct {
	mu    sync.Mutex
	tx    *models.UnsignedTx
	err   error
	calls []quoteCall
}

func (f *fakeQuotes) GetSwapQuote(_ context.Context, sellToken, buyToken, sellAmount string) (*models.UnsignedTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, quoteCall{sellToken, buyToken, sellAmount})
	if f.err != nil {
		return nil, f.err
	}
	if f.tx == nil {
		return nil, nil
	}
	cp := *f.tx
	return &cp, nil
}

func (f *fakeQuotes) lastCall() *quoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	c := f.calls[len(f.calls)-1]
	return &c
}

type fakeChain struct {
	mu           sync.Mutex
	hash         string
	broadcastErr error
	receipt      *models.TxReceipt
	receiptErr   error
	pending      bool // always report not-yet-mined
	polls        int
}

func (f *fakeChain) BroadcastRaw(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	return f.hash, nil
}

func (f *fakeChain) GetReceipt(_ context.Context, _ string) (*models.TxReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.pending {
		return nil, nil
	}
	if f.receipt == nil {
		return nil, nil
	}
	cp := *f.receipt
	return &cp, nil
}

func (f *fakeChain) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

type notifyCall struct {
	event string
	data  map[string]any
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Notify(event string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{event: event, data: data})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeNotifier) lastCall() *notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	c := f.calls[len(f.calls)-1]
	return &c
}

// harness bundles a coordinator with all its fakes.
type harness struct {
	coord     *Coordinator
	decisions *memDecisions
	execs     *memExecutions
	holdings  *memHoldings
	config    *memConfig
	quotes    *fakeQuotes
	chain     *fakeChain
	notify    *fakeNotifier
}

func newHarness(opts Options) *harness {
	h := &harness{
		decisions: newMemDecisions(),
		execs:     newMemExecutions(),
		holdings:  newMemHoldings(),
		config:    newMemConfig(nil),
		quotes:    &fakeQuotes{},
		chain:     &fakeChain{},
		notify:    &fakeNotifier{},
	}
	if opts.ChainID == 0 {
		opts.ChainID = 8453
	}
	if opts.WETHAddress == "" {
		opts.WETHAddress = "0x4200000000000000000000000000000000000006"
	}
	if opts.PollAttempts == 0 {
		opts.PollAttempts = 3
	}
	if opts.PollDelay == 0 {
		opts.PollDelay = time.Millisecond
	}
	h.coord = New(h.decisions, h.execs, h.holdings, h.config, h.quotes, h.chain, h.notify, opts)
	return h
}
