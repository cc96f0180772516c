package models

// Snapshot is the full-state backup envelope. Import upserts per row, keyed
// by id for decisions/executions and by natural key for config and holdings.
type Snapshot struct {
	Decisions  []TradeDecision   `json:"decisions"`
	Executions []TradeExecution  `json:"executions"`
	Config     map[string]string `json:"config"`
	Holdings   []HoldingsEntry   `json:"portfolio"`
}
