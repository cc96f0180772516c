package models

import "time"

// Action is the trade intent submitted by the external decision-maker.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// DecisionStatus tracks a decision through its lifecycle. Transitions are
// forward-only; see CanTransition.
type DecisionStatus string

const (
	DecisionPending       DecisionStatus = "pending"
	DecisionLogged        DecisionStatus = "logged" // terminal, HOLD only
	DecisionTxConstructed DecisionStatus = "tx_constructed"
	DecisionQuoteFailed   DecisionStatus = "quote_failed"
	DecisionBroadcasted   DecisionStatus = "broadcasted"
	DecisionExecuted      DecisionStatus = "executed"
	DecisionReverted      DecisionStatus = "reverted"
	DecisionFailed        DecisionStatus = "failed"
)

var decisionTransitions = map[DecisionStatus][]DecisionStatus{
	DecisionPending:       {DecisionTxConstructed, DecisionQuoteFailed},
	DecisionTxConstructed: {DecisionBroadcasted, DecisionFailed},
	DecisionBroadcasted:   {DecisionExecuted, DecisionReverted},
}

func (s DecisionStatus) Valid() bool {
	switch s {
	case DecisionPending, DecisionLogged, DecisionTxConstructed, DecisionQuoteFailed,
		DecisionBroadcasted, DecisionExecuted, DecisionReverted, DecisionFailed:
		return true
	}
	return false
}

// CanTransition reports whether the status may advance to next.
func (s DecisionStatus) CanTransition(next DecisionStatus) bool {
	for _, allowed := range decisionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailedFamily is the set of statuses counted as failures in stats.
// "broadcast_failed" is included for rows written by older deployments that
// stamped the execution-level status onto the decision.
var FailedFamily = []DecisionStatus{
	DecisionFailed, DecisionReverted, DecisionQuoteFailed, "broadcast_failed",
}

type TradeDecision struct {
	ID           int64          `json:"id"`
	Action       Action         `json:"decision"`
	TokenAddress string         `json:"token_address"`
	TokenSymbol  string         `json:"token_symbol"`
	Reason       string         `json:"reason"`
	Status       DecisionStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TradeStats is the aggregate view over all decisions.
type TradeStats struct {
	Total    int64 `json:"total_decisions"`
	Buys     int64 `json:"buys"`
	Sells    int64 `json:"sells"`
	Holds    int64 `json:"holds"`
	Executed int64 `json:"executed"`
	Failed   int64 `json:"failed"`
}
