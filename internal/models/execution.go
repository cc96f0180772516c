package models

import "time"

// ExecutionStatus tracks an on-chain attempt. Forward-only:
// unsigned -> signed -> broadcasted -> executed | reverted, with
// signed -> broadcast_failed when the node rejects the call outright.
type ExecutionStatus string

const (
	ExecutionUnsigned        ExecutionStatus = "unsigned"
	ExecutionSigned          ExecutionStatus = "signed"
	ExecutionBroadcasted     ExecutionStatus = "broadcasted"
	ExecutionExecuted        ExecutionStatus = "executed"
	ExecutionReverted        ExecutionStatus = "reverted"
	ExecutionBroadcastFailed ExecutionStatus = "broadcast_failed"
)

var executionTransitions = map[ExecutionStatus][]ExecutionStatus{
	ExecutionUnsigned:    {ExecutionSigned},
	ExecutionSigned:      {ExecutionBroadcasted, ExecutionBroadcastFailed},
	ExecutionBroadcasted: {ExecutionExecuted, ExecutionReverted},
}

func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionUnsigned, ExecutionSigned, ExecutionBroadcasted,
		ExecutionExecuted, ExecutionReverted, ExecutionBroadcastFailed:
		return true
	}
	return false
}

// CanTransition reports whether the status may advance to next.
func (s ExecutionStatus) CanTransition(next ExecutionStatus) bool {
	for _, allowed := range executionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UnsignedTx holds the swap transaction fields as returned by the quote
// service. Values stay string-encoded end to end; the signer interprets them.
type UnsignedTx struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

type TradeExecution struct {
	ID         int64           `json:"id"`
	DecisionID int64           `json:"decision_id"`
	RawTxTo    string          `json:"raw_tx_to"`
	RawTxData  string          `json:"raw_tx_data"`
	RawTxValue string          `json:"raw_tx_value"`
	RawTxGas   string          `json:"raw_tx_gas"`
	SignedTx   *string         `json:"signed_tx,omitempty"`
	TxHash     *string         `json:"tx_hash,omitempty"`
	Status     ExecutionStatus `json:"status"`
	ErrorMsg   *string         `json:"error_msg,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UnsignedTx reconstructs the quote fields from the stored row.
func (e *TradeExecution) UnsignedTx() UnsignedTx {
	return UnsignedTx{To: e.RawTxTo, Data: e.RawTxData, Value: e.RawTxValue, Gas: e.RawTxGas}
}

// TxReceipt is the minimal confirmation record the coordinator needs.
type TxReceipt struct {
	TxHash      string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
}

func (r *TxReceipt) Success() bool { return r.Status == 1 }
