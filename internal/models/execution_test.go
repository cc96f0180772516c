package models

import "testing"

func TestExecutionTransitions_Allowed(t *testing.T) {
	allowed := []struct {
		from, to ExecutionStatus
	}{
		{ExecutionUnsigned, ExecutionSigned},
		{ExecutionSigned, ExecutionBroadcasted},
		{ExecutionSigned, ExecutionBroadcastFailed},
		{ExecutionBroadcasted, ExecutionExecuted},
		{ExecutionBroadcasted, ExecutionReverted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestExecutionTransitions_Forbidden(t *testing.T) {
	forbidden := []struct {
		from, to ExecutionStatus
	}{
		{ExecutionUnsigned, ExecutionBroadcasted},
		{ExecutionSigned, ExecutionSigned}, // re-signing is not a transition
		{ExecutionBroadcasted, ExecutionSigned},
		{ExecutionExecuted, ExecutionReverted},
		{ExecutionReverted, ExecutionExecuted},
		{ExecutionBroadcastFailed, ExecutionSigned},
		{ExecutionExecuted, ExecutionUnsigned},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestExecutionStatusValid(t *testing.T) {
	valid := []ExecutionStatus{
		ExecutionUnsigned, ExecutionSigned, ExecutionBroadcasted,
		ExecutionExecuted, ExecutionReverted, ExecutionBroadcastFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []ExecutionStatus{"", "SIGNED", "pending", "confirmed"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestExecutionUnsignedTxRoundtrip(t *testing.T) {
	e := &TradeExecution{
		RawTxTo:    "0x1111111111111111111111111111111111111111",
		RawTxData:  "0xdeadbeef",
		RawTxValue: "6060606060606060",
		RawTxGas:   "350000",
	}
	tx := e.UnsignedTx()
	if tx.To != e.RawTxTo || tx.Data != e.RawTxData || tx.Value != e.RawTxValue || tx.Gas != e.RawTxGas {
		t.Fatalf("unsigned tx fields do not match row: %+v", tx)
	}
}

func TestTxReceiptSuccess(t *testing.T) {
	ok := &TxReceipt{Status: 1}
	if !ok.Success() {
		t.Fatal("status 1 should be success")
	}
	reverted := &TxReceipt{Status: 0}
	if reverted.Success() {
		t.Fatal("status 0 should not be success")
	}
}
