package api

import (
	"fmt"
	"net/http"
	"strings"

	"autotrader/internal/models"
)

type decisionRequest struct {
	Decision     string `json:"decision"`
	TokenAddress string `json:"token_address"`
	TokenSymbol  string `json:"token_symbol"`
	Reason       string `json:"reason"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	action := models.Action(strings.ToUpper(req.Decision))
	result, err := s.coord.SubmitDecision(r.Context(), action, req.TokenAddress, req.TokenSymbol, req.Reason)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type signRequest struct {
	TxID     int64  `json:"tx_id"`
	SignedTx string `json:"signed_tx"`
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.coord.SubmitSignedTx(r.Context(), req.TxID, req.SignedTx)
	if err != nil {
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type historyRequest struct {
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if r.Method == http.MethodPost && r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	decisions, err := s.coord.ListDecisions(r.Context(), req.Limit, req.Status)
	if err != nil {
		fmt.Printf("[API] History query failed: %v\n", err)
		writeCoordinatorError(w, err)
		return
	}
	if decisions == nil {
		decisions = []models.TradeDecision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coord.GetStats(r.Context())
	if err != nil {
		fmt.Printf("[API] Stats query failed: %v\n", err)
		writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.coord.ListHoldings(r.Context())
	if err != nil {
		fmt.Printf("[API] Portfolio query failed: %v\n", err)
		writeCoordinatorError(w, err)
		return
	}
	if holdings == nil {
		holdings = []models.HoldingsEntry{}
	}
	writeJSON(w, http.StatusOK, holdings)
}
