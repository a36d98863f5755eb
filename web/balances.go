package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/SFTtech/abrechnung-sub002/balance"
	"github.com/SFTtech/abrechnung-sub002/group"
)

// BalancesResponse is the JSON response structure for the balances endpoint.
type BalancesResponse struct {
	Balances balance.Map `json:"balances"`
}

// ErrorsResponse is returned when the cached snapshot failed validation.
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// handleGetBalances handles GET requests to /api/balances.
//
// Returns the full balance map keyed by account id. If the current snapshot
// failed validation, responds with 422 and the collected error messages
// instead of partial results.
func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.computeErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSONErrors(w, s.computeErr)
		return
	}

	writeJSONResponse(w, &BalancesResponse{Balances: s.balances})
}

// handleGetHistory handles GET requests to /api/history?account=ID.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	accountParam := r.URL.Query().Get("account")
	if accountParam == "" {
		http.Error(w, "account query parameter is required", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(accountParam)
	if err != nil {
		http.Error(w, "invalid account id: "+accountParam, http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.computeErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSONErrors(w, s.computeErr)
		return
	}

	entries, err := balance.AccountHistory(r.Context(), s.snapshot.Transactions, s.snapshot.Accounts, group.AccountID(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, map[string]any{"history": entries})
}

// writeJSONErrors flattens a computation error into an ErrorsResponse body.
// The caller has already written the status header.
func writeJSONErrors(w http.ResponseWriter, err error) {
	var messages []string

	var validationErrors *balance.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors.Errors {
			messages = append(messages, e.Error())
		}
	} else {
		messages = append(messages, err.Error())
	}

	_ = json.NewEncoder(w).Encode(&ErrorsResponse{Errors: messages})
}
