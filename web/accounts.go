package web

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/SFTtech/abrechnung-sub002/group"
	"github.com/SFTtech/abrechnung-sub002/loader"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// GroupResponse is the JSON response structure for the group endpoint.
type GroupResponse struct {
	Group   loader.GroupInfo `json:"group"`
	Version string           `json:"version"`
}

// handleGetGroup handles GET requests to /api/group.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writeJSONResponse(w, &GroupResponse{
		Group:   s.snapshot.Group,
		Version: s.Version,
	})
}

// AccountInfo represents basic information about a group account.
type AccountInfo struct {
	ID       group.AccountID `json:"id"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Clearing bool            `json:"clearing"`
}

// AccountsResponse is the JSON response structure for the accounts endpoint.
type AccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

// handleGetAccounts handles GET requests to /api/accounts.
// Returns all non-deleted accounts, sorted alphabetically by name.
func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]AccountInfo, 0, len(s.snapshot.Accounts))

	for _, account := range s.snapshot.Accounts {
		if account.Deleted {
			continue
		}
		accounts = append(accounts, AccountInfo{
			ID:       account.ID,
			Name:     account.Name,
			Kind:     string(account.Kind),
			Clearing: account.IsClearing(),
		})
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	writeJSONResponse(w, &AccountsResponse{Accounts: accounts})
}
