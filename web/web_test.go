package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const testSnapshot = `{
  "group": {"id": 1, "name": "Flat", "currency_symbol": "€"},
  "accounts": [
    {"id": 1, "kind": "personal", "name": "anna", "last_changed": "2024-01-01T00:00:00Z"},
    {"id": 2, "kind": "personal", "name": "ben", "last_changed": "2024-01-01T00:00:00Z"},
    {"id": 10, "kind": "clearing", "name": "kitchen", "clearing_shares": {"1": 1, "2": 1}, "last_changed": "2024-06-01T00:00:00Z"}
  ],
  "transactions": [
    {
      "id": 1,
      "type": "transfer",
      "committed_details": {
        "description": "stocking up",
        "value": "20",
        "currency_symbol": "€",
        "billed_at": "2024-03-01T00:00:00Z",
        "creditor_shares": {"1": 1},
        "debitor_shares": {"10": 1}
      },
      "last_changed": "2024-03-01T12:00:00Z"
    }
  ]
}`

const invalidSnapshot = `{
  "group": {"id": 1, "name": "Flat", "currency_symbol": "€"},
  "accounts": [{"id": 1, "kind": "personal", "name": "anna"}],
  "transactions": [
    {
      "id": 1,
      "type": "transfer",
      "committed_details": {
        "description": "broken",
        "value": "20",
        "creditor_shares": {},
        "debitor_shares": {"1": 1}
      }
    }
  ]
}`

func newTestServer(t *testing.T, snapshot string) *http.ServeMux {
	t.Helper()

	path := filepath.Join(t.TempDir(), "group.json")
	assert.NoError(t, os.WriteFile(path, []byte(snapshot), 0600))

	server := New(8080, path)
	assert.NoError(t, server.reloadSnapshot(context.Background()))

	return server.setupRouter()
}

func TestAPIGroup(t *testing.T) {
	mux := newTestServer(t, testSnapshot)

	req := httptest.NewRequest(http.MethodGet, "/api/group", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response map[string]any
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	group := response["group"].(map[string]any)
	assert.Equal(t, "Flat", group["name"].(string))
}

func TestAPIAccounts(t *testing.T) {
	mux := newTestServer(t, testSnapshot)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response AccountsResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 3, len(response.Accounts))

	// Sorted alphabetically by name.
	assert.Equal(t, "anna", response.Accounts[0].Name)
	assert.Equal(t, "ben", response.Accounts[1].Name)
	assert.Equal(t, "kitchen", response.Accounts[2].Name)
	assert.True(t, response.Accounts[2].Clearing)
}

func TestAPIBalances(t *testing.T) {
	mux := newTestServer(t, testSnapshot)

	req := httptest.NewRequest(http.MethodGet, "/api/balances", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Balances map[string]struct {
			Balance        string `json:"balance"`
			BeforeClearing string `json:"before_clearing"`
		} `json:"balances"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	// 20 paid by anna into the clearing account, split back evenly.
	assert.Equal(t, "10", response.Balances["1"].Balance)
	assert.Equal(t, "-10", response.Balances["2"].Balance)
	assert.Equal(t, "0", response.Balances["10"].Balance)
	assert.Equal(t, "-20", response.Balances["10"].BeforeClearing)
}

func TestAPIBalances_InvalidSnapshot(t *testing.T) {
	mux := newTestServer(t, invalidSnapshot)

	req := httptest.NewRequest(http.MethodGet, "/api/balances", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var response ErrorsResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 1, len(response.Errors))
	assert.True(t, strings.Contains(response.Errors[0], "empty creditor shares"))
}

func TestAPIHistory(t *testing.T) {
	mux := newTestServer(t, testSnapshot)

	t.Run("ValidAccount", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/history?account=1", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response struct {
			History []struct {
				Change string `json:"change"`
				Origin string `json:"origin"`
			} `json:"history"`
		}
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, len(response.History))
		assert.Equal(t, "transaction", response.History[0].Origin)
		assert.Equal(t, "clearing", response.History[1].Origin)
	})

	t.Run("MissingParameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NonNumericAccount", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/history?account=anna", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReloadSnapshot_ReplacesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.json")
	assert.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0600))

	server := New(8080, path)
	assert.NoError(t, server.reloadSnapshot(context.Background()))

	server.mu.RLock()
	firstErr := server.computeErr
	server.mu.RUnlock()
	assert.NoError(t, firstErr)

	// Replace the file with a snapshot that fails validation; the cached
	// state must swap wholesale to the new snapshot plus its error.
	assert.NoError(t, os.WriteFile(path, []byte(invalidSnapshot), 0600))
	assert.NoError(t, server.reloadSnapshot(context.Background()))

	server.mu.RLock()
	defer server.mu.RUnlock()
	assert.Error(t, server.computeErr)
	assert.Equal(t, 1, len(server.snapshot.Transactions))
}
