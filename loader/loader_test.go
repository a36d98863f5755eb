package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/SFTtech/abrechnung-sub002/group"
)

const testSnapshot = `{
  "group": {"id": 1, "name": "Flat", "currency_symbol": "€"},
  "accounts": [
    {"id": 1, "kind": "personal", "name": "anna"},
    {"id": 2, "kind": "personal", "name": "ben"},
    {"id": 10, "kind": "clearing", "name": "kitchen", "clearing_shares": {"1": 1, "2": 1}}
  ],
  "transactions": [
    {
      "id": 1,
      "type": "transfer",
      "committed_details": {
        "description": "rent share",
        "value": "30",
        "currency_symbol": "€",
        "billed_at": "2024-03-01T00:00:00Z",
        "creditor_shares": {"1": 1},
        "debitor_shares": {"2": 1}
      },
      "last_changed": "2024-03-01T12:00:00Z"
    }
  ]
}`

func TestLoadBytes(t *testing.T) {
	ldr := New()
	snapshot, err := ldr.LoadBytes(context.Background(), "test.json", []byte(testSnapshot))
	assert.NoError(t, err)

	assert.Equal(t, "Flat", snapshot.Group.Name)
	assert.Equal(t, "€", snapshot.Group.CurrencySymbol)
	assert.Equal(t, 3, len(snapshot.Accounts))
	assert.Equal(t, 1, len(snapshot.Transactions))

	kitchen := snapshot.Account(10)
	assert.NotZero(t, kitchen)
	assert.True(t, kitchen.IsClearing())

	txn := snapshot.Transactions[0]
	assert.Equal(t, group.TransactionTypeTransfer, txn.Type)
	assert.Equal(t, "rent share", txn.CommittedDetails.Description)
	assert.True(t, txn.CommittedDetails.CreditorShares.Has(1))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "group.json")
	assert.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0600))

	ldr := New()
	snapshot, err := ldr.Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, "Flat", snapshot.Group.Name)

	_, err = ldr.Load(context.Background(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadBytes_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "invalid json",
			input:   `{"group":`,
			wantMsg: "failed to decode",
		},
		{
			name: "unknown account kind",
			input: `{"group": {"id": 1}, "accounts": [{"id": 1, "kind": "virtual", "name": "x"}],
			         "transactions": []}`,
			wantMsg: "unknown kind",
		},
		{
			name: "duplicate account id",
			input: `{"group": {"id": 1}, "accounts": [
			           {"id": 1, "kind": "personal", "name": "a"},
			           {"id": 1, "kind": "personal", "name": "b"}],
			         "transactions": []}`,
			wantMsg: "duplicate account id",
		},
		{
			name: "personal account with clearing shares",
			input: `{"group": {"id": 1}, "accounts": [
			           {"id": 1, "kind": "personal", "name": "a", "clearing_shares": {"2": 1}}],
			         "transactions": []}`,
			wantMsg: "clearing shares",
		},
		{
			name: "unknown transaction type",
			input: `{"group": {"id": 1}, "accounts": [],
			         "transactions": [{"id": 1, "type": "loan", "committed_details": null}]}`,
			wantMsg: "unknown type",
		},
		{
			name: "duplicate transaction id",
			input: `{"group": {"id": 1}, "accounts": [],
			         "transactions": [
			           {"id": 1, "type": "transfer"},
			           {"id": 1, "type": "transfer"}]}`,
			wantMsg: "duplicate transaction id",
		},
		{
			name: "negative share weight",
			input: `{"group": {"id": 1}, "accounts": [
			           {"id": 10, "kind": "clearing", "name": "k", "clearing_shares": {"1": -1}}],
			         "transactions": []}`,
			wantMsg: "invalid share weight",
		},
	}

	ldr := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ldr.LoadBytes(context.Background(), "test.json", []byte(tt.input))
			assert.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantMsg))
		})
	}
}

func TestLoadBytes_CheckReferences(t *testing.T) {
	input := `{
	  "group": {"id": 1},
	  "accounts": [{"id": 1, "kind": "personal", "name": "anna"}],
	  "transactions": [
	    {
	      "id": 1,
	      "type": "transfer",
	      "committed_details": {
	        "description": "x",
	        "value": "10",
	        "creditor_shares": {"1": 1},
	        "debitor_shares": {"99": 1}
	      }
	    }
	  ]
	}`

	t.Run("tolerated by default", func(t *testing.T) {
		_, err := New().LoadBytes(context.Background(), "test.json", []byte(input))
		assert.NoError(t, err)
	})

	t.Run("rejected with option", func(t *testing.T) {
		_, err := New(WithCheckReferences()).LoadBytes(context.Background(), "test.json", []byte(input))
		assert.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unknown account 99"))
	})
}
