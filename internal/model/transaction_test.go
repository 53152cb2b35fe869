package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:         "txn-1",
		AccountID:  "acc-1",
		CategoryID: "cat-1",
		Type:       TypeExpense,
		Amount:     decimal.RequireFromString("42.50"),
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*Transaction)
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid expense",
			mutate: func(*Transaction) {},
		},
		{
			name: "valid transfer",
			mutate: func(tx *Transaction) {
				tx.Type = TypeTransfer
				tx.ToAccountID = "acc-2"
			},
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: true,
			errMsg:  "amount must be greater than zero",
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) },
			wantErr: true,
			errMsg:  "amount must be greater than zero",
		},
		{
			name:    "transfer without destination",
			mutate:  func(tx *Transaction) { tx.Type = TypeTransfer },
			wantErr: true,
			errMsg:  "transfer requires a destination account",
		},
		{
			name: "transfer to same account",
			mutate: func(tx *Transaction) {
				tx.Type = TypeTransfer
				tx.ToAccountID = tx.AccountID
			},
			wantErr: true,
			errMsg:  "source and destination must differ",
		},
		{
			name:    "expense with destination",
			mutate:  func(tx *Transaction) { tx.ToAccountID = "acc-2" },
			wantErr: true,
			errMsg:  "only transfers may set a destination account",
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "refund" },
			wantErr: true,
			errMsg:  "unknown type",
		},
		{
			name:    "bad time of day",
			mutate:  func(tx *Transaction) { tx.Time = "25:99" },
			wantErr: true,
			errMsg:  "is not HH:MM",
		},
		{
			name: "splits match amount",
			mutate: func(tx *Transaction) {
				tx.Splits = []TransactionSplit{
					{CategoryID: "food", Amount: decimal.RequireFromString("40.00")},
					{CategoryID: "tip", Amount: decimal.RequireFromString("2.50")},
				}
			},
		},
		{
			name: "splits do not match amount",
			mutate: func(tx *Transaction) {
				tx.Splits = []TransactionSplit{
					{CategoryID: "food", Amount: decimal.RequireFromString("40.00")},
				}
			},
			wantErr: true,
			errMsg:  "does not match amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTransaction_References(t *testing.T) {
	tx := validTransaction()
	tx.Type = TypeTransfer
	tx.ToAccountID = "acc-2"

	assert.True(t, tx.References("acc-1"))
	assert.True(t, tx.References("acc-2"))
	assert.False(t, tx.References("acc-3"))
}
