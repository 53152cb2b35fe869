package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of money movement.
type TransactionType string

// Transaction types.
const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

// TransactionStatus tracks whether a transaction has cleared the bank.
type TransactionStatus string

// Transaction statuses. The zero value means no status was recorded.
const (
	StatusPending    TransactionStatus = "pending"
	StatusCleared    TransactionStatus = "cleared"
	StatusReconciled TransactionStatus = "reconciled"
)

// TransactionSplit assigns part of a transaction amount to a category.
type TransactionSplit struct {
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"category_id"`
	Note       string          `json:"note,omitempty"`
}

// Transaction is a concrete movement of money on one account, or between two
// accounts for transfers.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	WarrantyUntil *time.Time
	Amount        decimal.Decimal
	ID            string
	AccountID     string
	ToAccountID   string // Destination account, set only for transfers
	CategoryID    string
	Description   string
	Time          string // Optional time of day, "15:04"
	ItemName      string
	PlannedID     string // Planned transaction this record was materialized from
	ExternalID    string // Bank-assigned identifier for imported rows
	Type          TransactionType
	Status        TransactionStatus
	LabelIDs      []string
	PayeeIDs      []string
	Splits        []TransactionSplit
}

// Validate checks the transaction invariants that balance reconciliation relies on.
func (t *Transaction) Validate() error {
	if t == nil {
		return invalid(ErrInvalidTransaction, "transaction is nil")
	}
	if blank(t.ID) {
		return invalid(ErrInvalidTransaction, "missing ID")
	}
	if blank(t.AccountID) {
		return invalid(ErrInvalidTransaction, "missing account ID")
	}
	if !t.Type.Valid() {
		return invalid(ErrInvalidTransaction, "unknown type %q", t.Type)
	}
	if !t.Amount.IsPositive() {
		return invalid(ErrInvalidTransaction, "amount must be greater than zero")
	}
	if t.Date.IsZero() {
		return invalid(ErrInvalidTransaction, "missing date")
	}

	switch {
	case t.Type == TypeTransfer && blank(t.ToAccountID):
		return invalid(ErrInvalidTransaction, "transfer requires a destination account")
	case t.Type != TypeTransfer && t.ToAccountID != "":
		return invalid(ErrInvalidTransaction, "only transfers may set a destination account")
	case t.ToAccountID != "" && t.ToAccountID == t.AccountID:
		return invalid(ErrInvalidTransaction, "transfer source and destination must differ")
	}

	if t.Time != "" {
		if _, err := time.Parse("15:04", t.Time); err != nil {
			return invalid(ErrInvalidTransaction, "time %q is not HH:MM", t.Time)
		}
	}

	if len(t.Splits) > 0 {
		total := decimal.Zero
		for i, split := range t.Splits {
			if !split.Amount.IsPositive() {
				return invalid(ErrInvalidTransaction, "split %d amount must be greater than zero", i)
			}
			total = total.Add(split.Amount)
		}
		if !total.Equal(t.Amount) {
			return invalid(ErrInvalidTransaction, "splits total %s does not match amount %s", total, t.Amount)
		}
	}

	return nil
}

// References reports whether the transaction touches the given account.
func (t *Transaction) References(accountID string) bool {
	return t.AccountID == accountID || t.ToAccountID == accountID
}
