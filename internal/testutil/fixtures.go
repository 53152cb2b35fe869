package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Epoch is the creation timestamp given to every fixture.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Date parses a YYYY-MM-DD string and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad date %q: %v", s, err))
	}
	return t
}

// DatePtr is Date returning a pointer.
func DatePtr(s string) *time.Time {
	t := Date(s)
	return &t
}

// Money parses a decimal amount and panics on malformed input.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Account returns a checking account whose balance equals its opening balance.
func Account(id, opening string) model.Account {
	return model.Account{
		ID:             id,
		Name:           id,
		Type:           model.AccountChecking,
		Balance:        Money(opening),
		OpeningBalance: Money(opening),
		CreatedAt:      Epoch,
		UpdatedAt:      Epoch,
	}
}

// Income returns an income transaction into accountID.
func Income(id, accountID, amount, date string) model.Transaction {
	return transaction(id, accountID, model.TypeIncome, amount, date)
}

// Expense returns an expense transaction from accountID.
func Expense(id, accountID, amount, date string) model.Transaction {
	return transaction(id, accountID, model.TypeExpense, amount, date)
}

// Transfer returns a transfer between two accounts.
func Transfer(id, from, to, amount, date string) model.Transaction {
	txn := transaction(id, from, model.TypeTransfer, amount, date)
	txn.ToAccountID = to
	return txn
}

func transaction(id, accountID string, typ model.TransactionType, amount, date string) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        typ,
		Amount:      Money(amount),
		Date:        Date(date),
		Description: string(typ) + " " + id,
		Status:      model.StatusCleared,
		CreatedAt:   Epoch,
		UpdatedAt:   Epoch,
	}
}

// Planned returns an auto-created planned expense.
func Planned(id, accountID, amount, scheduled string, recurrence model.Recurrence) model.PlannedTransaction {
	return model.PlannedTransaction{
		ID:            id,
		AccountID:     accountID,
		Type:          model.TypeExpense,
		Amount:        Money(amount),
		Description:   "planned " + id,
		ScheduledDate: Date(scheduled),
		Recurrence:    recurrence,
		AutoCreate:    true,
		Status:        model.PlannedPending,
		CreatedAt:     Epoch,
		UpdatedAt:     Epoch,
	}
}

// Category returns an expense category.
func Category(id, name string) model.Category {
	return model.Category{ID: id, Name: name, Type: model.CategoryTypeExpense, CreatedAt: Epoch, UpdatedAt: Epoch}
}

// Fixtures collects entities to seed into a gateway.
type Fixtures struct {
	accounts     []model.Account
	transactions []model.Transaction
	categories   []model.Category
	planned      []model.PlannedTransaction
	bills        []model.Bill
}

// NewFixtures starts an empty fixture set.
func NewFixtures() *Fixtures {
	return &Fixtures{}
}

// WithAccount adds accounts.
func (f *Fixtures) WithAccount(accounts ...model.Account) *Fixtures {
	f.accounts = append(f.accounts, accounts...)
	return f
}

// WithTransaction adds transactions. Seeding stores them as-is; account
// balances are not adjusted.
func (f *Fixtures) WithTransaction(txns ...model.Transaction) *Fixtures {
	f.transactions = append(f.transactions, txns...)
	return f
}

// WithCategory adds categories.
func (f *Fixtures) WithCategory(categories ...model.Category) *Fixtures {
	f.categories = append(f.categories, categories...)
	return f
}

// WithPlanned adds planned transactions.
func (f *Fixtures) WithPlanned(planned ...model.PlannedTransaction) *Fixtures {
	f.planned = append(f.planned, planned...)
	return f
}

// WithBill adds bills.
func (f *Fixtures) WithBill(bills ...model.Bill) *Fixtures {
	f.bills = append(f.bills, bills...)
	return f
}

// Seed writes every fixture through gw in one unit of work.
func (f *Fixtures) Seed(ctx context.Context, gw service.Gateway) error {
	return gw.WithTx(ctx, func(tx service.Gateway) error {
		if err := tx.Accounts().SaveAll(ctx, f.accounts); err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
		if err := tx.Transactions().SaveAll(ctx, f.transactions); err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		if err := tx.Categories().SaveAll(ctx, f.categories); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		if err := tx.PlannedTransactions().SaveAll(ctx, f.planned); err != nil {
			return fmt.Errorf("planned transactions: %w", err)
		}
		if err := tx.Bills().SaveAll(ctx, f.bills); err != nil {
			return fmt.Errorf("bills: %w", err)
		}
		return nil
	})
}
