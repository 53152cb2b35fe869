package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T {
	return &v
}

var stamp = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testAccount(id string) model.Account {
	return model.Account{
		ID:             id,
		Name:           "Account " + id,
		Type:           model.AccountChecking,
		Balance:        decimal.NewFromInt(100),
		OpeningBalance: decimal.NewFromInt(100),
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
	}
}

func testTransaction(id, accountID string) model.Transaction {
	return model.Transaction{
		ID:        id,
		AccountID: accountID,
		Type:      model.TypeExpense,
		Amount:    decimal.NewFromInt(25),
		Date:      date("2024-03-01"),
		Status:    model.StatusCleared,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestAccounts_RoundTripWithDetails(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	account := testAccount("a1")
	account.Type = model.AccountCreditCard
	account.Details = model.CreditCardDetails{
		Issuer:       "Example Bank",
		CreditLimit:  decimal.NewFromInt(5000),
		StatementDay: 20,
	}
	require.NoError(t, store.Accounts().Add(ctx, account))

	got, err := store.Accounts().Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.AccountCreditCard, got.Type)
	assert.True(t, got.Balance.Equal(account.Balance))
	assert.Equal(t, stamp, got.CreatedAt)

	details, ok := got.Details.(model.CreditCardDetails)
	require.True(t, ok, "details should decode as credit card details")
	assert.Equal(t, "Example Bank", details.Issuer)
	assert.Equal(t, 20, details.StatementDay)
	assert.True(t, details.CreditLimit.Equal(decimal.NewFromInt(5000)))
}

func TestTransactions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	txn := testTransaction("t1", "a1")
	txn.Type = model.TypeTransfer
	txn.ToAccountID = "a2"
	txn.Amount = decimal.RequireFromString("12.5")
	txn.Time = "08:15"
	txn.LabelIDs = []string{"l1", "l2"}
	txn.Splits = []model.TransactionSplit{
		{Amount: decimal.RequireFromString("10"), CategoryID: "c1"},
		{Amount: decimal.RequireFromString("2.5"), CategoryID: "c2"},
	}
	txn.WarrantyUntil = ptr(date("2026-03-01"))
	require.NoError(t, store.Transactions().Add(ctx, txn))

	got, err := store.Transactions().Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.ToAccountID)
	assert.Equal(t, "12.5", got.Amount.String())
	assert.Equal(t, date("2024-03-01"), got.Date)
	assert.Equal(t, "08:15", got.Time)
	assert.Equal(t, []string{"l1", "l2"}, got.LabelIDs)
	assert.Nil(t, got.PayeeIDs)
	require.Len(t, got.Splits, 2)
	assert.Equal(t, "c2", got.Splits[1].CategoryID)
	require.NotNil(t, got.WarrantyUntil)
	assert.Equal(t, date("2026-03-01"), *got.WarrantyUntil)
}

func TestBills_RoundTripNullableFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	fixed := model.Bill{
		ID:          "b1",
		Name:        "Insurance",
		Amount:      decimal.NewFromInt(300),
		DueDateType: model.DueFixed,
		DueDate:     ptr(date("2024-06-01")),
		Status:      model.BillPending,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	recurring := model.Bill{
		ID:             "b2",
		Name:           "Rent",
		Amount:         decimal.NewFromInt(1200),
		DueDateType:    model.DueRecurring,
		Recurrence:     model.RecurrenceMonthly,
		DueDay:         1,
		StartDate:      date("2024-01-01"),
		LastPaidDate:   ptr(date("2024-02-28")),
		LastPaidAmount: ptr(decimal.NewFromInt(1200)),
		PaidThrough:    ptr(date("2024-03-01")),
		NextDueDate:    ptr(date("2024-04-01")),
		Status:         model.BillPaid,
		AutoPay:        true,
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
	}
	require.NoError(t, store.Bills().SaveAll(ctx, []model.Bill{fixed, recurring}))

	got, err := store.Bills().Get(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.StartDate.IsZero())
	assert.Nil(t, got.LastPaidAmount)
	assert.Nil(t, got.NextDueDate)
	assert.Equal(t, model.RecurrenceNone, got.Recurrence)

	got, err = store.Bills().Get(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-01"), got.StartDate)
	require.NotNil(t, got.LastPaidAmount)
	assert.True(t, got.LastPaidAmount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, date("2024-03-01"), *got.PaidThrough)
	assert.Equal(t, date("2024-04-01"), *got.NextDueDate)
	assert.True(t, got.AutoPay)
	assert.False(t, got.Notify)
}

func TestCollection_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	accounts := store.Accounts()

	require.NoError(t, accounts.Add(ctx, testAccount("a1")))

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "duplicate add",
			run:     func() error { return accounts.Add(ctx, testAccount("a1")) },
			wantErr: common.ErrDuplicateEntry,
		},
		{
			name:    "get missing",
			run:     func() error { _, err := accounts.Get(ctx, "nope"); return err },
			wantErr: common.ErrNotFound,
		},
		{
			name:    "update missing",
			run:     func() error { return accounts.Update(ctx, testAccount("nope")) },
			wantErr: common.ErrNotFound,
		},
		{
			name:    "delete missing",
			run:     func() error { return accounts.Delete(ctx, "nope") },
			wantErr: common.ErrNotFound,
		},
		{
			name:    "empty id",
			run:     func() error { _, err := accounts.Get(ctx, ""); return err },
			wantErr: ErrEmptyString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}

func TestCollection_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	accounts := store.Accounts()

	require.NoError(t, accounts.Add(ctx, testAccount("a1")))
	require.NoError(t, accounts.Add(ctx, testAccount("a2")))

	updated := testAccount("a1")
	updated.Name = "Renamed"
	updated.Balance = decimal.NewFromInt(42)
	require.NoError(t, accounts.Update(ctx, updated))

	got, err := accounts.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(42)))

	require.NoError(t, accounts.Delete(ctx, "a2"))
	all, err := accounts.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a1", all[0].ID)
}

func TestCollection_SaveAllReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	labels := store.Labels()

	require.NoError(t, labels.Add(ctx, model.Label{ID: "old", Name: "Old", CreatedAt: stamp, UpdatedAt: stamp}))
	require.NoError(t, labels.SaveAll(ctx, []model.Label{
		{ID: "b", Name: "Beta", CreatedAt: stamp, UpdatedAt: stamp},
		{ID: "a", Name: "Alpha", CreatedAt: stamp, UpdatedAt: stamp},
	}))

	all, err := labels.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)

	require.NoError(t, labels.SaveAll(ctx, nil))
	all, err = labels.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCollection_UpdateManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	accounts := store.Accounts()
	require.NoError(t, accounts.Add(ctx, testAccount("a1")))

	changed := testAccount("a1")
	changed.Name = "Changed"
	err := accounts.UpdateMany(ctx, []model.Account{changed, testAccount("missing")})
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := accounts.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Account a1", got.Name)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("commits on success", func(t *testing.T) {
		store := newTestStorage(t)
		err := store.WithTx(ctx, func(gw service.Gateway) error {
			if err := gw.Accounts().Add(ctx, testAccount("a1")); err != nil {
				return err
			}
			return gw.Transactions().Add(ctx, testTransaction("t1", "a1"))
		})
		require.NoError(t, err)

		_, err = store.Transactions().Get(ctx, "t1")
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		store := newTestStorage(t)
		err := store.WithTx(ctx, func(gw service.Gateway) error {
			if err := gw.Accounts().Add(ctx, testAccount("a1")); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		all, err := store.Accounts().GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		store := newTestStorage(t)
		err := store.WithTx(ctx, func(gw service.Gateway) error {
			if err := gw.WithTx(ctx, func(inner service.Gateway) error {
				return inner.Accounts().Add(ctx, testAccount("a1"))
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = store.Accounts().Get(ctx, "a1")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestTransactions_ExternalIDUnique(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	txns := store.Transactions()

	first := testTransaction("t1", "a1")
	first.ExternalID = "FIT-1"
	require.NoError(t, txns.Add(ctx, first))

	again := testTransaction("t2", "a1")
	again.ExternalID = "FIT-1"
	assert.ErrorIs(t, txns.Add(ctx, again), common.ErrDuplicateEntry)

	otherAccount := testTransaction("t3", "a2")
	otherAccount.ExternalID = "FIT-1"
	assert.NoError(t, txns.Add(ctx, otherAccount))

	// Manual entries carry no external ID and never collide.
	require.NoError(t, txns.Add(ctx, testTransaction("t4", "a1")))
	require.NoError(t, txns.Add(ctx, testTransaction("t5", "a1")))
}

func TestDatesIgnoreLocalZone(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	tokyo := time.FixedZone("JST", 9*3600)
	planned := model.PlannedTransaction{
		ID:            "p1",
		AccountID:     "a1",
		Type:          model.TypeExpense,
		Amount:        decimal.NewFromInt(10),
		ScheduledDate: time.Date(2024, 5, 31, 0, 0, 0, 0, tokyo),
		Recurrence:    model.RecurrenceMonthly,
		CreatedAt:     stamp,
		UpdatedAt:     stamp,
	}
	require.NoError(t, store.PlannedTransactions().Add(ctx, planned))

	got, err := store.PlannedTransactions().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, date("2024-05-31"), got.ScheduledDate)
	assert.Equal(t, model.PlannedPending, got.Status)
	assert.Nil(t, got.LastCreatedDate)
}
