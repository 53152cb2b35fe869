package bills

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
)

var day = testutil.Date

func fixedBill(due string, status model.BillStatus) model.Bill {
	return model.Bill{
		ID:          "fixed",
		Name:        "Car registration",
		Amount:      decimal.NewFromInt(180),
		AccountID:   "acct",
		DueDateType: model.DueFixed,
		DueDate:     testutil.DatePtr(due),
		Recurrence:  model.RecurrenceNone,
		Status:      status,
	}
}

func monthlyBill(start string, dueDay int) model.Bill {
	return model.Bill{
		ID:          "rent",
		Name:        "Rent",
		Amount:      decimal.NewFromInt(1200),
		AccountID:   "acct",
		DueDateType: model.DueRecurring,
		Recurrence:  model.RecurrenceMonthly,
		DueDay:      dueDay,
		StartDate:   day(start),
		Status:      model.BillPending,
	}
}

func TestCalculateNextDueDate(t *testing.T) {
	weekly := monthlyBill("2024-06-05", 1) // Wednesday start, due Mondays
	weekly.Recurrence = model.RecurrenceWeekly

	sunday := monthlyBill("2024-06-03", 7)
	sunday.Recurrence = model.RecurrenceWeekly

	yearly := monthlyBill("2024-04-10", 20)
	yearly.Recurrence = model.RecurrenceYearly
	yearly.LastPaidDate = testutil.DatePtr("2024-04-20")

	daily := monthlyBill("2024-06-01", 0)
	daily.Recurrence = model.RecurrenceDaily
	daily.LastPaidDate = testutil.DatePtr("2024-06-09")

	ended := monthlyBill("2024-01-01", 15)
	ended.EndDate = testutil.DatePtr("2024-03-01")
	ended.LastPaidDate = testutil.DatePtr("2024-02-15")

	paidThrough := monthlyBill("2024-01-01", 15)
	paidThrough.LastPaidDate = testutil.DatePtr("2024-03-10")
	paidThrough.PaidThrough = testutil.DatePtr("2024-03-15")

	latePayment := monthlyBill("2024-01-01", 15)
	latePayment.LastPaidDate = testutil.DatePtr("2024-03-20")
	latePayment.PaidThrough = testutil.DatePtr("2024-02-15")

	legacyPayment := monthlyBill("2024-01-01", 15)
	legacyPayment.LastPaidDate = testutil.DatePtr("2024-03-20")

	cancelled := monthlyBill("2024-01-01", 15)
	cancelled.Status = model.BillCancelled
	cancelled.NextDueDate = testutil.DatePtr("2023-12-15")

	tests := []struct {
		name string
		bill model.Bill
		want *time.Time
	}{
		{"fixed uses its due date", fixedBill("2024-07-04", model.BillPending), testutil.DatePtr("2024-07-04")},
		{"monthly first cycle from start", monthlyBill("2024-01-20", 15), testutil.DatePtr("2024-02-15")},
		{"monthly due on start day", monthlyBill("2024-01-15", 15), testutil.DatePtr("2024-01-15")},
		{"monthly clamps day 31", monthlyBill("2024-02-01", 31), testutil.DatePtr("2024-02-29")},
		{"weekly weekday", weekly, testutil.DatePtr("2024-06-10")},
		{"weekly sunday is seven", sunday, testutil.DatePtr("2024-06-09")},
		{"yearly after payment", yearly, testutil.DatePtr("2025-04-20")},
		{"daily day after payment", daily, testutil.DatePtr("2024-06-10")},
		{"past end date is dormant", ended, nil},
		{"early payment settles its cycle", paidThrough, testutil.DatePtr("2024-04-15")},
		{"late payment leaves the missed cycle due", latePayment, testutil.DatePtr("2024-03-15")},
		{"without paid-through searches after the payment", legacyPayment, testutil.DatePtr("2024-04-15")},
		{"cancelled keeps stored date", cancelled, testutil.DatePtr("2023-12-15")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateNextDueDate(tt.bill))
		})
	}
}

func TestRecalculateStatus_FixedBillOverdue(t *testing.T) {
	today := day("2024-06-10")
	bill := fixedBill("2024-06-09", model.BillPending)

	got := RecalculateStatus(bill, today)
	assert.Equal(t, model.BillOverdue, got.Status)
	assert.Equal(t, day("2024-06-09"), *got.NextDueDate)

	assert.Equal(t, got, RecalculateStatus(got, today), "recalculation is idempotent")
}

func TestRecalculateStatus(t *testing.T) {
	today := day("2024-06-10")

	tests := []struct {
		name       string
		bill       model.Bill
		wantStatus model.BillStatus
		wantNext   *time.Time
	}{
		{
			name:       "fixed due today is pending",
			bill:       fixedBill("2024-06-10", model.BillOverdue),
			wantStatus: model.BillPending,
			wantNext:   testutil.DatePtr("2024-06-10"),
		},
		{
			name:       "fixed paid stays paid",
			bill:       fixedBill("2024-06-01", model.BillPaid),
			wantStatus: model.BillPaid,
			wantNext:   testutil.DatePtr("2024-06-01"),
		},
		{
			name:       "recurring with unpaid past cycle is overdue",
			bill:       monthlyBill("2024-05-01", 5),
			wantStatus: model.BillOverdue,
			wantNext:   testutil.DatePtr("2024-05-05"),
		},
		{
			name: "recurring paid stays paid within the settled cycle",
			bill: func() model.Bill {
				b := monthlyBill("2024-01-01", 15)
				b.Status = model.BillPaid
				b.LastPaidDate = testutil.DatePtr("2024-06-08")
				b.PaidThrough = testutil.DatePtr("2024-06-15")
				return b
			}(),
			wantStatus: model.BillPaid,
			wantNext:   testutil.DatePtr("2024-07-15"),
		},
		{
			name: "recurring paid moves to the next cycle",
			bill: func() model.Bill {
				b := monthlyBill("2024-01-01", 5)
				b.Status = model.BillPaid
				b.LastPaidDate = testutil.DatePtr("2024-05-04")
				b.PaidThrough = testutil.DatePtr("2024-05-05")
				return b
			}(),
			wantStatus: model.BillOverdue,
			wantNext:   testutil.DatePtr("2024-06-05"),
		},
		{
			name: "dormant bill keeps status",
			bill: func() model.Bill {
				b := monthlyBill("2024-01-01", 5)
				b.Status = model.BillPaid
				b.EndDate = testutil.DatePtr("2024-05-31")
				b.PaidThrough = testutil.DatePtr("2024-05-05")
				return b
			}(),
			wantStatus: model.BillPaid,
		},
		{
			name: "cancelled is untouched",
			bill: func() model.Bill {
				b := monthlyBill("2024-01-01", 5)
				b.Status = model.BillCancelled
				return b
			}(),
			wantStatus: model.BillCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecalculateStatus(tt.bill, today)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantNext, got.NextDueDate)
			assert.Equal(t, got, RecalculateStatus(got, today))
		})
	}
}

func TestMarkPaid_RecurringCycle(t *testing.T) {
	bill := RecalculateStatus(monthlyBill("2024-01-01", 15), day("2024-03-12"))
	require.Equal(t, model.BillOverdue, bill.Status)
	require.Equal(t, day("2024-01-15"), *bill.NextDueDate)

	// Each payment settles the oldest open cycle.
	for _, wantNext := range []string{"2024-02-15", "2024-03-15"} {
		paid, err := MarkPaid(bill, day("2024-03-12"), nil)
		require.NoError(t, err)
		bill = RecalculateStatus(paid, day("2024-03-12"))
		assert.Equal(t, day(wantNext), *bill.NextDueDate)
	}
	assert.Equal(t, model.BillPending, bill.Status)

	paid, err := MarkPaid(bill, day("2024-03-12"), nil)
	require.NoError(t, err)
	bill = RecalculateStatus(paid, day("2024-03-12"))
	assert.Equal(t, model.BillPaid, bill.Status)
	assert.Equal(t, day("2024-04-15"), *bill.NextDueDate)
	assert.True(t, bill.LastPaidAmount.Equal(decimal.NewFromInt(1200)))

	bill = RecalculateStatus(bill, day("2024-03-16"))
	assert.Equal(t, model.BillPending, bill.Status)
	assert.Equal(t, day("2024-04-15"), *bill.NextDueDate)
}

func TestMarkPaid(t *testing.T) {
	partial := decimal.RequireFromString("90.5")
	got, err := MarkPaid(fixedBill("2024-06-01", model.BillOverdue), day("2024-06-10"), &partial)
	require.NoError(t, err)
	assert.Equal(t, model.BillPaid, got.Status)
	assert.Equal(t, day("2024-06-10"), *got.LastPaidDate)
	assert.Equal(t, "90.5", got.LastPaidAmount.String())
	assert.Equal(t, day("2024-06-01"), *got.PaidThrough)

	_, err = MarkPaid(Cancel(got), day("2024-06-10"), nil)
	assert.ErrorIs(t, err, ErrCancelled)

	negative := decimal.NewFromInt(-1)
	_, err = MarkPaid(fixedBill("2024-06-01", model.BillPending), day("2024-06-10"), &negative)
	assert.ErrorIs(t, err, model.ErrInvalidBill)
}

func TestResetPayment(t *testing.T) {
	paid, err := MarkPaid(fixedBill("2024-06-01", model.BillPending), day("2024-06-10"), nil)
	require.NoError(t, err)

	got := ResetPayment(paid, day("2024-06-10"))
	assert.Equal(t, model.BillOverdue, got.Status)
	assert.Nil(t, got.LastPaidDate)
	assert.Nil(t, got.LastPaidAmount)
	assert.Nil(t, got.PaidThrough)
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(fixedBill("2024-06-01", model.BillPaid)))
	assert.True(t, IsSettled(fixedBill("2024-06-01", model.BillCancelled)))
	assert.False(t, IsSettled(fixedBill("2024-06-01", model.BillOverdue)))
	assert.False(t, IsSettled(fixedBill("2024-06-01", model.BillPending)))
}
