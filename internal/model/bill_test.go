package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBill_Validate(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	base := func() Bill {
		return Bill{
			ID:          "bill-1",
			Name:        "Rent",
			Amount:      decimal.NewFromInt(1500),
			AccountID:   "acc-1",
			Recurrence:  RecurrenceMonthly,
			Status:      BillPending,
			DueDateType: DueRecurring,
			DueDay:      1,
			StartDate:   start,
		}
	}

	tests := []struct {
		mutate  func(*Bill)
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "recurring with due day", mutate: func(*Bill) {}},
		{
			name: "fixed with due date",
			mutate: func(b *Bill) {
				b.DueDateType = DueFixed
				b.DueDay = 0
				b.DueDate = &due
				b.Recurrence = RecurrenceNone
			},
		},
		{
			name:    "fixed without due date",
			mutate:  func(b *Bill) { b.DueDateType = DueFixed },
			wantErr: true,
			errMsg:  "fixed bills need a due date",
		},
		{
			name:    "recurring due day out of range",
			mutate:  func(b *Bill) { b.DueDay = 32 },
			wantErr: true,
			errMsg:  "due day must be between 1 and 31",
		},
		{
			name: "weekly due day is a weekday",
			mutate: func(b *Bill) {
				b.Recurrence = RecurrenceWeekly
				b.DueDay = 9
			},
			wantErr: true,
			errMsg:  "between 1 and 7",
		},
		{
			name: "end before start",
			mutate: func(b *Bill) {
				end := start.AddDate(0, 0, -1)
				b.EndDate = &end
			},
			wantErr: true,
			errMsg:  "end date is before start date",
		},
		{
			name:    "unknown status",
			mutate:  func(b *Bill) { b.Status = "late" },
			wantErr: true,
			errMsg:  "unknown status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base()
			tt.mutate(&b)
			err := b.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBill)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPlannedTransaction_DueDate(t *testing.T) {
	scheduled := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	p := PlannedTransaction{ScheduledDate: scheduled}
	assert.Equal(t, scheduled, p.DueDate())
	assert.True(t, p.IsActive(), "empty status counts as pending")

	p.NextOccurrenceDate = &next
	p.Status = PlannedCancelled
	assert.Equal(t, next, p.DueDate())
	assert.False(t, p.IsActive())
}
