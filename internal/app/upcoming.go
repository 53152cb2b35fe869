package app

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/bills"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/schedule"
)

// maxOccurrences caps how many dates one template contributes to a report.
const maxOccurrences = 366

// UpcomingKind says what produced an upcoming item.
type UpcomingKind string

// Upcoming item kinds.
const (
	UpcomingBill    UpcomingKind = "bill"
	UpcomingPlanned UpcomingKind = "planned"
)

// UpcomingItem is one expected payment or transaction.
type UpcomingItem struct {
	Date        time.Time
	Amount      decimal.Decimal
	Kind        UpcomingKind
	ID          string
	Description string
	AccountID   string
	Type        model.TransactionType
	Overdue     bool
}

// Upcoming lists what falls due from today through the next days days,
// plus anything already overdue, ordered by date.
func (a *App) Upcoming(days int) []UpcomingItem {
	today := a.Today()
	until := today.AddDate(0, 0, days)
	state := a.State()

	var items []UpcomingItem
	for _, pt := range state.PlannedTransactions {
		if !pt.IsActive() {
			continue
		}
		due := pt.DueDate()
		for _, d := range schedule.Occurrences(pt.ScheduledDate, due, pt.Recurrence, pt.EndDate, due, until, maxOccurrences) {
			items = append(items, UpcomingItem{
				Date:        d,
				Amount:      pt.Amount,
				Kind:        UpcomingPlanned,
				ID:          pt.ID,
				Description: pt.Description,
				AccountID:   pt.AccountID,
				Type:        pt.Type,
				Overdue:     d.Before(today),
			})
		}
	}

	for _, b := range state.Bills {
		if b.NextDueDate == nil || b.Status == model.BillCancelled {
			continue
		}
		// A paid fixed bill has nothing left to pay.
		if bills.IsSettled(b) && b.DueDateType == model.DueFixed {
			continue
		}
		due := schedule.Day(*b.NextDueDate)
		if due.After(until) {
			continue
		}
		items = append(items, UpcomingItem{
			Date:        due,
			Amount:      b.Amount,
			Kind:        UpcomingBill,
			ID:          b.ID,
			Description: b.Name,
			AccountID:   b.AccountID,
			Type:        model.TypeExpense,
			Overdue:     b.Status == model.BillOverdue,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		if items[i].Kind != items[j].Kind {
			return items[i].Kind < items[j].Kind
		}
		return items[i].ID < items[j].ID
	})
	return items
}
