package storage

import (
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

var billCodec = entityCodec[model.Bill]{
	table: "bills",
	columns: []string{
		"id", "name", "amount", "category_id", "account_id", "payee_id", "notes",
		"due_date_type", "due_date", "due_day", "recurrence", "start_date", "end_date",
		"last_paid_date", "last_paid_amount", "paid_through", "next_due_date", "status",
		"auto_pay", "notify", "notify_days_before", "created_at", "updated_at",
	},
	orderBy: "name, id",
	id:      func(b model.Bill) string { return b.ID },
	values: func(b model.Bill) ([]any, error) {
		var startDate any
		if !b.StartDate.IsZero() {
			startDate = dateValue(b.StartDate)
		}
		var lastPaidAmount any
		if b.LastPaidAmount != nil {
			lastPaidAmount = *b.LastPaidAmount
		}
		recurrence := b.Recurrence
		if recurrence == "" {
			recurrence = model.RecurrenceNone
		}
		return []any{
			b.ID, b.Name, b.Amount, b.CategoryID, b.AccountID, b.PayeeID, b.Notes,
			string(b.DueDateType), nullDateValue(b.DueDate), b.DueDay, string(recurrence),
			startDate, nullDateValue(b.EndDate),
			nullDateValue(b.LastPaidDate), lastPaidAmount, nullDateValue(b.PaidThrough),
			nullDateValue(b.NextDueDate), string(b.Status),
			boolValue(b.AutoPay), boolValue(b.Notify), b.NotifyDaysBefore,
			timestampValue(b.CreatedAt), timestampValue(b.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Bill, error) {
		var (
			b                                  model.Bill
			category, account, payee, notes    sql.NullString
			dueDate, startDate, endDate        sql.NullString
			lastPaid, paidThrough, nextDueDate sql.NullString
			lastPaidAmount                     decimal.NullDecimal
			dueDateType, recurrence, status    string
			ts                                 timestamps
		)
		if err := row.Scan(&b.ID, &b.Name, &b.Amount, &category, &account, &payee, &notes,
			&dueDateType, &dueDate, &b.DueDay, &recurrence, &startDate, &endDate,
			&lastPaid, &lastPaidAmount, &paidThrough, &nextDueDate, &status,
			&b.AutoPay, &b.Notify, &b.NotifyDaysBefore, &ts.created, &ts.updated); err != nil {
			return b, err
		}

		b.CategoryID = category.String
		b.AccountID = account.String
		b.PayeeID = payee.String
		b.Notes = notes.String
		b.DueDateType = model.DueDateType(dueDateType)
		b.Recurrence = model.Recurrence(recurrence)
		b.Status = model.BillStatus(status)
		if lastPaidAmount.Valid {
			amount := lastPaidAmount.Decimal
			b.LastPaidAmount = &amount
		}

		var err error
		if startDate.Valid && startDate.String != "" {
			if b.StartDate, err = parseDate(startDate.String); err != nil {
				return b, err
			}
		}
		if err = parseNullDates(
			nullDate{&b.DueDate, dueDate},
			nullDate{&b.EndDate, endDate},
			nullDate{&b.LastPaidDate, lastPaid},
			nullDate{&b.PaidThrough, paidThrough},
			nullDate{&b.NextDueDate, nextDueDate},
		); err != nil {
			return b, err
		}
		if b.CreatedAt, b.UpdatedAt, err = ts.parse(); err != nil {
			return b, err
		}
		return b, nil
	},
}
