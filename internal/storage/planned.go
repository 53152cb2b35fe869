package storage

import (
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

var plannedCodec = entityCodec[model.PlannedTransaction]{
	table: "planned_transactions",
	columns: []string{
		"id", "account_id", "to_account_id", "category_id", "type", "amount",
		"description", "item_name", "warranty_until", "label_ids", "payee_ids",
		"scheduled_date", "recurrence", "end_date", "auto_create", "status",
		"last_created_date", "next_occurrence_date", "notify", "notify_days_before",
		"created_at", "updated_at",
	},
	orderBy: "scheduled_date, id",
	id:      func(p model.PlannedTransaction) string { return p.ID },
	values: func(p model.PlannedTransaction) ([]any, error) {
		labels, err := stringList(p.LabelIDs)
		if err != nil {
			return nil, err
		}
		payees, err := stringList(p.PayeeIDs)
		if err != nil {
			return nil, err
		}
		recurrence := p.Recurrence
		if recurrence == "" {
			recurrence = model.RecurrenceNone
		}
		status := p.Status
		if status == "" {
			status = model.PlannedPending
		}
		return []any{
			p.ID, p.AccountID, p.ToAccountID, p.CategoryID, string(p.Type), p.Amount,
			p.Description, p.ItemName, nullDateValue(p.WarrantyUntil), labels, payees,
			dateValue(p.ScheduledDate), string(recurrence), nullDateValue(p.EndDate),
			boolValue(p.AutoCreate), string(status),
			nullDateValue(p.LastCreatedDate), nullDateValue(p.NextOccurrenceDate),
			boolValue(p.Notify), p.NotifyDaysBefore,
			timestampValue(p.CreatedAt), timestampValue(p.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.PlannedTransaction, error) {
		var (
			p                                    model.PlannedTransaction
			toAccount, category, description     sql.NullString
			itemName, warranty, labels, payees   sql.NullString
			endDate, lastCreated, nextOccurrence sql.NullString
			txnType, scheduled, recurrence       string
			status                               string
			ts                                   timestamps
		)
		if err := row.Scan(&p.ID, &p.AccountID, &toAccount, &category, &txnType, &p.Amount,
			&description, &itemName, &warranty, &labels, &payees,
			&scheduled, &recurrence, &endDate, &p.AutoCreate, &status,
			&lastCreated, &nextOccurrence, &p.Notify, &p.NotifyDaysBefore,
			&ts.created, &ts.updated); err != nil {
			return p, err
		}

		p.ToAccountID = toAccount.String
		p.CategoryID = category.String
		p.Type = model.TransactionType(txnType)
		p.Description = description.String
		p.ItemName = itemName.String
		p.Recurrence = model.Recurrence(recurrence)
		p.Status = model.PlannedStatus(status)

		var err error
		if p.ScheduledDate, err = parseDate(scheduled); err != nil {
			return p, err
		}
		if err = parseNullDates(
			nullDate{&p.WarrantyUntil, warranty},
			nullDate{&p.EndDate, endDate},
			nullDate{&p.LastCreatedDate, lastCreated},
			nullDate{&p.NextOccurrenceDate, nextOccurrence},
		); err != nil {
			return p, err
		}
		if p.LabelIDs, err = parseStringList(labels); err != nil {
			return p, fmt.Errorf("planned transaction %s labels: %w", p.ID, err)
		}
		if p.PayeeIDs, err = parseStringList(payees); err != nil {
			return p, fmt.Errorf("planned transaction %s payees: %w", p.ID, err)
		}
		if p.CreatedAt, p.UpdatedAt, err = ts.parse(); err != nil {
			return p, err
		}
		return p, nil
	},
}
