package storage

import (
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

var transactionCodec = entityCodec[model.Transaction]{
	table: "transactions",
	columns: []string{
		"id", "account_id", "to_account_id", "category_id", "type", "amount",
		"description", "date", "time", "status", "label_ids", "payee_ids", "splits",
		"item_name", "warranty_until", "planned_id", "external_id", "created_at", "updated_at",
	},
	orderBy: "date DESC, time DESC, created_at DESC, id",
	id:      func(t model.Transaction) string { return t.ID },
	values: func(t model.Transaction) ([]any, error) {
		labels, err := stringList(t.LabelIDs)
		if err != nil {
			return nil, err
		}
		payees, err := stringList(t.PayeeIDs)
		if err != nil {
			return nil, err
		}
		var splits any
		if len(t.Splits) > 0 {
			if splits, err = jsonValue(t.Splits); err != nil {
				return nil, err
			}
		}
		return []any{
			t.ID, t.AccountID, t.ToAccountID, t.CategoryID, string(t.Type), t.Amount,
			t.Description, dateValue(t.Date), t.Time, string(t.Status), labels, payees, splits,
			t.ItemName, nullDateValue(t.WarrantyUntil), t.PlannedID, t.ExternalID,
			timestampValue(t.CreatedAt), timestampValue(t.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Transaction, error) {
		var (
			t                                  model.Transaction
			toAccount, category, description   sql.NullString
			clock, status, labels, payees      sql.NullString
			splits, itemName, warranty, planID sql.NullString
			txnType, date, externalID          string
			ts                                 timestamps
		)
		if err := row.Scan(&t.ID, &t.AccountID, &toAccount, &category, &txnType, &t.Amount,
			&description, &date, &clock, &status, &labels, &payees, &splits,
			&itemName, &warranty, &planID, &externalID, &ts.created, &ts.updated); err != nil {
			return t, err
		}

		t.ToAccountID = toAccount.String
		t.CategoryID = category.String
		t.Type = model.TransactionType(txnType)
		t.Description = description.String
		t.Time = clock.String
		t.Status = model.TransactionStatus(status.String)
		t.ItemName = itemName.String
		t.PlannedID = planID.String
		t.ExternalID = externalID

		var err error
		if t.Date, err = parseDate(date); err != nil {
			return t, err
		}
		if t.WarrantyUntil, err = parseNullDate(warranty); err != nil {
			return t, err
		}
		if t.LabelIDs, err = parseStringList(labels); err != nil {
			return t, fmt.Errorf("transaction %s labels: %w", t.ID, err)
		}
		if t.PayeeIDs, err = parseStringList(payees); err != nil {
			return t, fmt.Errorf("transaction %s payees: %w", t.ID, err)
		}
		if err = decodeJSON(splits, &t.Splits); err != nil {
			return t, fmt.Errorf("transaction %s splits: %w", t.ID, err)
		}
		if t.CreatedAt, t.UpdatedAt, err = ts.parse(); err != nil {
			return t, err
		}
		return t, nil
	},
}
