package storage

import (
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

var accountCodec = entityCodec[model.Account]{
	table:   "accounts",
	columns: []string{"id", "name", "type", "balance", "opening_balance", "color", "icon", "details", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(a model.Account) string { return a.ID },
	values: func(a model.Account) ([]any, error) {
		details, err := model.MarshalDetails(a.Details)
		if err != nil {
			return nil, err
		}
		return []any{
			a.ID, a.Name, string(a.Type), a.Balance, a.OpeningBalance,
			a.Color, a.Icon, details,
			timestampValue(a.CreatedAt), timestampValue(a.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Account, error) {
		var (
			a                  model.Account
			accountType        string
			color, icon, extra sql.NullString
			ts                 timestamps
		)
		if err := row.Scan(&a.ID, &a.Name, &accountType, &a.Balance, &a.OpeningBalance,
			&color, &icon, &extra, &ts.created, &ts.updated); err != nil {
			return a, err
		}

		a.Type = model.AccountType(accountType)
		a.Color = color.String
		a.Icon = icon.String

		details, err := model.UnmarshalDetails(a.Type, extra.String)
		if err != nil {
			return a, fmt.Errorf("account %s details: %w", a.ID, err)
		}
		a.Details = details

		if a.CreatedAt, a.UpdatedAt, err = ts.parse(); err != nil {
			return a, err
		}
		return a, nil
	},
}
