package storage

import (
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

// Reference data: categories, labels, contacts, budgets and goals.

var categoryCodec = entityCodec[model.Category]{
	table:   "categories",
	columns: []string{"id", "name", "type", "color", "icon", "parent_id", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(c model.Category) string { return c.ID },
	values: func(c model.Category) ([]any, error) {
		return []any{
			c.ID, c.Name, string(c.Type), c.Color, c.Icon, c.ParentID,
			timestampValue(c.CreatedAt), timestampValue(c.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Category, error) {
		var (
			c                   model.Category
			categoryType        string
			color, icon, parent sql.NullString
			ts                  timestamps
		)
		if err := row.Scan(&c.ID, &c.Name, &categoryType, &color, &icon, &parent,
			&ts.created, &ts.updated); err != nil {
			return c, err
		}
		c.Type = model.CategoryType(categoryType)
		c.Color = color.String
		c.Icon = icon.String
		c.ParentID = parent.String

		var err error
		c.CreatedAt, c.UpdatedAt, err = ts.parse()
		return c, err
	},
}

var labelCodec = entityCodec[model.Label]{
	table:   "labels",
	columns: []string{"id", "name", "color", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(l model.Label) string { return l.ID },
	values: func(l model.Label) ([]any, error) {
		return []any{l.ID, l.Name, l.Color, timestampValue(l.CreatedAt), timestampValue(l.UpdatedAt)}, nil
	},
	scan: func(row rowScanner) (model.Label, error) {
		var (
			l     model.Label
			color sql.NullString
			ts    timestamps
		)
		if err := row.Scan(&l.ID, &l.Name, &color, &ts.created, &ts.updated); err != nil {
			return l, err
		}
		l.Color = color.String

		var err error
		l.CreatedAt, l.UpdatedAt, err = ts.parse()
		return l, err
	},
}

var contactCodec = entityCodec[model.Contact]{
	table:   "contacts",
	columns: []string{"id", "name", "email", "phone", "notes", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(c model.Contact) string { return c.ID },
	values: func(c model.Contact) ([]any, error) {
		return []any{
			c.ID, c.Name, c.Email, c.Phone, c.Notes,
			timestampValue(c.CreatedAt), timestampValue(c.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Contact, error) {
		var (
			c                   model.Contact
			email, phone, notes sql.NullString
			ts                  timestamps
		)
		if err := row.Scan(&c.ID, &c.Name, &email, &phone, &notes, &ts.created, &ts.updated); err != nil {
			return c, err
		}
		c.Email = email.String
		c.Phone = phone.String
		c.Notes = notes.String

		var err error
		c.CreatedAt, c.UpdatedAt, err = ts.parse()
		return c, err
	},
}

var budgetCodec = entityCodec[model.Budget]{
	table:   "budgets",
	columns: []string{"id", "name", "amount", "period", "category_ids", "start_date", "end_date", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(b model.Budget) string { return b.ID },
	values: func(b model.Budget) ([]any, error) {
		categories, err := stringList(b.CategoryIDs)
		if err != nil {
			return nil, err
		}
		return []any{
			b.ID, b.Name, b.Amount, string(b.Period), categories,
			dateValue(b.StartDate), nullDateValue(b.EndDate),
			timestampValue(b.CreatedAt), timestampValue(b.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Budget, error) {
		var (
			b               model.Budget
			period, start   string
			categories, end sql.NullString
			ts              timestamps
		)
		if err := row.Scan(&b.ID, &b.Name, &b.Amount, &period, &categories, &start, &end,
			&ts.created, &ts.updated); err != nil {
			return b, err
		}
		b.Period = model.BudgetPeriod(period)

		var err error
		if b.CategoryIDs, err = parseStringList(categories); err != nil {
			return b, fmt.Errorf("budget %s categories: %w", b.ID, err)
		}
		if b.StartDate, err = parseDate(start); err != nil {
			return b, err
		}
		if b.EndDate, err = parseNullDate(end); err != nil {
			return b, err
		}
		b.CreatedAt, b.UpdatedAt, err = ts.parse()
		return b, err
	},
}

var goalCodec = entityCodec[model.Goal]{
	table:   "goals",
	columns: []string{"id", "name", "target_amount", "current_amount", "target_date", "account_id", "created_at", "updated_at"},
	orderBy: "name, id",
	id:      func(g model.Goal) string { return g.ID },
	values: func(g model.Goal) ([]any, error) {
		return []any{
			g.ID, g.Name, g.TargetAmount, g.CurrentAmount, nullDateValue(g.TargetDate), g.AccountID,
			timestampValue(g.CreatedAt), timestampValue(g.UpdatedAt),
		}, nil
	},
	scan: func(row rowScanner) (model.Goal, error) {
		var (
			g                   model.Goal
			targetDate, account sql.NullString
			ts                  timestamps
		)
		if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &targetDate, &account,
			&ts.created, &ts.updated); err != nil {
			return g, err
		}
		g.AccountID = account.String

		var err error
		if g.TargetDate, err = parseNullDate(targetDate); err != nil {
			return g, err
		}
		g.CreatedAt, g.UpdatedAt, err = ts.parse()
		return g, err
	},
}
