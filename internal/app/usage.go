package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// usage reports which kinds of records still reference an entity.
type usage []string

func (u usage) err(kind, id string) error {
	if len(u) == 0 {
		return nil
	}
	return fmt.Errorf("%s %s is referenced by %v: %w", kind, id, []string(u), common.ErrInUse)
}

func (u *usage) note(what string, used bool) {
	if used && !slices.Contains(*u, what) {
		*u = append(*u, what)
	}
}

func accountUsage(ctx context.Context, gw service.Gateway, id string) (usage, error) {
	var u usage
	txns, err := gw.Transactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		u.note("transactions", t.References(id))
	}
	planned, err := gw.PlannedTransactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range planned {
		u.note("planned transactions", p.AccountID == id || p.ToAccountID == id)
	}
	bills, err := gw.Bills().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		u.note("bills", b.AccountID == id)
	}
	goals, err := gw.Goals().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		u.note("goals", g.AccountID == id)
	}
	return u, nil
}

func categoryUsage(ctx context.Context, gw service.Gateway, id string) (usage, error) {
	var u usage
	txns, err := gw.Transactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		used := t.CategoryID == id || slices.ContainsFunc(t.Splits, func(s model.TransactionSplit) bool {
			return s.CategoryID == id
		})
		u.note("transactions", used)
	}
	planned, err := gw.PlannedTransactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range planned {
		u.note("planned transactions", p.CategoryID == id)
	}
	bills, err := gw.Bills().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		u.note("bills", b.CategoryID == id)
	}
	budgets, err := gw.Budgets().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		u.note("budgets", slices.Contains(b.CategoryIDs, id))
	}
	categories, err := gw.Categories().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		u.note("subcategories", c.ParentID == id)
	}
	return u, nil
}

func labelUsage(ctx context.Context, gw service.Gateway, id string) (usage, error) {
	var u usage
	txns, err := gw.Transactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		u.note("transactions", slices.Contains(t.LabelIDs, id))
	}
	planned, err := gw.PlannedTransactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range planned {
		u.note("planned transactions", slices.Contains(p.LabelIDs, id))
	}
	return u, nil
}

func contactUsage(ctx context.Context, gw service.Gateway, id string) (usage, error) {
	var u usage
	txns, err := gw.Transactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		u.note("transactions", slices.Contains(t.PayeeIDs, id))
	}
	planned, err := gw.PlannedTransactions().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range planned {
		u.note("planned transactions", slices.Contains(p.PayeeIDs, id))
	}
	bills, err := gw.Bills().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bills {
		u.note("bills", b.PayeeID == id)
	}
	return u, nil
}

// deleteUnused deletes id from coll unless check finds references to it.
func deleteUnused[E any](ctx context.Context, gw service.Gateway, coll service.Collection[E], kind, id string,
	check func(context.Context, service.Gateway, string) (usage, error),
) error {
	if _, err := coll.Get(ctx, id); err != nil {
		return err
	}
	u, err := check(ctx, gw, id)
	if err != nil {
		return err
	}
	if err := u.err(kind, id); err != nil {
		return err
	}
	return coll.Delete(ctx, id)
}
