package app

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// AddCategory stores a new category.
func (a *App) AddCategory(ctx context.Context, c model.Category) (model.Category, error) {
	c.ID = a.id(c.ID)
	c.CreatedAt, c.UpdatedAt = a.stamp(c.CreatedAt)
	if err := c.Validate(); err != nil {
		return model.Category{}, err
	}
	err := a.mutate(ctx, "add category", func(gw service.Gateway) error {
		return gw.Categories().Add(ctx, c)
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// UpdateCategory replaces a category.
func (a *App) UpdateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if err := c.Validate(); err != nil {
		return model.Category{}, err
	}
	err := a.mutate(ctx, "update category", func(gw service.Gateway) error {
		stored, err := gw.Categories().Get(ctx, c.ID)
		if err != nil {
			return err
		}
		c.CreatedAt, c.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Categories().Update(ctx, c)
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category that no record references.
func (a *App) DeleteCategory(ctx context.Context, id string) error {
	return a.mutate(ctx, "delete category", func(gw service.Gateway) error {
		return deleteUnused(ctx, gw, gw.Categories(), "category", id, categoryUsage)
	})
}

// AddLabel stores a new label.
func (a *App) AddLabel(ctx context.Context, l model.Label) (model.Label, error) {
	l.ID = a.id(l.ID)
	l.CreatedAt, l.UpdatedAt = a.stamp(l.CreatedAt)
	if err := l.Validate(); err != nil {
		return model.Label{}, err
	}
	err := a.mutate(ctx, "add label", func(gw service.Gateway) error {
		return gw.Labels().Add(ctx, l)
	})
	if err != nil {
		return model.Label{}, err
	}
	return l, nil
}

// UpdateLabel replaces a label.
func (a *App) UpdateLabel(ctx context.Context, l model.Label) (model.Label, error) {
	if err := l.Validate(); err != nil {
		return model.Label{}, err
	}
	err := a.mutate(ctx, "update label", func(gw service.Gateway) error {
		stored, err := gw.Labels().Get(ctx, l.ID)
		if err != nil {
			return err
		}
		l.CreatedAt, l.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Labels().Update(ctx, l)
	})
	if err != nil {
		return model.Label{}, err
	}
	return l, nil
}

// DeleteLabel removes a label that no transaction or template carries.
func (a *App) DeleteLabel(ctx context.Context, id string) error {
	return a.mutate(ctx, "delete label", func(gw service.Gateway) error {
		return deleteUnused(ctx, gw, gw.Labels(), "label", id, labelUsage)
	})
}

// AddContact stores a new contact.
func (a *App) AddContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	c.ID = a.id(c.ID)
	c.CreatedAt, c.UpdatedAt = a.stamp(c.CreatedAt)
	if err := c.Validate(); err != nil {
		return model.Contact{}, err
	}
	err := a.mutate(ctx, "add contact", func(gw service.Gateway) error {
		return gw.Contacts().Add(ctx, c)
	})
	if err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

// UpdateContact replaces a contact.
func (a *App) UpdateContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	if err := c.Validate(); err != nil {
		return model.Contact{}, err
	}
	err := a.mutate(ctx, "update contact", func(gw service.Gateway) error {
		stored, err := gw.Contacts().Get(ctx, c.ID)
		if err != nil {
			return err
		}
		c.CreatedAt, c.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Contacts().Update(ctx, c)
	})
	if err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

// DeleteContact removes a contact that is nobody's payee.
func (a *App) DeleteContact(ctx context.Context, id string) error {
	return a.mutate(ctx, "delete contact", func(gw service.Gateway) error {
		return deleteUnused(ctx, gw, gw.Contacts(), "contact", id, contactUsage)
	})
}

// AddBudget stores a new budget.
func (a *App) AddBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	b.ID = a.id(b.ID)
	b.CreatedAt, b.UpdatedAt = a.stamp(b.CreatedAt)
	if err := b.Validate(); err != nil {
		return model.Budget{}, err
	}
	err := a.mutate(ctx, "add budget", func(gw service.Gateway) error {
		return gw.Budgets().Add(ctx, b)
	})
	if err != nil {
		return model.Budget{}, err
	}
	return b, nil
}

// UpdateBudget replaces a budget.
func (a *App) UpdateBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	if err := b.Validate(); err != nil {
		return model.Budget{}, err
	}
	err := a.mutate(ctx, "update budget", func(gw service.Gateway) error {
		stored, err := gw.Budgets().Get(ctx, b.ID)
		if err != nil {
			return err
		}
		b.CreatedAt, b.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Budgets().Update(ctx, b)
	})
	if err != nil {
		return model.Budget{}, err
	}
	return b, nil
}

// DeleteBudget removes a budget.
func (a *App) DeleteBudget(ctx context.Context, id string) error {
	return a.mutate(ctx, "delete budget", func(gw service.Gateway) error {
		return gw.Budgets().Delete(ctx, id)
	})
}

// AddGoal stores a new goal.
func (a *App) AddGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	g.ID = a.id(g.ID)
	g.CreatedAt, g.UpdatedAt = a.stamp(g.CreatedAt)
	if err := g.Validate(); err != nil {
		return model.Goal{}, err
	}
	err := a.mutate(ctx, "add goal", func(gw service.Gateway) error {
		return gw.Goals().Add(ctx, g)
	})
	if err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// UpdateGoal replaces a goal.
func (a *App) UpdateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	if err := g.Validate(); err != nil {
		return model.Goal{}, err
	}
	err := a.mutate(ctx, "update goal", func(gw service.Gateway) error {
		stored, err := gw.Goals().Get(ctx, g.ID)
		if err != nil {
			return err
		}
		g.CreatedAt, g.UpdatedAt = a.stamp(stored.CreatedAt)
		return gw.Goals().Update(ctx, g)
	})
	if err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// DeleteGoal removes a goal.
func (a *App) DeleteGoal(ctx context.Context, id string) error {
	return a.mutate(ctx, "delete goal", func(gw service.Gateway) error {
		return gw.Goals().Delete(ctx, id)
	})
}
