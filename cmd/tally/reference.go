package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
)

func categoryRef(state app.State, ref string) (model.Category, error) {
	return lookup(state.Categories, "category", ref,
		func(c model.Category) string { return c.ID },
		func(c model.Category) string { return c.Name })
}

func contactRef(state app.State, ref string) (model.Contact, error) {
	return lookup(state.Contacts, "contact", ref,
		func(c model.Contact) string { return c.ID },
		func(c model.Contact) string { return c.Name })
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		parent       string
		color        string
		icon         string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			c := model.Category{
				Name:  args[0],
				Type:  model.CategoryType(categoryType),
				Color: color,
				Icon:  icon,
			}
			if parent != "" {
				p, err := categoryRef(s.app.State(), parent)
				if err != nil {
					return err
				}
				c.ParentID = p.ID
			}

			c, err = s.app.AddCategory(ctx, c)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s category %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				c.Type,
				cli.InfoStyle.Render(c.Name),
				c.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	cmd.Flags().StringVar(&parent, "parent", "", "parent category ID or name")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			categories := s.app.State().Categories
			if len(categories) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No categories yet."))
				return nil
			}

			names := make(map[string]string, len(categories))
			for _, c := range categories {
				names[c.ID] = c.Name
			}

			w := newTable(out, "ID", "NAME", "TYPE", "PARENT")
			for _, c := range categories {
				parent := names[c.ParentID]
				if parent == "" {
					parent = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(c.ID),
					c.Name,
					c.Type,
					parent)
			}
			return w.Flush()
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category nothing references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := categoryRef(s.app.State(), args[0])
			if err != nil {
				return err
			}
			if err := s.app.DeleteCategory(ctx, c.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted category %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(c.Name))
			return nil
		},
	}
}

func labelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Aliases: []string{"label"},
		Short:   "Manage labels",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			l, err := s.app.AddLabel(ctx, model.Label{Name: args[0], Color: color})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added label %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(l.Name),
				l.ID)
			return nil
		},
	}
	add.Flags().StringVar(&color, "color", "", "display color")

	list := &cobra.Command{
		Use:   "list",
		Short: "List labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w := newTable(cmd.OutOrStdout(), "ID", "NAME", "COLOR")
			for _, l := range s.app.State().Labels {
				fmt.Fprintf(w, "%s\t%s\t%s\n", cli.SubtleStyle.Render(l.ID), l.Name, l.Color)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact", "payees"},
		Short:   "Manage payees and payers",
	}

	var email, phone, notes string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.app.AddContact(ctx, model.Contact{
				Name:  args[0],
				Email: email,
				Phone: phone,
				Notes: notes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added contact %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(c.Name),
				c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&notes, "notes", "", "free-form notes")

	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w := newTable(cmd.OutOrStdout(), "ID", "NAME", "EMAIL", "PHONE")
			for _, c := range s.app.State().Contacts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cli.SubtleStyle.Render(c.ID), c.Name, c.Email, c.Phone)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage spending budgets",
	}

	var (
		amount     string
		period     string
		start      string
		end        string
		categories []string
	)
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, err := parseMoney(amount)
			if err != nil {
				return err
			}
			endDate, err := parseOptionalDate(end)
			if err != nil {
				return err
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			startDate := s.app.Today()
			if start != "" {
				if startDate, err = parseDate(start); err != nil {
					return err
				}
			}
			ids, err := lookupAll(s.app.State().Categories, "category", categories,
				func(c model.Category) string { return c.ID },
				func(c model.Category) string { return c.Name })
			if err != nil {
				return err
			}

			b, err := s.app.AddBudget(ctx, model.Budget{
				Name:        args[0],
				Amount:      limit,
				Period:      model.BudgetPeriod(period),
				StartDate:   startDate,
				EndDate:     endDate,
				CategoryIDs: ids,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s budget %s of %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				b.Period,
				cli.InfoStyle.Render(b.Name),
				cli.Money(b.Amount),
				b.ID)
			return nil
		},
	}
	add.Flags().StringVar(&amount, "amount", "", "spending limit per period")
	add.Flags().StringVarP(&period, "period", "p", string(model.PeriodMonthly), "weekly, monthly or yearly")
	add.Flags().StringVar(&start, "start", "", "first day of the budget (default today)")
	add.Flags().StringVar(&end, "end", "", "last day of the budget")
	add.Flags().StringSliceVarP(&categories, "categories", "c", nil, "category IDs or names the budget covers")
	_ = add.MarkFlagRequired("amount")

	list := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			state := s.app.State()
			names := make(map[string]string, len(state.Categories))
			for _, c := range state.Categories {
				names[c.ID] = c.Name
			}

			w := newTable(cmd.OutOrStdout(), "ID", "NAME", "PERIOD", "AMOUNT", "CATEGORIES")
			for _, b := range state.Budgets {
				covered := make([]string, 0, len(b.CategoryIDs))
				for _, id := range b.CategoryIDs {
					covered = append(covered, names[id])
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(b.ID),
					b.Name,
					b.Period,
					cli.Money(b.Amount),
					strings.Join(covered, ", "))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Manage savings goals",
	}

	var target, current, account, by string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			targetAmount, err := parseMoney(target)
			if err != nil {
				return err
			}
			currentAmount, err := parseMoney(current)
			if err != nil {
				return err
			}
			targetDate, err := parseOptionalDate(by)
			if err != nil {
				return err
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			g := model.Goal{
				Name:          args[0],
				TargetAmount:  targetAmount,
				CurrentAmount: currentAmount,
				TargetDate:    targetDate,
			}
			if account != "" {
				acct, err := accountRef(s.app.State(), account)
				if err != nil {
					return err
				}
				g.AccountID = acct.ID
			}

			g, err = s.app.AddGoal(ctx, g)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added goal %s of %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(g.Name),
				cli.Money(g.TargetAmount),
				g.ID)
			return nil
		},
	}
	add.Flags().StringVar(&target, "target", "", "amount to save")
	add.Flags().StringVar(&current, "current", "0", "amount saved so far")
	add.Flags().StringVarP(&account, "account", "a", "", "account the savings are kept in")
	add.Flags().StringVar(&by, "by", "", "target date, YYYY-MM-DD")
	_ = add.MarkFlagRequired("target")

	list := &cobra.Command{
		Use:   "list",
		Short: "List savings goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w := newTable(cmd.OutOrStdout(), "ID", "NAME", "SAVED", "TARGET", "PROGRESS", "BY")
			for _, g := range s.app.State().Goals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
					cli.SubtleStyle.Render(g.ID),
					g.Name,
					cli.Money(g.CurrentAmount),
					cli.Money(g.TargetAmount),
					goalProgress(g).StringFixed(0),
					formatDate(g.TargetDate))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

// goalProgress is the saved share of the target in percent.
func goalProgress(g model.Goal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Mul(decimal.NewFromInt(100)).Div(g.TargetAmount)
}
