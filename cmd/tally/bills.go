package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bills",
		Aliases: []string{"bill"},
		Short:   "Track bills and their payments",
		Long: `Bills are obligations with a due date: a single date for one-off bills,
or a day of the month (or week, or year) for recurring ones. Their status is
refreshed for today every time tally starts.`,
		Example: `  # Electricity due on the 12th of each month
  tally bills add Electricity --amount 85 --account Everyday --day 12

  # Pay it and book the payment as an expense
  tally bills pay Electricity --record`,
	}

	cmd.AddCommand(addBillCmd())
	cmd.AddCommand(listBillsCmd())
	cmd.AddCommand(payBillCmd())
	cmd.AddCommand(resetBillCmd())
	cmd.AddCommand(cancelBillCmd())
	cmd.AddCommand(recalcBillsCmd())

	return cmd
}

func billRef(state app.State, ref string) (model.Bill, error) {
	return lookup(state.Bills, "bill", ref,
		func(b model.Bill) string { return b.ID },
		func(b model.Bill) string { return b.Name })
}

func addBillCmd() *cobra.Command {
	var (
		amount     string
		account    string
		category   string
		payee      string
		due        string
		day        int
		recurrence string
		start      string
		end        string
		notes      string
		autoPay    bool
		remind     bool
		remindDays int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bill",
		Long:  `Add a bill. Give --due for a one-off bill or --day for a recurring one.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if (due == "") == (day == 0) {
				return common.NewUserError("give exactly one of --due or --day", model.ErrInvalidBill)
			}
			value, err := parseMoney(amount)
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

			state := s.app.State()
			acct, err := accountRef(state, account)
			if err != nil {
				return err
			}

			bill := model.Bill{
				Name:             args[0],
				Amount:           value,
				AccountID:        acct.ID,
				EndDate:          endDate,
				Notes:            notes,
				AutoPay:          autoPay,
				Notify:           remind,
				NotifyDaysBefore: remindDays,
			}
			if category != "" {
				cat, err := categoryRef(state, category)
				if err != nil {
					return err
				}
				bill.CategoryID = cat.ID
			}
			if payee != "" {
				contact, err := contactRef(state, payee)
				if err != nil {
					return err
				}
				bill.PayeeID = contact.ID
			}

			if due != "" {
				dueDate, err := parseDate(due)
				if err != nil {
					return err
				}
				bill.DueDateType = model.DueFixed
				bill.Recurrence = model.RecurrenceNone
				bill.DueDate = &dueDate
				bill.StartDate = dueDate
			} else {
				bill.DueDateType = model.DueRecurring
				bill.Recurrence = model.Recurrence(recurrence)
				bill.DueDay = day
				bill.StartDate = s.app.Today()
				if start != "" {
					if bill.StartDate, err = parseDate(start); err != nil {
						return err
					}
				}
			}

			bill, err = s.app.AddBill(ctx, bill)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added bill %s, next due %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(bill.Name),
				formatDate(bill.NextDueDate),
				bill.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount due each cycle")
	cmd.Flags().StringVarP(&account, "account", "a", "", "account the bill is paid from")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category ID or name")
	cmd.Flags().StringVar(&payee, "payee", "", "contact ID or name")
	cmd.Flags().StringVar(&due, "due", "", "due date of a one-off bill, YYYY-MM-DD")
	cmd.Flags().IntVar(&day, "day", 0, "due day of the cycle for a recurring bill")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", string(model.RecurrenceMonthly), "cycle of a recurring bill: weekly, monthly or yearly")
	cmd.Flags().StringVar(&start, "start", "", "first cycle of a recurring bill (default today)")
	cmd.Flags().StringVar(&end, "end", "", "last date the bill is due")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&autoPay, "autopay", false, "the bill is paid automatically")
	cmd.Flags().BoolVar(&remind, "notify", false, "schedule reminders")
	cmd.Flags().IntVar(&remindDays, "notify-days", 3, "days before the due date to remind")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func listBillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bills with their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			bills := s.app.State().Bills
			if len(bills) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No bills yet."))
				return nil
			}

			w := newTable(out, "ID", "NAME", "AMOUNT", "NEXT DUE", "PAID THROUGH", "STATUS")
			for _, b := range bills {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(b.ID),
					b.Name,
					cli.Money(b.Amount),
					formatDate(b.NextDueDate),
					formatDate(b.PaidThrough),
					cli.FormatBillStatus(b.Status))
			}
			return w.Flush()
		},
	}
}

func payBillCmd() *cobra.Command {
	var (
		amount string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "pay <bill>",
		Short: "Mark the bill's current cycle paid",
		Long: `Mark the bill's current cycle paid. With --record the payment is also
booked as an expense from the bill's account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var paid *decimal.Decimal
			if amount != "" {
				value, err := parseMoney(amount)
				if err != nil {
					return err
				}
				paid = &value
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			bill, err := billRef(s.app.State(), args[0])
			if err != nil {
				return err
			}
			bill, err = s.app.PayBill(ctx, bill.ID, paid, record)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Paid %s %s", bill.Name, cli.Money(*bill.LastPaidAmount))
			if record {
				msg += " and booked the payment"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount paid (default the bill amount)")
	cmd.Flags().BoolVar(&record, "record", false, "also book the payment as an expense")

	return cmd
}

func resetBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <bill>",
		Short: "Forget the bill's last payment",
		Long: `Forget the bill's last payment. A booked payment transaction is kept;
delete it with "tally txn delete" if needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeBill(cmd, args[0], "Reset", (*app.App).ResetBill)
		},
	}
}

func cancelBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <bill>",
		Short: "Stop tracking a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeBill(cmd, args[0], "Cancelled", (*app.App).CancelBill)
		},
	}
}

func changeBill(cmd *cobra.Command, ref, verb string,
	change func(*app.App, context.Context, string) (model.Bill, error),
) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	bill, err := billRef(s.app.State(), ref)
	if err != nil {
		return err
	}
	bill, err = change(s.app, ctx, bill.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s, now %s\n",
		cli.SuccessStyle.Render(cli.SuccessIcon),
		verb,
		bill.Name,
		cli.FormatBillStatus(bill.Status))
	return nil
}

func recalcBillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Refresh every bill's due date and status for today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			changed, err := newApp(store).RecalculateBills(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, b := range changed {
				fmt.Fprintf(out, "  %s %s, due %s\n", b.Name, cli.FormatBillStatus(b.Status), formatDate(b.NextDueDate))
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d bill(s) changed", len(changed))))
			return nil
		},
	}
}
