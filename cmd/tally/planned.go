package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/planned"
)

func plannedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "planned",
		Aliases: []string{"scheduled"},
		Short:   "Manage scheduled transactions",
		Long: `Scheduled transactions are templates that become real transactions on
their due date. Due templates are booked every time tally starts; "process"
does it on demand.`,
		Example: `  # Rent on the first of every month
  tally planned add --account Everyday --amount 950 --date 2024-07-01 --recurrence monthly -d Rent

  # Book everything that fell due while tally was not run
  tally planned process --catch-up`,
	}

	cmd.AddCommand(addPlannedCmd())
	cmd.AddCommand(listPlannedCmd())
	cmd.AddCommand(processPlannedCmd())
	cmd.AddCommand(skipPlannedCmd())
	cmd.AddCommand(cancelPlannedCmd())

	return cmd
}

func addPlannedCmd() *cobra.Command {
	var (
		f          txnFlags
		recurrence string
		end        string
		manual     bool
		remind     bool
		remindDays int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			// The template shares its fields with the transactions it creates.
			var txn model.Transaction
			if err := f.apply(cmd.Flags(), s.app.State(), &txn); err != nil {
				return err
			}
			scheduled := txn.Date
			if scheduled.IsZero() {
				scheduled = s.app.Today()
			}
			endDate, err := parseOptionalDate(end)
			if err != nil {
				return err
			}

			pt, err := s.app.AddPlanned(ctx, model.PlannedTransaction{
				ScheduledDate:    scheduled,
				EndDate:          endDate,
				Amount:           txn.Amount,
				AccountID:        txn.AccountID,
				ToAccountID:      txn.ToAccountID,
				CategoryID:       txn.CategoryID,
				Description:      txn.Description,
				ItemName:         txn.ItemName,
				Type:             txn.Type,
				Recurrence:       model.Recurrence(recurrence),
				LabelIDs:         txn.LabelIDs,
				PayeeIDs:         txn.PayeeIDs,
				NotifyDaysBefore: remindDays,
				AutoCreate:       !manual,
				Notify:           remind,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Scheduled %s %s from %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				pt.Recurrence,
				cli.FormatSigned(pt.Type, pt.Amount),
				pt.ScheduledDate.Format(time.DateOnly),
				pt.ID)
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", string(model.RecurrenceNone), "none, daily, weekly, monthly or yearly")
	cmd.Flags().StringVar(&end, "end", "", "last date an occurrence may fall on")
	cmd.Flags().BoolVar(&manual, "manual", false, "never book occurrences automatically")
	cmd.Flags().BoolVar(&remind, "notify", false, "schedule reminders")
	cmd.Flags().IntVar(&remindDays, "notify-days", 1, "days before the due date to remind")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listPlannedCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			w := newTable(out, "ID", "DESCRIPTION", "AMOUNT", "NEXT", "REPEATS", "STATUS")
			shown := 0
			for _, pt := range s.app.State().PlannedTransactions {
				if !all && !pt.IsActive() {
					continue
				}
				next := "-"
				if pt.IsActive() {
					next = pt.DueDate().Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(pt.ID),
					pt.Description,
					cli.FormatSigned(pt.Type, pt.Amount),
					next,
					pt.Recurrence,
					pt.Status)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No scheduled transactions."))
				return nil
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include completed, skipped and cancelled ones")

	return cmd
}

func processPlannedCmd() *cobra.Command {
	var catchUp bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Book scheduled transactions that are due",
		Long: `Book one occurrence of every scheduled transaction due today or earlier.
With --catch-up, repeat until nothing is left due, up to
planned.catch_up_limit runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cfg, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := autoCheckpoint(ctx, store, cfg, "process"); err != nil {
				return err
			}

			// Processing is driven here rather than by session start so its
			// result can be reported.
			a := newApp(store)
			var result *planned.Result
			if catchUp {
				result, err = a.CatchUpPlanned(ctx, cfg.CatchUpLimit)
			} else {
				result, err = a.ProcessDuePlannedTransactions(ctx)
			}
			if err != nil {
				return err
			}
			if _, err := a.RecalculateBills(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := make(map[string]string)
			for _, pt := range a.State().PlannedTransactions {
				names[pt.ID] = pt.Description
			}
			for _, txn := range result.Created {
				fmt.Fprintf(out, "  %s %s %s\n",
					txn.Date.Format(time.DateOnly),
					cli.FormatSigned(txn.Type, txn.Amount),
					txn.Description)
			}
			for id, failure := range result.Failed {
				fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", names[id], failure)))
			}

			summary := fmt.Sprintf("Booked %d transaction(s)", len(result.Created))
			if n := len(result.Completed) + len(result.Cancelled); n > 0 {
				summary += fmt.Sprintf(", %d schedule(s) finished", n)
			}
			if len(result.Failed) > 0 {
				fmt.Fprintln(out, cli.FormatWarning(summary+fmt.Sprintf(", %d failed", len(result.Failed))))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&catchUp, "catch-up", false, "repeat until no occurrence is left due")

	return cmd
}

func skipPlannedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip <id>",
		Short: "Skip the next occurrence without booking it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			pt, err := s.app.SkipPlanned(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if pt.IsActive() {
				fmt.Fprintf(out, "%s Skipped; next occurrence %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					pt.DueDate().Format(time.DateOnly))
				return nil
			}
			fmt.Fprintf(out, "%s Skipped; %s is now %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				pt.Description,
				pt.Status)
			return nil
		},
	}
}

func cancelPlannedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Stop a scheduled transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			pt, err := s.app.CancelPlanned(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Cancelled %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				pt.Description)
			return nil
		},
	}
}
