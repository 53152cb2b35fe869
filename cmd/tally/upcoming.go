package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
)

func upcomingCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show bills and scheduled transactions coming due",
		Long: `List what falls due from today through the next --days days, plus
anything already overdue. The default comes from upcoming.days.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("days") {
				days = s.cfg.UpcomingDays
			}

			out := cmd.OutOrStdout()
			items := s.app.Upcoming(days)
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Next %d days", days)))
			if len(items) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("Nothing due."))
				return nil
			}

			w := newTable(out, "DATE", "KIND", "DESCRIPTION", "AMOUNT")
			for _, item := range items {
				date := item.Date.Format(time.DateOnly)
				if item.Overdue {
					date = cli.ErrorStyle.Render(date + " overdue")
				}
				kind := cli.CalendarIcon
				if item.Kind == app.UpcomingBill {
					kind = cli.BillIcon
				}
				fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
					date,
					kind,
					item.Kind,
					item.Description,
					cli.FormatSigned(item.Type, item.Amount))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "days ahead to look")

	return cmd
}
