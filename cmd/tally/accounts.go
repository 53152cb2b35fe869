package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts",
		Long: `Create, list and delete accounts, and check their balances against the
transaction history.`,
		Example: `  # Open a checking account with its current balance
  tally accounts add "Everyday" --type checking --opening 1250.00 --institution "First Bank"

  # Find balances that drifted from the transaction history and fix them
  tally accounts reconcile --repair`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(deleteAccountCmd())
	cmd.AddCommand(reconcileCmd())

	return cmd
}

func accountRef(state app.State, ref string) (model.Account, error) {
	return lookup(state.Accounts, "account", ref,
		func(a model.Account) string { return a.ID },
		func(a model.Account) string { return a.Name })
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		opening     string
		color       string
		icon        string
		institution string
		last4       string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			balance, err := parseMoney(opening)
			if err != nil {
				return err
			}

			acct := model.Account{
				Name:           args[0],
				Type:           model.AccountType(accountType),
				OpeningBalance: balance,
				Color:          color,
				Icon:           icon,
			}
			if institution != "" || last4 != "" {
				details, err := accountDetails(acct.Type, institution, last4)
				if err != nil {
					return err
				}
				acct.Details = details
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			acct, err = s.app.AddAccount(ctx, acct)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Added account %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(acct.Name),
				acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", string(model.AccountChecking), "account type (checking, savings, credit_card, cash, ...)")
	cmd.Flags().StringVar(&opening, "opening", "0", "opening balance")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")
	cmd.Flags().StringVar(&institution, "institution", "", "bank, card issuer or broker")
	cmd.Flags().StringVar(&last4, "last4", "", "last four digits of the account or card number")

	return cmd
}

// accountDetails builds the details variant the account type carries.
func accountDetails(t model.AccountType, institution, last4 string) (model.AccountDetails, error) {
	switch model.DetailsKindFor(t) {
	case model.DetailsBank:
		return model.BankDetails{Institution: institution, AccountLast4: last4}, nil
	case model.DetailsCreditCard:
		return model.CreditCardDetails{Issuer: institution, CardLast4: last4}, nil
	case model.DetailsInvestment:
		return model.InvestmentDetails{Broker: institution, AccountLast4: last4}, nil
	case model.DetailsLoan:
		return model.LoanDetails{Lender: institution}, nil
	case model.DetailsCrypto:
		return model.CryptoDetails{Exchange: institution}, nil
	case model.DetailsPrepaid:
		return model.PrepaidDetails{Issuer: institution}, nil
	}
	return nil, common.NewUserError(fmt.Sprintf("%s accounts take no institution details", t), model.ErrInvalidAccount)
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			accounts := s.app.State().Accounts
			if len(accounts) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No accounts yet."))
				return nil
			}

			w := newTable(out, "ID", "NAME", "TYPE", "BALANCE")
			total := decimal.Zero
			for _, acct := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(acct.ID),
					acct.Name,
					acct.Type,
					cli.FormatBalance(acct.Balance))
				total = total.Add(acct.Balance)
			}
			fmt.Fprintf(w, "\t%s\t\t%s\n", cli.BoldStyle.Render("Total"), cli.FormatBalance(total))
			return w.Flush()
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account nothing references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			acct, err := accountRef(s.app.State(), args[0])
			if err != nil {
				return err
			}
			if err := s.app.DeleteAccount(ctx, acct.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted account %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(acct.Name))
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored balances with the transaction history",
		Long: `Replay every account's transactions over its opening balance and report
accounts whose stored balance disagrees. With --repair the stored balances
are corrected.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			drifts, err := s.app.ReconcileBalances(ctx, repair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess("All balances match their transactions"))
				return nil
			}

			w := newTable(out, "ACCOUNT", "STORED", "EXPECTED", "DIFFERENCE")
			for _, d := range drifts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					d.Name,
					cli.Money(d.Stored),
					cli.Money(d.Expected),
					cli.FormatBalance(d.Difference()))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if repair {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Repaired %d account(s)", len(drifts))))
			} else {
				fmt.Fprintln(out, cli.FormatWarning("Run with --repair to correct these balances"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "correct drifted balances")

	return cmd
}
