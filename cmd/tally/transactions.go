package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transactions"},
		Short:   "Record and edit transactions",
		Long: `Add, update, delete and list transactions. Every change moves the
affected account balances in the same step.`,
		Example: `  # Groceries paid from checking
  tally txn add --account Everyday --amount 82.15 --description "Corner market" --category Food

  # Move money to savings
  tally txn add --type transfer --account Everyday --to Savings --amount 200`,
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())

	return cmd
}

// txnFlags are the editable fields of a transaction.
type txnFlags struct {
	account     string
	to          string
	txnType     string
	amount      string
	date        string
	clock       string
	description string
	category    string
	item        string
	status      string
	labels      []string
	payees      []string
}

func (f *txnFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.account, "account", "a", "", "account ID or name")
	flags.StringVar(&f.to, "to", "", "destination account for transfers")
	flags.StringVarP(&f.txnType, "type", "t", string(model.TypeExpense), "income, expense or transfer")
	flags.StringVar(&f.amount, "amount", "", "amount, always positive")
	flags.StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
	flags.StringVar(&f.clock, "time", "", "time of day as HH:MM")
	flags.StringVarP(&f.description, "description", "d", "", "description")
	flags.StringVarP(&f.category, "category", "c", "", "category ID or name")
	flags.StringVar(&f.item, "item", "", "item bought")
	flags.StringVar(&f.status, "status", string(model.StatusCleared), "pending, cleared or reconciled")
	flags.StringSliceVar(&f.labels, "labels", nil, "label IDs or names")
	flags.StringSliceVar(&f.payees, "payees", nil, "contact IDs or names")
}

// apply copies the flags set on the command line onto txn.
func (f *txnFlags) apply(flags *pflag.FlagSet, state app.State, txn *model.Transaction) error {
	if flags.Changed("account") {
		acct, err := accountRef(state, f.account)
		if err != nil {
			return err
		}
		txn.AccountID = acct.ID
	}
	if flags.Changed("to") {
		txn.ToAccountID = ""
		if f.to != "" {
			acct, err := accountRef(state, f.to)
			if err != nil {
				return err
			}
			txn.ToAccountID = acct.ID
		}
	}
	if flags.Changed("type") || txn.Type == "" {
		txn.Type = model.TransactionType(f.txnType)
	}
	if flags.Changed("amount") {
		amount, err := parseMoney(f.amount)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	if flags.Changed("date") {
		date, err := parseDate(f.date)
		if err != nil {
			return err
		}
		txn.Date = date
	}
	if flags.Changed("time") {
		txn.Time = f.clock
	}
	if flags.Changed("description") {
		txn.Description = f.description
	}
	if flags.Changed("category") {
		txn.CategoryID = ""
		if f.category != "" {
			cat, err := categoryRef(state, f.category)
			if err != nil {
				return err
			}
			txn.CategoryID = cat.ID
		}
	}
	if flags.Changed("item") {
		txn.ItemName = f.item
	}
	if flags.Changed("status") || txn.Status == "" {
		txn.Status = model.TransactionStatus(f.status)
	}
	if flags.Changed("labels") {
		ids, err := lookupAll(state.Labels, "label", f.labels,
			func(l model.Label) string { return l.ID },
			func(l model.Label) string { return l.Name })
		if err != nil {
			return err
		}
		txn.LabelIDs = ids
	}
	if flags.Changed("payees") {
		ids, err := lookupAll(state.Contacts, "contact", f.payees,
			func(c model.Contact) string { return c.ID },
			func(c model.Contact) string { return c.Name })
		if err != nil {
			return err
		}
		txn.PayeeIDs = ids
	}
	return nil
}

func addTransactionCmd() *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			txn := model.Transaction{Date: s.app.Today()}
			if err := f.apply(cmd.Flags(), s.app.State(), &txn); err != nil {
				return err
			}

			txn, err = s.app.AddTransaction(ctx, txn)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded %s %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				txn.Type,
				cli.FormatSigned(txn.Type, txn.Amount),
				txn.ID)
			return nil
		},
	}

	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func updateTransactionCmd() *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a transaction",
		Long: `Change the fields given on the command line. Balances of every account
the old and new versions touch are corrected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			stored, err := s.store.Transactions().Get(ctx, args[0])
			if err != nil {
				return err
			}
			txn := *stored
			if err := f.apply(cmd.Flags(), s.app.State(), &txn); err != nil {
				return err
			}

			if _, err := s.app.UpdateTransaction(ctx, txn); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated transaction %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				txn.ID)
			return nil
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and reverse its effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.app.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted transaction %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				args[0])
			return nil
		},
	}
}

func listTransactionsCmd() *cobra.Command {
	var (
		account string
		since   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			state := s.app.State()
			var accountID string
			if account != "" {
				acct, err := accountRef(state, account)
				if err != nil {
					return err
				}
				accountID = acct.ID
			}
			from, err := parseOptionalDate(since)
			if err != nil {
				return err
			}

			txns := filterTransactions(state.Transactions, accountID, from)
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No transactions found."))
				return nil
			}

			names := make(map[string]string, len(state.Accounts))
			for _, acct := range state.Accounts {
				names[acct.ID] = acct.Name
			}

			w := newTable(out, "ID", "DATE", "ACCOUNT", "DESCRIPTION", "AMOUNT")
			for _, txn := range txns {
				acct := names[txn.AccountID]
				if txn.Type == model.TypeTransfer {
					acct += " → " + names[txn.ToAccountID]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					cli.SubtleStyle.Render(txn.ID),
					txn.Date.Format(time.DateOnly),
					acct,
					txn.Description,
					cli.FormatSigned(txn.Type, txn.Amount))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "only transactions touching this account")
	cmd.Flags().StringVar(&since, "since", "", "only transactions on or after YYYY-MM-DD")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows, 0 for all")

	return cmd
}

// filterTransactions returns the transactions touching accountID on or after
// from, newest first. Empty filters match everything.
func filterTransactions(txns []model.Transaction, accountID string, from *time.Time) []model.Transaction {
	var result []model.Transaction
	for _, txn := range txns {
		if accountID != "" && !txn.References(accountID) {
			continue
		}
		if from != nil && txn.Date.Before(*from) {
			continue
		}
		result = append(result, txn)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result
}
