package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports",
	}

	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		account   string
		statement string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import the transactions of OFX or QFX (Quicken) files exported from your
bank onto one local account. Rows already imported are recognised by their
bank transaction ID and skipped, so overlapping exports are safe.`,
		Example: `  # Import a month of checking activity
  tally import ofx ~/Downloads/checking_jan.qfx --account Everyday

  # Import every export in a directory
  tally import ofx ~/Downloads/Chase/*.qfx --account Everyday

  # A file holding several accounts: pick the bank account number
  tally import ofx combined.ofx --account Visa --statement 4111`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			var rows []model.Transaction
			for _, path := range files {
				fileRows, err := readStatementFile(ctx, path, statement)
				if err != nil {
					return err
				}
				slog.Info("Read statement file",
					"file", filepath.Base(path),
					"transactions", len(fileRows))
				rows = append(rows, fileRows...)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				w := newTable(out, "DATE", "DESCRIPTION", "AMOUNT", "BANK ID")
				for _, row := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						row.Date.Format("2006-01-02"),
						row.Description,
						cli.FormatSigned(row.Type, row.Amount),
						row.ExternalID)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transaction(s) read, nothing saved", len(rows))))
				return nil
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			acct, err := accountRef(s.app.State(), account)
			if err != nil {
				return err
			}
			if err := autoCheckpoint(ctx, s.store, s.cfg, "import"); err != nil {
				return err
			}

			var progress app.Progress
			if len(rows) > 0 {
				bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(rows), "Importing")
				defer func() { _ = bar.Finish() }()
				progress = bar
			}
			result, err := s.app.ImportStatement(ctx, acct.ID, rows, progress)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s) into %s, skipped %d already imported",
				result.Imported, acct.Name, result.Skipped)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "local account ID or name to import into")
	cmd.Flags().StringVar(&statement, "statement", "", "only import the statement of this bank account number")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be imported without saving")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// expandFiles resolves glob patterns. Arguments matching nothing must name
// existing files.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err != nil {
			return nil, common.NewUserError(fmt.Sprintf("no files match %s", pattern), err)
		}
		files = append(files, pattern)
	}
	return files, nil
}

// readStatementFile parses one file. A non-empty statement keeps only the
// statement of that bank account number.
func readStatementFile(ctx context.Context, path, statement string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	statements, err := ofx.NewParser().Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var rows []model.Transaction
	for _, stmt := range statements {
		if statement != "" && stmt.AccountID != statement {
			continue
		}
		rows = append(rows, stmt.Transactions...)
	}
	return rows, nil
}
