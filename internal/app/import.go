package app

import (
	"context"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Progress receives one tick per processed statement row.
type Progress interface {
	Add(n int) error
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportStatement books statement rows on accountID. Rows whose ExternalID
// the account already holds are skipped, so re-importing the same statement
// is harmless. The import is all or nothing.
func (a *App) ImportStatement(ctx context.Context, accountID string, rows []model.Transaction, progress Progress) (ImportResult, error) {
	var result ImportResult
	err := a.mutate(ctx, "import statement", func(gw service.Gateway) error {
		result = ImportResult{}
		if _, err := gw.Accounts().Get(ctx, accountID); err != nil {
			return err
		}

		existing, err := gw.Transactions().GetAll(ctx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, t := range existing {
			if t.AccountID == accountID && t.ExternalID != "" {
				seen[t.ExternalID] = true
			}
		}

		books := ledger.New(gw, a.clock)
		for _, row := range rows {
			if progress != nil {
				_ = progress.Add(1)
			}
			if row.ExternalID != "" && seen[row.ExternalID] {
				result.Skipped++
				continue
			}
			row.ID = a.id(row.ID)
			row.AccountID = accountID
			if _, err := books.Add(ctx, row); err != nil {
				return err
			}
			if row.ExternalID != "" {
				seen[row.ExternalID] = true
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	common.LogInfo(ctx, "Statement imported", common.Fields{
		"account":  accountID,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
	return result, nil
}
