package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

func accountByRef(accounts []model.Account, ref string) (model.Account, error) {
	return lookup(accounts, "account", ref,
		func(a model.Account) string { return a.ID },
		func(a model.Account) string { return a.Name })
}

func TestLookup(t *testing.T) {
	accounts := []model.Account{
		{ID: "a1", Name: "Everyday"},
		{ID: "a2", Name: "Savings"},
		{ID: "a3", Name: "Joint"},
		{ID: "a4", Name: "joint"},
		{ID: "Savings", Name: "Odd one"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr string
	}{
		{name: "by ID", ref: "a2", wantID: "a2"},
		{name: "by name ignoring case", ref: "everyday", wantID: "a1"},
		{name: "ID wins over name", ref: "Savings", wantID: "Savings"},
		{name: "ambiguous name", ref: "JOINT", wantErr: "use the ID"},
		{name: "missing", ref: "Brokerage", wantErr: `no account named "Brokerage"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := accountByRef(accounts, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, acct.ID)
		})
	}

	_, err := accountByRef(accounts, "nope")
	assert.True(t, common.IsNotFound(err))
	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "12.50", want: "12.5"},
		{input: "$1250", want: "1250"},
		{input: " 0.01 ", want: "0.01"},
		{input: "-5", want: "-5"},
		{input: "twelve", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseMoney(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	date, err := parseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), date)

	_, err = parseDate("02/29/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM-DD")

	none, err := parseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, none)

	some, err := parseOptionalDate("2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, some)
	assert.Equal(t, "2024-03-01", formatDate(some))
	assert.Equal(t, "-", formatDate(nil))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.0 KB", formatFileSize(1024))
	assert.Equal(t, "1.5 MB", formatFileSize(1536*1024))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "yesterday"},
		{3 * 24 * time.Hour, "3 days ago"},
		{10 * 24 * time.Hour, "2024-06-05 12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatRelativeTime(now.Add(-tt.ago), now))
		})
	}
}

func TestFilterTransactions(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC) }
	txns := []model.Transaction{
		{ID: "t1", AccountID: "a", Type: model.TypeExpense, Date: day(1)},
		{ID: "t2", AccountID: "b", Type: model.TypeExpense, Date: day(3)},
		{ID: "t3", AccountID: "b", ToAccountID: "a", Type: model.TypeTransfer, Date: day(2)},
		{ID: "t4", AccountID: "a", Type: model.TypeIncome, Date: day(3)},
	}

	var ids []string
	for _, txn := range filterTransactions(txns, "", nil) {
		ids = append(ids, txn.ID)
	}
	assert.Equal(t, []string{"t4", "t2", "t3", "t1"}, ids)

	ids = nil
	from := day(2)
	for _, txn := range filterTransactions(txns, "a", &from) {
		ids = append(ids, txn.ID)
	}
	assert.Equal(t, []string{"t4", "t3"}, ids, "transfers into the account count")
}

func TestAccountDetails(t *testing.T) {
	details, err := accountDetails(model.AccountCreditCard, "Big Bank", "4242")
	require.NoError(t, err)
	assert.Equal(t, model.CreditCardDetails{Issuer: "Big Bank", CardLast4: "4242"}, details)

	details, err = accountDetails(model.AccountSavings, "Credit Union", "")
	require.NoError(t, err)
	assert.Equal(t, model.BankDetails{Institution: "Credit Union"}, details)

	_, err = accountDetails(model.AccountCash, "Mattress", "")
	assert.ErrorIs(t, err, model.ErrInvalidAccount)
}

func TestGoalProgress(t *testing.T) {
	g := model.Goal{TargetAmount: decimal.NewFromInt(800), CurrentAmount: decimal.NewFromInt(200)}
	assert.Equal(t, "25", goalProgress(g).StringFixed(0))
	assert.True(t, goalProgress(model.Goal{}).IsZero())
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"jan.qfx", "feb.qfx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx")})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = expandFiles([]string{filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	_, err = expandFiles([]string{filepath.Join(dir, "missing.ofx")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}
