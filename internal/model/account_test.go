package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsKindFor_CoversEveryAccountType(t *testing.T) {
	withoutDetails := map[AccountType]bool{AccountCash: true, AccountOther: true}

	for _, accountType := range AccountTypes {
		kind := DetailsKindFor(accountType)
		if withoutDetails[accountType] {
			assert.Equal(t, DetailsNone, kind, accountType)
			continue
		}
		assert.NotEqual(t, DetailsNone, kind, "account type %s has no details kind", accountType)
	}
	assert.Len(t, AccountTypes, 15)
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		account Account
		wantErr bool
	}{
		{
			name:    "cash without details",
			account: Account{ID: "a", Name: "Wallet", Type: AccountCash},
		},
		{
			name: "credit card with card details",
			account: Account{ID: "a", Name: "Visa", Type: AccountCreditCard, Details: CreditCardDetails{
				CreditLimit:   decimal.NewFromInt(5000),
				PaymentDueDay: 25,
			}},
		},
		{
			name:    "savings with bank details",
			account: Account{ID: "a", Name: "Rainy day", Type: AccountSavings, Details: BankDetails{AccountLast4: "1234"}},
		},
		{
			name:    "details of the wrong kind",
			account: Account{ID: "a", Name: "Visa", Type: AccountCreditCard, Details: LoanDetails{}},
			wantErr: true,
			errMsg:  "loan details do not apply to credit_card accounts",
		},
		{
			name:    "details on cash account",
			account: Account{ID: "a", Name: "Wallet", Type: AccountCash, Details: BankDetails{}},
			wantErr: true,
			errMsg:  "do not apply",
		},
		{
			name:    "invalid details field",
			account: Account{ID: "a", Name: "Checking", Type: AccountChecking, Details: BankDetails{AccountLast4: "12"}},
			wantErr: true,
			errMsg:  "four digits",
		},
		{
			name:    "unknown type",
			account: Account{ID: "a", Name: "Mystery", Type: "piggy_bank"},
			wantErr: true,
			errMsg:  "unknown type",
		},
		{
			name:    "missing name",
			account: Account{ID: "a", Type: AccountCash},
			wantErr: true,
			errMsg:  "missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAccount)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestUnmarshalDetails_UsesAccountTypeVariant(t *testing.T) {
	data, err := MarshalDetails(LoanDetails{
		Lender:       "First Bank",
		Principal:    decimal.RequireFromString("250000"),
		InterestRate: decimal.RequireFromString("0.0425"),
		TermMonths:   360,
	})
	require.NoError(t, err)

	details, err := UnmarshalDetails(AccountMortgage, data)
	require.NoError(t, err)

	loan, ok := details.(LoanDetails)
	require.True(t, ok, "expected LoanDetails, got %T", details)
	assert.Equal(t, "First Bank", loan.Lender)
	assert.True(t, loan.Principal.Equal(decimal.RequireFromString("250000")))
	assert.Equal(t, 360, loan.TermMonths)

	none, err := UnmarshalDetails(AccountCash, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}
