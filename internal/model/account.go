package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies what kind of account holds the money.
type AccountType string

// Account types.
const (
	AccountCash       AccountType = "cash"
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountMortgage   AccountType = "mortgage"
	AccountBrokerage  AccountType = "brokerage"
	AccountRetirement AccountType = "retirement"
	AccountCrypto     AccountType = "crypto"
	AccountPrepaid    AccountType = "prepaid"
	AccountWallet     AccountType = "wallet"
	AccountBusiness   AccountType = "business"
	AccountProperty   AccountType = "property"
	AccountOther      AccountType = "other"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{
	AccountCash, AccountChecking, AccountSavings, AccountCreditCard, AccountInvestment,
	AccountLoan, AccountMortgage, AccountBrokerage, AccountRetirement, AccountCrypto,
	AccountPrepaid, AccountWallet, AccountBusiness, AccountProperty, AccountOther,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account holds a running balance. Balance is owned by the ledger: it changes
// only through transaction add, update and delete. OpeningBalance is the
// balance the account started with and is what reconciliation replays from.
type Account struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Details        AccountDetails
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	ID             string
	Name           string
	Color          string
	Icon           string
	Type           AccountType
}

// Validate checks required fields and that the details match the account type.
func (a *Account) Validate() error {
	if a == nil {
		return invalid(ErrInvalidAccount, "account is nil")
	}
	if blank(a.ID) {
		return invalid(ErrInvalidAccount, "missing ID")
	}
	if blank(a.Name) {
		return invalid(ErrInvalidAccount, "missing name")
	}
	if !a.Type.Valid() {
		return invalid(ErrInvalidAccount, "unknown type %q", a.Type)
	}
	if a.Details != nil {
		if a.Details.Kind() != DetailsKindFor(a.Type) {
			return invalid(ErrInvalidAccount, "%s details do not apply to %s accounts", a.Details.Kind(), a.Type)
		}
		if err := a.Details.validate(); err != nil {
			return invalid(ErrInvalidAccount, "%v", err)
		}
	}
	return nil
}
