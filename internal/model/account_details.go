package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DetailsKind names the field set an account type carries.
type DetailsKind string

// Details kinds. Several account types share a field set.
const (
	DetailsNone       DetailsKind = ""
	DetailsBank       DetailsKind = "bank"
	DetailsCreditCard DetailsKind = "credit_card"
	DetailsLoan       DetailsKind = "loan"
	DetailsInvestment DetailsKind = "investment"
	DetailsCrypto     DetailsKind = "crypto"
	DetailsPrepaid    DetailsKind = "prepaid"
	DetailsProperty   DetailsKind = "property"
)

// AccountDetails is the type-specific part of an account. The set of
// implementations is closed; DetailsKindFor maps every AccountType to one.
type AccountDetails interface {
	Kind() DetailsKind
	validate() error
}

// DetailsKindFor returns the details kind used by an account type.
func DetailsKindFor(t AccountType) DetailsKind {
	switch t {
	case AccountChecking, AccountSavings, AccountBusiness:
		return DetailsBank
	case AccountCreditCard:
		return DetailsCreditCard
	case AccountLoan, AccountMortgage:
		return DetailsLoan
	case AccountInvestment, AccountBrokerage, AccountRetirement:
		return DetailsInvestment
	case AccountCrypto, AccountWallet:
		return DetailsCrypto
	case AccountPrepaid:
		return DetailsPrepaid
	case AccountProperty:
		return DetailsProperty
	case AccountCash, AccountOther:
		return DetailsNone
	}
	return DetailsNone
}

// BankDetails applies to checking, savings and business accounts.
type BankDetails struct {
	Institution   string `json:"institution,omitempty"`
	AccountLast4  string `json:"account_last4,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
}

// CreditCardDetails applies to credit card accounts.
type CreditCardDetails struct {
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	Issuer        string          `json:"issuer,omitempty"`
	CardLast4     string          `json:"card_last4,omitempty"`
	StatementDay  int             `json:"statement_day,omitempty"`
	PaymentDueDay int             `json:"payment_due_day,omitempty"`
}

// LoanDetails applies to loans and mortgages.
type LoanDetails struct {
	StartDate    *time.Time      `json:"start_date,omitempty"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Lender       string          `json:"lender,omitempty"`
	TermMonths   int             `json:"term_months,omitempty"`
}

// InvestmentDetails applies to investment, brokerage and retirement accounts.
type InvestmentDetails struct {
	Broker       string `json:"broker,omitempty"`
	AccountLast4 string `json:"account_last4,omitempty"`
	TaxAdvantage string `json:"tax_advantage,omitempty"`
}

// CryptoDetails applies to crypto and wallet accounts.
type CryptoDetails struct {
	Exchange      string `json:"exchange,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Network       string `json:"network,omitempty"`
}

// PrepaidDetails applies to prepaid cards.
type PrepaidDetails struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
}

// PropertyDetails applies to property holdings.
type PropertyDetails struct {
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Address       string          `json:"address,omitempty"`
}

func (BankDetails) Kind() DetailsKind       { return DetailsBank }
func (CreditCardDetails) Kind() DetailsKind { return DetailsCreditCard }
func (LoanDetails) Kind() DetailsKind       { return DetailsLoan }
func (InvestmentDetails) Kind() DetailsKind { return DetailsInvestment }
func (CryptoDetails) Kind() DetailsKind     { return DetailsCrypto }
func (PrepaidDetails) Kind() DetailsKind    { return DetailsPrepaid }
func (PropertyDetails) Kind() DetailsKind   { return DetailsProperty }

func (d BankDetails) validate() error {
	if d.AccountLast4 != "" && len(d.AccountLast4) != 4 {
		return errors.New("account_last4 must be four digits")
	}
	return nil
}

func (d CreditCardDetails) validate() error {
	if d.CreditLimit.IsNegative() {
		return errors.New("credit limit cannot be negative")
	}
	if d.StatementDay < 0 || d.StatementDay > 31 || d.PaymentDueDay < 0 || d.PaymentDueDay > 31 {
		return errors.New("statement and payment days must be between 1 and 31")
	}
	return nil
}

func (d LoanDetails) validate() error {
	if d.Principal.IsNegative() || d.InterestRate.IsNegative() {
		return errors.New("principal and interest rate cannot be negative")
	}
	if d.TermMonths < 0 {
		return errors.New("term cannot be negative")
	}
	return nil
}

func (InvestmentDetails) validate() error { return nil }
func (CryptoDetails) validate() error     { return nil }
func (PrepaidDetails) validate() error    { return nil }

func (d PropertyDetails) validate() error {
	if d.PurchasePrice.IsNegative() {
		return errors.New("purchase price cannot be negative")
	}
	return nil
}

// MarshalDetails encodes account details for storage. Nil details encode to "".
func MarshalDetails(d AccountDetails) (string, error) {
	if d == nil {
		return "", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s details: %w", d.Kind(), err)
	}
	return string(data), nil
}

// UnmarshalDetails decodes stored details into the variant the account type uses.
func UnmarshalDetails(t AccountType, data string) (AccountDetails, error) {
	if data == "" {
		return nil, nil
	}

	var err error
	switch DetailsKindFor(t) {
	case DetailsBank:
		var d BankDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsCreditCard:
		var d CreditCardDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsLoan:
		var d LoanDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsInvestment:
		var d InvestmentDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsCrypto:
		var d CryptoDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsPrepaid:
		var d PrepaidDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsProperty:
		var d PropertyDetails
		err = json.Unmarshal([]byte(data), &d)
		return d, wrapDetailsErr(t, err)
	case DetailsNone:
		return nil, nil
	}
	return nil, nil
}

func wrapDetailsErr(t AccountType, err error) error {
	if err != nil {
		return fmt.Errorf("failed to decode %s account details: %w", t, err)
	}
	return nil
}
