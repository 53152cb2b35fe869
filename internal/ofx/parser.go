// Package ofx reads OFX/QFX bank and credit card statements into
// transactions ready to be booked on a local account.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/schedule"
)

// ErrNoStatements is returned when a file parses but holds no statement.
var ErrNoStatements = errors.New("no statements in OFX file")

// StatementKind tells bank statements from credit card statements.
type StatementKind string

// Statement kinds.
const (
	KindBank       StatementKind = "bank"
	KindCreditCard StatementKind = "credit_card"
)

// Statement is the transaction list of one account in the file.
//
// Rows carry ExternalID (the bank's FITID), type, amount, date and
// description. ID and AccountID are left for the importer to assign.
type Statement struct {
	AccountID    string // The bank's account number, not a local account ID
	Kind         StatementKind
	Transactions []model.Transaction
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on its line with the closing bracket missing.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse returns every bank and credit card statement in the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]Statement, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var statements []Statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements = append(statements, Statement{
				AccountID:    string(stmt.BankAcctFrom.AcctID),
				Kind:         KindBank,
				Transactions: p.convertList(ctx, stmt.BankTranList),
			})
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements = append(statements, Statement{
				AccountID:    string(stmt.CCAcctFrom.AcctID),
				Kind:         KindCreditCard,
				Transactions: p.convertList(ctx, stmt.BankTranList),
			})
		}
	}
	if len(statements) == 0 {
		return nil, ErrNoStatements
	}

	total := 0
	for _, s := range statements {
		total += len(s.Transactions)
	}
	slog.InfoContext(ctx, "Parsed OFX file",
		"statements", len(statements),
		"total_transactions", total)
	return statements, nil
}

// ParseFile returns the transactions of every statement in the file.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	statements, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}
	var transactions []model.Transaction
	for _, s := range statements {
		transactions = append(transactions, s.Transactions...)
	}
	return transactions, nil
}

// GetAccounts lists the bank account numbers in the file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	statements, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}
	var accounts []string
	for _, s := range statements {
		if s.AccountID != "" && !slices.Contains(accounts, s.AccountID) {
			accounts = append(accounts, s.AccountID)
		}
	}
	return accounts, nil
}

func (p *Parser) convertList(ctx context.Context, list *ofxgo.TransactionList) []model.Transaction {
	if list == nil {
		return nil
	}
	var transactions []model.Transaction
	for _, ofxTx := range list.Transactions {
		tx, ok, err := p.convertTransaction(ofxTx)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable OFX transaction",
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		if ok {
			transactions = append(transactions, tx)
		}
	}
	return transactions
}

// convertTransaction converts an OFX row. OFX signs debits negative; the
// sign becomes the transaction type and the amount is kept positive. Zero
// rows carry no money and are dropped.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, bool, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("amount: %w", err)
	}
	if amount.IsZero() {
		return model.Transaction{}, false, nil
	}

	typ := model.TypeIncome
	if amount.IsNegative() {
		typ = model.TypeExpense
	}

	tx := model.Transaction{
		Type:        typ,
		Amount:      amount.Abs(),
		Date:        schedule.Day(ofxTx.DtPosted.Time),
		Description: p.extractMerchantName(ofxTx),
		ExternalID:  string(ofxTx.FiTID),
		Status:      model.StatusCleared,
	}
	if ofxTx.CheckNum != "" {
		tx.ItemName = "Check " + string(ofxTx.CheckNum)
	}
	return tx, true, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE", "":
		return true
	}
	return false
}
