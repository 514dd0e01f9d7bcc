package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)

// OFXParser reads OFX and QFX bank and credit card statements.
type OFXParser struct{}

func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

func (p *OFXParser) Parse(ctx context.Context, r io.Reader) ([]core.StatementLine, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ofx: %w", err)
	}
	content := strings.TrimLeft(string(raw), " \t\r\n")
	// Some banks emit mixed-case severities, which ofxgo rejects
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)

	resp, err := ofxgo.ParseResponse(strings.NewReader(content))
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Err: fmt.Errorf("parse ofx: %w", err)}
	}

	var lines []core.StatementLine
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lines = p.appendTransactions(ctx, lines, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lines = p.appendTransactions(ctx, lines, stmt.BankTranList.Transactions)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX statement",
		"lines", len(lines),
		"bank_statements", len(resp.Bank),
		"card_statements", len(resp.CreditCard))
	return lines, nil
}

func (p *OFXParser) appendTransactions(ctx context.Context, lines []core.StatementLine, txs []ofxgo.Transaction) []core.StatementLine {
	for _, tx := range txs {
		amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
		if err != nil {
			slog.WarnContext(ctx, "Skipping OFX transaction with bad amount", "fitid", string(tx.FiTID), "error", err)
			continue
		}
		lines = append(lines, core.StatementLine{
			Description: ofxDescription(tx),
			Amount:      core.Cents(amount.Shift(2).IntPart()),
			Date:        core.DateOf(tx.DtPosted.Time),
		}.Normalize())
	}
	return lines
}

// ofxDescription prefers MEMO, then NAME, then the payee name.
func ofxDescription(tx ofxgo.Transaction) string {
	if s := strings.TrimSpace(string(tx.Memo)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(tx.Name)); s != "" {
		return s
	}
	if tx.Payee != nil {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	return ""
}
