package core

// StatementLine is one raw record read from a bank or card statement.
type StatementLine struct {
	Description string
	Amount      Money
	Date        Date
}

// Normalize makes the amount positive and truncates the description.
func (l StatementLine) Normalize() StatementLine {
	l.Amount = l.Amount.Abs()
	l.Description = TruncateDescription(l.Description)
	return l
}

// Rebase moves the line into year/month, keeping its day clamped to the
// month length.
func (l StatementLine) Rebase(year, month int) StatementLine {
	l.Date = ClampedDate(year, month, l.Date.Day())
	return l
}
