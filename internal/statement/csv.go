package statement

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fintrack/internal/core"
)

var ErrMissingColumns = errors.New("statement is missing date, description or amount columns")

// Header aliases, lower-cased without accents. Nubank exports
// date/title/amount, other banks use the Portuguese names.
var (
	dateColumns        = []string{"date", "data"}
	descriptionColumns = []string{"title", "description", "descricao", "historico", "lancamento"}
	amountColumns      = []string{"amount", "valor"}
)

var csvDateLayouts = []string{
	core.DateLayout,
	"02/01/2006",
	"02/01/06",
	"2006/01/02",
	time.RFC3339,
}

// CSVParser reads comma or semicolon separated statements with a header row.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(ctx context.Context, r io.Reader) ([]core.StatementLine, error) {
	br := bufio.NewReader(r)
	sep, err := sniffSeparator(br)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	dateCol := columnIndex(header, dateColumns)
	descCol := columnIndex(header, descriptionColumns)
	amountCol := columnIndex(header, amountColumns)
	if dateCol < 0 || descCol < 0 || amountCol < 0 {
		return nil, &core.ValidationError{Field: "header", Err: ErrMissingColumns}
	}

	var lines []core.StatementLine
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		desc, rawAmount := field(rec, descCol), field(rec, amountCol)
		if desc == "" || rawAmount == "" {
			continue
		}
		amount, err := parseCSVAmount(rawAmount)
		if err != nil {
			slog.WarnContext(ctx, "Skipping statement row with bad amount", "row", row, "amount", rawAmount, "error", err)
			continue
		}
		lines = append(lines, core.StatementLine{
			Description: desc,
			Amount:      amount,
			Date:        parseCSVDate(field(rec, dateCol)),
		}.Normalize())
	}

	slog.InfoContext(ctx, "Parsed CSV statement", "lines", len(lines))
	return lines, nil
}

// sniffSeparator picks ';' when the header line has semicolons and no commas.
func sniffSeparator(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("read csv: %w", err)
	}
	first := string(head)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Contains(first, ";") && !strings.Contains(first, ",") {
		return ';', nil
	}
	return ',', nil
}

// foldHeader lower-cases a header cell and strips its accents, so
// "Descrição" and "DESCRICAO" both match "descricao".
func foldHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, h); err == nil {
		h = folded
	}
	return strings.ToLower(h)
}

func columnIndex(header []string, aliases []string) int {
	for i, h := range header {
		h = foldHeader(h)
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseCSVAmount accepts "-12.50", "1.234,56" and "R$ 35,00". A comma marks
// the decimal separator and turns dots into thousands separators.
func parseCSVAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return core.Cents(d.Shift(2).Round(0).IntPart()), nil
}

// parseCSVDate returns the zero date when no layout matches, which rebases
// onto the first day of the target month.
func parseCSVDate(s string) core.Date {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t)
		}
	}
	return core.Date{}
}
