// Package statement reads bank and card statements into core.StatementLine
// records. Lines come back normalized: positive amounts and descriptions
// capped at core.MaxDescriptionLength runes.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
)

// Format is a supported statement file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
)

var ErrUnsupportedFormat = errors.New("unsupported statement format")

// Parser turns a statement file into lines.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) ([]core.StatementLine, error)
}

var parsers = map[Format]Parser{
	FormatCSV: NewCSVParser(),
	FormatOFX: NewOFXParser(),
}

// FormatOf picks the format from a file name extension. QFX files are OFX.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Parse reads r with the parser registered for f.
func Parse(ctx context.Context, f Format, r io.Reader) ([]core.StatementLine, error) {
	p, ok := parsers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
	return p.Parse(ctx, r)
}

// ParseFile opens path and parses it by extension.
func ParseFile(ctx context.Context, path string) ([]core.StatementLine, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer file.Close()
	return Parse(ctx, f, file)
}
