// Package output renders batch results for the console and for file
// export.
package output

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/engine"
)

// Formatter renders a batch result in a single output format.
type Formatter interface {
	Name() string
	Format(batch *engine.BatchResult) ([]byte, error)
}

// ForFormat returns the formatter registered under the given name.
func ForFormat(format string) (Formatter, error) {
	switch format {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatCurrency renders a monthly dollar amount for display.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
