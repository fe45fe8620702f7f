package util

import (
	"fmt"
	"strings"
)

// SymbolFile expands a file-name pattern holding one %s verb for the symbol.
// Patterns without a verb get the symbol appended before the extension.
func SymbolFile(pattern, symbol string) string {
	if strings.Contains(pattern, "%s") {
		return fmt.Sprintf(pattern, symbol)
	}
	dot := strings.LastIndex(pattern, ".")
	if dot <= 0 {
		return pattern + "_" + symbol
	}
	return pattern[:dot] + "_" + symbol + pattern[dot:]
}

// WithSuffix inserts suffix before the extension of name.
func WithSuffix(name, suffix string) string {
	if suffix == "" {
		return name
	}
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name + suffix
	}
	return name[:dot] + suffix + name[dot:]
}
