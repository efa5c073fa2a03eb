package sqlgen

import "strings"

// Dialect supplies the hooks that vary between SQL dialects. Everything
// else about clause rendering is shared.
type Dialect struct {
	Name    string
	Aliases []string

	// QuoteIdent quotes an identifier that needs quoting.
	QuoteIdent func(string) string

	// BoolLiteral renders a boolean constant.
	BoolLiteral func(bool) string
}

func doubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func backtickQuote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func trueFalse(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func oneZero(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func builtinDialects() []Dialect {
	return []Dialect{
		{
			Name:        "duckdb",
			QuoteIdent:  doubleQuote,
			BoolLiteral: trueFalse,
		},
		{
			Name:        "postgres",
			Aliases:     []string{"postgresql"},
			QuoteIdent:  doubleQuote,
			BoolLiteral: trueFalse,
		},
		{
			Name:        "mysql",
			QuoteIdent:  backtickQuote,
			BoolLiteral: trueFalse,
		},
		{
			Name:        "sqlite",
			QuoteIdent:  doubleQuote,
			BoolLiteral: oneZero,
		},
	}
}

// isPlainIdentifier reports whether the name is safe to emit unquoted:
// a letter or underscore followed by letters, digits or underscores.
func isPlainIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
