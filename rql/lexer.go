package rql

import "github.com/alecthomas/participle/v2/lexer"

// queryLexer tokenizes the query language. Keywords are their own token
// type so the grammar can match them case-insensitively without eating
// into identifiers.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(with|recursive|from|as|inner|left|right|full|cross|join|on|where|group|by|having|order|asc|desc|limit|offset|distinct|select|and|or|not|case|when|then|else|end|over|partition|rows|range|between|unbounded|preceding|following|current|row|in|like|is|null|true|false)\b`},

	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "String", Pattern: `'(?:''|[^'])*'`},

	{Name: "Operator", Pattern: `<=|>=|<>|!=|=|<|>|\+|-|\*|/|%`},
	{Name: "Punct", Pattern: `[(),.]`},

	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})
