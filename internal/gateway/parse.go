package gateway

import (
	"regexp"
	"strings"
)

var (
	lineCommentRe  = regexp.MustCompile(`--[^\n]*`)
	blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	stringLitRe    = regexp.MustCompile(`'(?:[^']|'')*'`)
	tableRefRe     = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)
	identRe        = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_.]*`)
	leadingWordRe  = regexp.MustCompile(`^[a-zA-Z]+`)
)

// projectionKeywords are SQL words that appear inside a SELECT list but
// are not column references.
var projectionKeywords = map[string]bool{
	"as": true, "distinct": true, "all": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "and": true, "or": true,
	"not": true, "null": true, "true": true, "false": true, "is": true,
	"in": true, "like": true, "between": true, "interval": true,
	"over": true, "partition": true, "by": true, "order": true,
	"asc": true, "desc": true, "cast": true, "extract": true,
}

// StatementParser is the built-in structural parser. It is pure text
// analysis over a comment- and literal-stripped copy of the query; it
// never touches a database.
type StatementParser struct{}

// NewStatementParser returns the built-in parser.
func NewStatementParser() *StatementParser {
	return &StatementParser{}
}

// Parse implements Parser.
func (p *StatementParser) Parse(text string) (*StructuralParse, bool) {
	stripped := stripComments(text)
	stripped = stringLitRe.ReplaceAllString(stripped, "''")
	stripped = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stripped), ";"))
	if stripped == "" {
		return nil, false
	}

	verb := leadingWordRe.FindString(stripped)
	if verb == "" {
		return nil, false
	}

	sp := &StructuralParse{
		Statement:          StatementOther,
		ForbiddenConstruct: forbiddenWordRe.MatchString(stripped),
	}
	if strings.EqualFold(verb, "select") {
		sp.Statement = StatementSelect
		sp.Columns = projectionColumns(stripped)
	}
	sp.Tables = referencedTables(stripped)
	return sp, true
}

func stripComments(text string) string {
	out := lineCommentRe.ReplaceAllString(text, " ")
	return blockCommentRe.ReplaceAllString(out, " ")
}

// referencedTables collects distinct lowercased identifiers that follow
// FROM or JOIN, preserving first-seen order.
func referencedTables(text string) []string {
	var tables []string
	seen := map[string]bool{}
	for _, m := range tableRefRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			tables = append(tables, name)
		}
	}
	return tables
}

// projectionColumns extracts bare column identifiers from the SELECT
// list: the region between the leading SELECT and the first FROM at
// parenthesis depth zero (or the end of the statement). Function names
// (identifier immediately followed by an open paren), keywords and
// qualified prefixes are not columns.
func projectionColumns(text string) []string {
	body := text[len("select"):]
	end := topLevelFromIndex(body)
	if end >= 0 {
		body = body[:end]
	}

	var cols []string
	seen := map[string]bool{}
	for _, loc := range identRe.FindAllStringIndex(body, -1) {
		name := body[loc[0]:loc[1]]
		rest := strings.TrimLeft(body[loc[1]:], " \t\n")
		if strings.HasPrefix(rest, "(") {
			continue // function call
		}
		lower := strings.ToLower(name)
		if projectionKeywords[lower] {
			continue
		}
		// For qualified names keep the column part only.
		if i := strings.LastIndex(lower, "."); i >= 0 {
			lower = lower[i+1:]
		}
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		cols = append(cols, lower)
	}
	return cols
}

// topLevelFromIndex returns the byte offset of the first FROM keyword at
// parenthesis depth zero, or -1 if none exists.
func topLevelFromIndex(body string) int {
	depth := 0
	lower := strings.ToLower(body)
	for i := 0; i < len(lower); i++ {
		switch lower[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case 'f':
			if depth == 0 && strings.HasPrefix(lower[i:], "from") &&
				boundaryBefore(lower, i) && boundaryAfter(lower, i+4) {
				return i
			}
		}
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
