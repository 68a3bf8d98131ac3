package gateway

import (
	"regexp"
	"strings"
)

// Data- and schema-modifying vocabulary. Any of these anywhere in a
// candidate query rejects it, whether or not structural parsing worked.
var forbiddenWords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE",
	"GRANT", "REVOKE", "EXEC", "EXECUTE", "MERGE",
}

var forbiddenWordRe = regexp.MustCompile(`(?i)\b(` + strings.Join(forbiddenWords, "|") + `)\b`)

// Classify decides whether a candidate query is a single, side-effect-free
// read. parse may be nil when structural parsing is unavailable; its
// absence can never make the outcome laxer: the keyword scan always
// runs, and the structural cross-check only adds rejections.
//
// Rules apply in order, first match wins:
//  1. interior statement separator      -> multi_statement
//  2. leading verb is not SELECT        -> not_a_read
//  3. forbidden keyword anywhere        -> forbidden_keyword
//  4. structural cross-check (if parsed)
//  5. allow
//
// Pure function of its inputs.
func Classify(text string, parse *StructuralParse) Verdict {
	if hasInteriorSemicolon(text) {
		return reject(ReasonMultiStatement, "multiple statements are not allowed")
	}
	if !startsWithSelect(text) {
		return reject(ReasonNotARead, "only SELECT statements are allowed")
	}
	if word, found := findForbiddenWord(text); found {
		return reject(ReasonForbiddenKeyword, "forbidden keyword "+word)
	}
	if parse != nil {
		if v, rejected := crossCheck(parse); rejected {
			return v
		}
	}
	return Verdict{Allowed: true}
}

func reject(reason Reason, detail string) Verdict {
	return Verdict{Allowed: false, Reason: reason, Detail: detail}
}

// hasInteriorSemicolon reports whether a statement separator appears
// anywhere except as the single terminal character.
func hasInteriorSemicolon(text string) bool {
	trimmed := strings.TrimSpace(text)
	i := strings.Index(trimmed, ";")
	return i >= 0 && i != len(trimmed)-1
}

func startsWithSelect(text string) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "select") &&
		(len(trimmed) == 6 || !isWordByte(trimmed[6]))
}

// findForbiddenWord scans the raw text, including comments and string
// literals, for data- or schema-modifying vocabulary. This is the last
// line of defense when structural parsing is unavailable.
func findForbiddenWord(text string) (string, bool) {
	m := forbiddenWordRe.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}

// crossCheck applies the structural rules. The parser's findings are
// strictly additive: they can reject candidates the keyword scan missed
// but never allow one it would reject.
func crossCheck(parse *StructuralParse) (Verdict, bool) {
	if parse.ForbiddenConstruct {
		return reject(ReasonForbiddenKeyword, "statement contains a data-modifying construct"), true
	}
	if len(parse.Tables) == 0 && len(parse.Columns) == 0 {
		// Degenerate literal-only read, e.g. SELECT 1.
		return Verdict{}, false
	}
	if len(parse.Tables) == 0 {
		return reject(ReasonMalformedRead, "query references columns but no tables"), true
	}
	return Verdict{}, false
}
