package gateway

// Reason classifies why a candidate query was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMultiStatement
	ReasonNotARead
	ReasonForbiddenKeyword
	ReasonMalformedRead
)

// String returns the snake_case reason code (used for audit storage).
func (r Reason) String() string {
	switch r {
	case ReasonMultiStatement:
		return "multi_statement"
	case ReasonNotARead:
		return "not_a_read"
	case ReasonForbiddenKeyword:
		return "forbidden_keyword"
	case ReasonMalformedRead:
		return "malformed_read"
	default:
		return "none"
	}
}

// Verdict is the classifier's decision for one candidate query.
type Verdict struct {
	Allowed bool
	Reason  Reason
	Detail  string // human-readable explanation, empty when allowed
}

// Statement is the kind of SQL statement a structural parse identified.
type Statement int

const (
	StatementUnknown Statement = iota
	StatementSelect
	StatementOther
)

// StructuralParse is the normalized shape of a candidate query. It is
// produced by a Parser and consumed only by the classifier invocation
// that requested it.
type StructuralParse struct {
	Statement Statement
	// Tables holds distinct table identifiers referenced after FROM/JOIN.
	Tables []string
	// Columns holds distinct bare column identifiers from the projection
	// list. Literals and * do not count as columns.
	Columns []string
	// ForbiddenConstruct is set when data- or schema-modifying vocabulary
	// appears anywhere in the statement, including inside subqueries.
	ForbiddenConstruct bool
}

// Parser attempts a structural parse of a candidate query. A nil Parser
// means structural parsing is unavailable at runtime; the classifier
// degrades to keyword scanning only.
type Parser interface {
	// Parse returns (parse, true) on success or (nil, false) when the
	// text cannot be shaped. It must never execute the text.
	Parse(text string) (*StructuralParse, bool)
}
