package recipe

import "strings"

// Operator is a comparison operator accepted in filter expressions.
type Operator string

const (
	OpLessOrEqual    Operator = "<="
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpGreater        Operator = ">"
	OpEqual          Operator = "="
)

// operatorPrefixes is checked in order; two-character operators come first so
// "<=" is never read as "<" followed by "=...".
var operatorPrefixes = []Operator{
	OpLessOrEqual,
	OpGreaterOrEqual,
	OpLess,
	OpGreater,
	OpEqual,
}

// FilterKind tags the result of ParseFilter.
type FilterKind int

const (
	// FilterAbsent means no expression was given.
	FilterAbsent FilterKind = iota
	// FilterComparison carries an operator and an operand.
	FilterComparison
	// FilterInvalid means an operator was given without a numeric operand.
	FilterInvalid
)

func (k FilterKind) String() string {
	switch k {
	case FilterAbsent:
		return "absent"
	case FilterComparison:
		return "comparison"
	case FilterInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Operand is either a number or, for bare non-numeric input, the raw text.
type Operand struct {
	Number  float64
	Text    string
	Numeric bool
}

// Filter is a parsed filter expression such as "<=400" or ">=4.5".
type Filter struct {
	Kind    FilterKind
	Op      Operator
	Operand Operand
}

// Number returns the operand of a numeric comparison. It reports false for
// absent and invalid filters and for text equality filters; callers skip the
// filter in that case.
func (f Filter) Number() (float64, bool) {
	if f.Kind != FilterComparison || !f.Operand.Numeric {
		return 0, false
	}
	return f.Operand.Number, true
}

// ParseFilter parses a query-string filter expression.
//
// A leading "<=", ">=", "<", ">" or "=" selects the operator and the rest must
// start with a number ("<=400kcal" is accepted as <= 400). Without an operator
// the whole value is an equality operand: numeric when it starts with a
// number, otherwise the trimmed text.
func ParseFilter(expr string) Filter {
	s := strings.TrimSpace(expr)
	if s == "" {
		return Filter{Kind: FilterAbsent}
	}

	for _, op := range operatorPrefixes {
		if !strings.HasPrefix(s, string(op)) {
			continue
		}
		n, ok := parseLeadingFloat(s[len(op):])
		if !ok {
			return Filter{Kind: FilterInvalid, Op: op}
		}
		return Filter{Kind: FilterComparison, Op: op, Operand: Operand{Number: n, Numeric: true}}
	}

	if n, ok := parseLeadingFloat(s); ok {
		return Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Number: n, Numeric: true}}
	}
	return Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Text: s}}
}
