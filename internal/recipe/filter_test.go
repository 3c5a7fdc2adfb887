package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Filter
	}{
		{"less or equal", "<=400", Filter{Kind: FilterComparison, Op: OpLessOrEqual, Operand: Operand{Number: 400, Numeric: true}}},
		{"greater or equal decimal", ">=4.5", Filter{Kind: FilterComparison, Op: OpGreaterOrEqual, Operand: Operand{Number: 4.5, Numeric: true}}},
		{"less", "<30", Filter{Kind: FilterComparison, Op: OpLess, Operand: Operand{Number: 30, Numeric: true}}},
		{"greater", ">100", Filter{Kind: FilterComparison, Op: OpGreater, Operand: Operand{Number: 100, Numeric: true}}},
		{"explicit equal", "=100", Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Number: 100, Numeric: true}}},
		{"bare number", "4", Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Number: 4, Numeric: true}}},
		{"bare text", "chicken", Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Text: "chicken"}}},
		{"surrounding whitespace", "  <= 400  ", Filter{Kind: FilterComparison, Op: OpLessOrEqual, Operand: Operand{Number: 400, Numeric: true}}},
		{"trailing garbage", "<=400kcal", Filter{Kind: FilterComparison, Op: OpLessOrEqual, Operand: Operand{Number: 400, Numeric: true}}},
		{"bare number with unit", "45 min", Filter{Kind: FilterComparison, Op: OpEqual, Operand: Operand{Number: 45, Numeric: true}}},
		{"negative", ">-1", Filter{Kind: FilterComparison, Op: OpGreater, Operand: Operand{Number: -1, Numeric: true}}},
		{"leading dot", "<.5", Filter{Kind: FilterComparison, Op: OpLess, Operand: Operand{Number: 0.5, Numeric: true}}},
		{"operator without number", "<=abc", Filter{Kind: FilterInvalid, Op: OpLessOrEqual}},
		{"operator alone", ">=", Filter{Kind: FilterInvalid, Op: OpGreaterOrEqual}},
		{"double operator", "<<3", Filter{Kind: FilterInvalid, Op: OpLess}},
		{"empty", "", Filter{Kind: FilterAbsent}},
		{"blank", "   ", Filter{Kind: FilterAbsent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFilter(tt.in))
		})
	}
}

func TestFilter_Number(t *testing.T) {
	n, ok := ParseFilter("<=400").Number()
	assert.True(t, ok)
	assert.Equal(t, 400.0, n)

	// Text operands and invalid filters are skipped by numeric callers.
	_, ok = ParseFilter("chicken").Number()
	assert.False(t, ok)
	_, ok = ParseFilter(">=x").Number()
	assert.False(t, ok)
	_, ok = ParseFilter("").Number()
	assert.False(t, ok)
}

func TestFilterKind_String(t *testing.T) {
	assert.Equal(t, "absent", FilterAbsent.String())
	assert.Equal(t, "comparison", FilterComparison.String())
	assert.Equal(t, "invalid", FilterInvalid.String())
	assert.Equal(t, "unknown", FilterKind(42).String())
}

func TestParseLeadingFloat(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12", 12, true},
		{" 12.5abc", 12.5, true},
		{"1e3", 1000, true},
		{"1e", 1, true},
		{"+7", 7, true},
		{"3.", 3, true},
		{"abc", 0, false},
		{"", 0, false},
		{".", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingFloat(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
