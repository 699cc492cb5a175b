// Package arith provides a bounded four-operator arithmetic evaluator.
//
// Only digits, the operators + - * / (with "x" accepted as multiply),
// parentheses, and whitespace are permitted; anything else is rejected with
// ErrInvalidExpression. Evaluation is strict left-to-right over the flat
// operand/operator list, with no operator precedence: "2 + 3 * 4" evaluates
// to 20, not 14. This matches how taught equations are validated and must be
// kept consistent with it; do not change it to standard precedence.
//
// The evaluator never executes code. It is the only arithmetic path in the
// engine, deliberately replacing general-purpose expression evaluation.
package arith

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned when an expression cannot be parsed or
// contains a disallowed character. Callers recover from it locally; it is
// never surfaced to the user as an error.
var ErrInvalidExpression = errors.New("invalid arithmetic expression")

const allowedChars = "0123456789+-*x/(). \t"

// IsExpression reports whether text looks like a bare arithmetic expression:
// only allowed characters, at least one digit, and at least one operator.
// An "=" disqualifies it (that is a taught equation, not a calculation).
func IsExpression(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "=") {
		return false
	}
	hasDigit := false
	hasOp := false
	for _, r := range text {
		if !strings.ContainsRune(allowedChars, r) {
			return false
		}
		if r >= '0' && r <= '9' {
			hasDigit = true
		}
		if strings.ContainsRune("+-*x/", r) {
			hasOp = true
		}
	}
	return hasDigit && hasOp
}

// Evaluate parses and evaluates expr left to right. Division by zero yields a
// non-finite result with a nil error; callers must check IsFinite before
// trusting or persisting the value.
func Evaluate(expr string) (float64, error) {
	p := &parser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: trailing input at offset %d", ErrInvalidExpression, p.pos)
	}
	return v, nil
}

// IsFinite reports whether v is a usable evaluation result.
func IsFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ValidateEquation recomputes the left side of a taught equation and requires
// bit-exact numeric equality with the claimed result. A non-finite
// recomputation never validates.
func ValidateEquation(left string, claimed float64) bool {
	got, err := Evaluate(left)
	if err != nil {
		return false
	}
	return IsFinite(got) && got == claimed
}

// FormatResult renders v the way answers and stored facts print numbers:
// no trailing zeros, integers without a decimal point.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Compact returns expr with all whitespace removed and "x" rewritten to "*",
// the canonical form used as a fact term.
func Compact(expr string) string {
	expr = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t':
			return -1
		case 'x':
			return '*'
		}
		return r
	}, expr)
	return expr
}

// parser evaluates a flat operand/operator list left to right. Parenthesized
// sub-expressions are evaluated recursively, then folded in as operands.
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (float64, error) {
	acc, err := p.parseOperand()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op, ok := p.peekOperator()
		if !ok {
			return acc, nil
		}
		p.pos++
		rhs, err := p.parseOperand()
		if err != nil {
			return 0, err
		}
		switch op {
		case '+':
			acc += rhs
		case '-':
			acc -= rhs
		case '*', 'x':
			acc *= rhs
		case '/':
			acc /= rhs
		}
	}
}

func (p *parser) parseOperand() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrInvalidExpression)
	}
	if p.input[p.pos] == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++
		return v, nil
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrInvalidExpression, start)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidExpression, p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) peekOperator() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	c := p.input[p.pos]
	switch c {
	case '+', '-', '*', 'x', '/':
		return c, true
	}
	return 0, false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
