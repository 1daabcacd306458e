// Package calc implements the two-operand calculator.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidNumber   = errors.New("please enter valid numbers")
	ErrDivisionByZero  = errors.New("division by zero is not allowed")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrOutOfRange      = errors.New("result is out of range")
)

// Operators lists the supported operators in display order.
var Operators = []string{"+", "-", "*", "/"}

// Result is one evaluated expression.
type Result struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s %s = %s", formatNumber(r.A), r.Op, formatNumber(r.B), formatNumber(r.Value))
}

// ParseOperand parses a user-entered number.
func ParseOperand(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidNumber)
	}
	return v, nil
}

// Apply computes a op b.
func Apply(a, b float64, op string) (float64, error) {
	var v float64
	switch strings.TrimSpace(op) {
	case "+":
		v = a + b
	case "-":
		v = a - b
	case "*":
		v = a * b
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		v = a / b
	default:
		return 0, fmt.Errorf("%q: %w", op, ErrUnknownOperator)
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrOutOfRange
	}
	return v, nil
}

// Evaluate parses both operands and applies op.
func Evaluate(a, b, op string) (Result, error) {
	x, err := ParseOperand(a)
	if err != nil {
		return Result{}, err
	}
	y, err := ParseOperand(b)
	if err != nil {
		return Result{}, err
	}

	v, err := Apply(x, y, op)
	if err != nil {
		return Result{}, err
	}
	return Result{A: x, B: y, Op: strings.TrimSpace(op), Value: v}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
