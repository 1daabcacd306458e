package calc

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		op      string
		want    float64
		wantErr error
	}{
		{name: "add", a: "1", b: "2", op: "+", want: 3},
		{name: "subtract", a: "10", b: "2.5", op: "-", want: 7.5},
		{name: "multiply", a: "-3", b: "4", op: "*", want: -12},
		{name: "divide", a: "7", b: "2", op: "/", want: 3.5},
		{name: "whitespace", a: " 1.5 ", b: "\t2", op: " + ", want: 3.5},
		{name: "exponent", a: "1e3", b: "1", op: "+", want: 1001},
		{name: "divide by zero", a: "1", b: "0", op: "/", wantErr: ErrDivisionByZero},
		{name: "divide by negative zero", a: "1", b: "-0", op: "/", wantErr: ErrDivisionByZero},
		{name: "bad first operand", a: "abc", b: "1", op: "+", wantErr: ErrInvalidNumber},
		{name: "bad second operand", a: "1", b: "", op: "+", wantErr: ErrInvalidNumber},
		{name: "nan operand", a: "NaN", b: "1", op: "+", wantErr: ErrInvalidNumber},
		{name: "infinite operand", a: "inf", b: "1", op: "+", wantErr: ErrInvalidNumber},
		{name: "unknown operator", a: "1", b: "2", op: "%", wantErr: ErrUnknownOperator},
		{name: "overflow", a: "1e308", b: "1e308", op: "*", wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.a, tt.b, tt.op)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Value != tt.want {
				t.Errorf("Evaluate(%q, %q, %q) = %v, want %v", tt.a, tt.b, tt.op, got.Value, tt.want)
			}
		})
	}
}

func TestResultString(t *testing.T) {
	r, err := Evaluate("1.5", "2", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.String(); got != "1.5 * 2 = 3" {
		t.Errorf("unexpected string %q", got)
	}
}
