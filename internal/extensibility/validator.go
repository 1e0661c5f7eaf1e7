package extensibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
)

// ErrRuleFailed is wrapped by every rule violation reported by a validator.
var ErrRuleFailed = errors.New("rule failed")

// rule is one parsed "field op value" expression.
type rule struct {
	src   string
	field string
	op    string
	want  string
}

// ExpressionValidator checks simple expressions like "n > 30" or
// "color == black" against the root fields of a graph snapshot. Numbers
// compare numerically, everything else compares by rendered text.
type ExpressionValidator struct {
	rules []rule
}

// NewExpressionValidator parses rules. Each rule is "field op value" with
// op one of == != > < >= <=.
func NewExpressionValidator(rules ...string) (*ExpressionValidator, error) {
	v := &ExpressionValidator{}
	for _, src := range rules {
		parts := strings.Fields(src)
		if len(parts) != 3 {
			return nil, fmt.Errorf("rule %q: want \"field op value\"", src)
		}
		switch parts[1] {
		case "==", "!=", ">", "<", ">=", "<=":
		default:
			return nil, fmt.Errorf("rule %q: unknown operator %q", src, parts[1])
		}
		v.rules = append(v.rules, rule{src: src, field: parts[0], op: parts[1], want: parts[2]})
	}
	return v, nil
}

// Validate reports every rule g violates. A missing field fails its rule.
// It has the shape NewGraphOriginator expects.
func (v *ExpressionValidator) Validate(g *core.Graph) error {
	var errs []error
	for _, r := range v.rules {
		val, ok := g.Field(r.field)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s: field %q missing", ErrRuleFailed, r.src, r.field))
			continue
		}
		if !r.eval(val) {
			errs = append(errs, fmt.Errorf("%w: %s (got %s)", ErrRuleFailed, r.src, val))
		}
	}
	return errors.Join(errs...)
}

func (r rule) eval(val primitives.Value) bool {
	if s, ok := val.Scalar(); ok {
		if got, ok := numeric(s); ok {
			want, err := strconv.ParseFloat(r.want, 64)
			if err == nil {
				return compare(r.op, cmpFloat(got, want))
			}
		}
		if b, ok := s.AsBool(); ok && (r.op == "==" || r.op == "!=") {
			return (strconv.FormatBool(b) == r.want) == (r.op == "==")
		}
	}
	if r.op == "==" || r.op == "!=" {
		return (val.String() == r.want) == (r.op == "==")
	}
	return false
}

func numeric(s primitives.Scalar) (float64, bool) {
	if n, ok := s.AsInt(); ok {
		return float64(n), true
	}
	return s.AsFloat()
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case "<":
		return c < 0
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	}
	return false
}

// StructValidator checks struct states using `validate` tags.
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator creates a StructValidator with required struct checks
// enabled.
func NewStructValidator() *StructValidator {
	return &StructValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns nil when s satisfies its tags, otherwise an error
// wrapping ErrRuleFailed that lists every failing field.
func (sv *StructValidator) Validate(s any) error {
	err := sv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%w: %s failed %q", ErrRuleFailed, fe.Namespace(), fe.Tag()))
	}
	return errors.Join(errs...)
}

// StructCheck adapts a StructValidator to a typed check for Validated.
func StructCheck[S any](sv *StructValidator) func(S) error {
	return func(s S) error { return sv.Validate(s) }
}
