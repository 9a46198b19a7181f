package filter

import "fmt"

// MaxConditions is the maximum number of conditions in a single query.
const MaxConditions = 32

// Op is a comparison operator understood by every store driver.
type Op string

// Supported comparison operators.
const (
	Equal          Op = "=="
	GreaterOrEqual Op = ">="
	LessOrEqual    Op = "<="
	Greater        Op = ">"
	Less           Op = "<"
)

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	switch op {
	case Equal, GreaterOrEqual, LessOrEqual, Greater, Less:
		return true
	default:
		return false
	}
}

// Condition is a single field comparison: field <op> value.
// Value is either a string or a float64.
type Condition struct {
	field string
	op    Op
	value any
}

// New validates and creates a Condition.
func New(field string, op Op, value any) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if !op.Valid() {
		return Condition{}, fmt.Errorf("unknown operator %q for field %q", op, field)
	}
	switch v := value.(type) {
	case string:
	case float64:
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	default:
		return Condition{}, fmt.Errorf("unsupported value type %T for field %q", value, field)
	}
	return Condition{field: field, op: op, value: value}, nil
}

// Must is like New but panics on error. For statically known conditions.
func Must(field string, op Op, value any) Condition {
	c, err := New(field, op, value)
	if err != nil {
		panic(err)
	}
	return c
}

// Field returns the field name.
func (c Condition) Field() string { return c.field }

// Op returns the comparison operator.
func (c Condition) Op() Op { return c.op }

// Value returns the comparison operand.
func (c Condition) Value() any { return c.value }

// String returns the operand as a string, if it is one.
func (c Condition) String() (string, bool) {
	s, ok := c.value.(string)
	return s, ok
}

// Number returns the operand as a float64, if it is one.
func (c Condition) Number() (float64, bool) {
	f, ok := c.value.(float64)
	return f, ok
}

// IsNumeric reports whether the operand is numeric.
func (c Condition) IsNumeric() bool {
	_, ok := c.value.(float64)
	return ok
}

// Matches evaluates the condition against a stored value.
// Values of a different kind than the operand never match.
func (c Condition) Matches(v any) bool {
	switch want := c.value.(type) {
	case float64:
		got, ok := toFloat(v)
		if !ok {
			return false
		}
		return compare(cmpFloat(got, want), c.op)
	case string:
		got, ok := v.(string)
		if !ok {
			return false
		}
		return compare(cmpString(got, want), c.op)
	}
	return false
}

func compare(cmp int, op Op) bool {
	switch op {
	case Equal:
		return cmp == 0
	case GreaterOrEqual:
		return cmp >= 0
	case LessOrEqual:
		return cmp <= 0
	case Greater:
		return cmp > 0
	case Less:
		return cmp < 0
	}
	return false
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

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// PrefixSentinel is a high code point closing a string prefix range:
// [p, p+PrefixSentinel) selects every value starting with p.
const PrefixSentinel = "\uf8ff"

// Prefix returns the half-open range conditions selecting values of field that start with p.
func Prefix(field, p string) ([]Condition, error) {
	if p == "" {
		return nil, fmt.Errorf("prefix is required for field %q", field)
	}
	lo, err := New(field, GreaterOrEqual, p)
	if err != nil {
		return nil, err
	}
	return []Condition{lo, {field: field, op: Less, value: p + PrefixSentinel}}, nil
}
