package policy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// applyOperator evaluates one comparison. Comparisons that cannot be decided
// deterministically (incomparable operand types, malformed patterns, unknown
// operators) return an error so the gate can fail closed.
func applyOperator(op Operator, actual, expected any) (bool, error) {
	switch op {
	case OperatorEqual:
		return looseEqual(actual, expected), nil
	case OperatorNotEqual:
		return !looseEqual(actual, expected), nil

	case OperatorGreaterThan, OperatorGreaterEqual, OperatorLessThan, OperatorLessEqual:
		a, aok := toFloat(actual)
		e, eok := toFloat(expected)
		if !aok || !eok {
			return false, fmt.Errorf("operator %q needs numeric operands, got %T and %T", op, actual, expected)
		}
		switch op {
		case OperatorGreaterThan:
			return a > e, nil
		case OperatorGreaterEqual:
			return a >= e, nil
		case OperatorLessThan:
			return a < e, nil
		default:
			return a <= e, nil
		}

	case OperatorIn:
		list, ok := expected.([]any)
		if !ok {
			return false, fmt.Errorf("operator %q needs a list value, got %T", op, expected)
		}
		for _, item := range list {
			if looseEqual(actual, item) {
				return true, nil
			}
		}
		return false, nil

	case OperatorContains:
		switch a := actual.(type) {
		case string:
			e, ok := expected.(string)
			if !ok {
				return false, fmt.Errorf("operator %q on a string needs a string value, got %T", op, expected)
			}
			return strings.Contains(a, e), nil
		case []any:
			for _, item := range a {
				if looseEqual(item, expected) {
					return true, nil
				}
			}
			return false, nil
		}
		return false, fmt.Errorf("operator %q needs a string or list field, got %T", op, actual)

	case OperatorMatches:
		a, aok := actual.(string)
		pattern, pok := expected.(string)
		if !aok || !pok {
			return false, fmt.Errorf("operator %q needs string operands, got %T and %T", op, actual, expected)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("operator %q pattern invalid: %w", op, err)
		}
		return re.MatchString(a), nil
	}

	return false, fmt.Errorf("unknown operator %q", op)
}

// looseEqual compares two JSON-shaped values, treating all numeric
// representations as equal when their values are equal. Values of
// incompatible types are unequal, never a fault.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case nil:
		return b == nil
	}
	return false
}

// toFloat normalizes the numeric representations that JSON and YAML decoding
// produce.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
