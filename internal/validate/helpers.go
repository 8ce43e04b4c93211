// Package validate implements the field-level validation contracts for the
// risk calculators. Validators are pure predicates over candidate input: they
// never mutate their argument, never log, and report failures as
// *domain.ValidationError values whose message text names the offending
// field, its actual value, and the violated constraint.
package validate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cardio-risk-server/internal/domain"
)

// Number extracts a numeric value from a dynamically-typed field. Booleans
// are rejected explicitly even though some ecosystems treat them as integers;
// this exclusion is part of the contract, not an accident of the type system.
func Number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case bool:
		return 0, false
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Integer extracts an integer value, rejecting booleans and floats alike.
func Integer(v interface{}) (int, bool) {
	switch n := v.(type) {
	case bool:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// Flag extracts a binary risk flag as 0 or 1. Accepted forms are bool and
// integer 0/1; anything else (2, "1", floats, nil, slices) is rejected.
func Flag(v interface{}) (int, bool) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case int:
		if n == 0 || n == 1 {
			return n, true
		}
		return 0, false
	case int64:
		if n == 0 || n == 1 {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// formatBound renders a numeric bound without a trailing fraction, so an
// integral bound reads "40" rather than "40.000000".
func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// requireFields checks presence of every named field at once. A field is
// missing when absent from the mapping or explicitly nil. Unlike the value
// checks, presence failures are aggregated, not fail-fast.
func requireFields(data map[string]interface{}, fields []string, context string) error {
	var missing []string
	for _, f := range fields {
		if v, ok := data[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	ctx := ""
	if context != "" {
		ctx = " in " + context
	}
	return domain.NewValidationError(missing[0],
		fmt.Sprintf("Missing required fields%s: %v", ctx, missing), nil)
}

// checkRange enforces inclusive bounds on an already-extracted numeric value.
func checkRange(value float64, raw interface{}, field string, min, max float64, context string) error {
	if value >= min && value <= max {
		return nil
	}

	ctx := ""
	if context != "" {
		ctx = " in " + context
	}
	return domain.NewValidationError(field,
		fmt.Sprintf("%s%s out of range: %v (expected between %s and %s)",
			field, ctx, raw, formatBound(min), formatBound(max)), raw)
}

// checkNumber extracts a number or fails with the documented type message.
func checkNumber(v interface{}, field, context string) (float64, error) {
	if _, isBool := v.(bool); isBool {
		return 0, domain.NewValidationError(field,
			fmt.Sprintf("%s must be a number (int or float), but bool is not allowed", field), v)
	}
	n, ok := Number(v)
	if !ok {
		return 0, domain.NewValidationError(field,
			fmt.Sprintf("%s must be a number (int or float) for %s", field, context), v)
	}
	return n, nil
}

// checkString extracts a string or fails with the documented type message.
func checkString(v interface{}, field, context string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", domain.NewValidationError(field,
			fmt.Sprintf("%s must be of type string for %s", field, context), v)
	}
	return s, nil
}

// checkInSet enforces membership of a normalized value in a closed set. The
// failure message lists the sorted valid set.
func checkInSet(value, field string, valid []string, context string) error {
	for _, s := range valid {
		if value == s {
			return nil
		}
	}

	sorted := append([]string(nil), valid...)
	sort.Strings(sorted)

	ctx := ""
	if context != "" {
		ctx = " in " + context
	}
	return domain.NewValidationError(field,
		fmt.Sprintf("Invalid value for '%s'%s: '%s'. Must be one of %v", field, ctx, value, sorted), value)
}
