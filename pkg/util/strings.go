package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/**
* Loose value coercion for tool arguments.
* JSON decoding gives float64 for every number and clients
* frequently send numbers as strings, so tools accept either.
 */

// GetAsString converts various types to string
// Strings are returned trimmed, numbers are formatted without exponent
func GetAsString(s any) (string, error) {
	if s == nil {
		return "", fmt.Errorf("cannot convert nil to string")
	}

	switch v := s.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// GetAsInteger converts various types to integer
// Floats must be whole numbers and strings must parse as integers
func GetAsInteger(s any) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to integer")
	}

	switch v := s.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, fmt.Errorf("int64 value %d is out of int range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("float64 value %f is not a whole number", v)
		}
		if v >= math.MaxInt || v < math.MinInt {
			return 0, fmt.Errorf("float64 value %f is out of int range", v)
		}
		return int(v), nil
	case string:
		result, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to integer: %w", v, err)
		}
		return result, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to integer", s)
	}
}

// GetParamString returns params[key] as a string, or "" when absent or null
func GetParamString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", nil
	}
	return GetAsString(v)
}

// RequireParamString returns params[key] as a non-blank string
func RequireParamString(params map[string]any, key string) (string, error) {
	s, err := GetParamString(params, key)
	if err != nil {
		return "", fmt.Errorf("parameter %s: %w", key, err)
	}
	if s == "" {
		return "", fmt.Errorf("parameter %s is required", key)
	}
	return s, nil
}

// RequireParamInteger returns params[key] as an integer
func RequireParamInteger(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("parameter %s is required", key)
	}
	i, err := GetAsInteger(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return i, nil
}

// ParamsAsMap converts tool params to a map, treating nil as no params
func ParamsAsMap(params any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("couldn't format the parameters as a map of strings")
	}
	return m, nil
}
