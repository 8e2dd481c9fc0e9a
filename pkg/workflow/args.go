package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Args is the flat key/value argument set handed to a workflow run. Values
// arrive as strings from the CLI (--arg key=value) or as native JSON types
// from the MCP surface; the typed getters coerce both.
type Args map[string]any

// ParseArgs builds Args from key=value pairs.
func ParseArgs(pairs []string) (Args, error) {
	args := make(Args, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, NewUsageError(fmt.Sprintf("argument %q is not in key=value form", pair))
		}
		args[key] = value
	}
	return args, nil
}

// String returns the string value for key, or fallback when absent.
func (a Args) String(key, fallback string) string {
	v, ok := a[key]
	if !ok {
		return fallback
	}
	return fmt.Sprintf("%v", v)
}

// RequireString returns the string value for key or a usage error. Required
// arguments are checked before any step executes, so a missing one never
// produces a partial result.
func (a Args) RequireString(key string) (string, error) {
	v, ok := a[key]
	if !ok || fmt.Sprintf("%v", v) == "" {
		return "", NewUsageError(fmt.Sprintf("missing required argument %q", key))
	}
	return fmt.Sprintf("%v", v), nil
}

// Bool returns the boolean value for key, or fallback when absent.
func (a Args) Bool(key string, fallback bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return fallback, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, NewUsageError(fmt.Sprintf("argument %q: %q is not a boolean", key, b))
		}
		return parsed, nil
	default:
		return false, NewUsageError(fmt.Sprintf("argument %q: %T is not a boolean", key, v))
	}
}

// Int64 returns the integer value for key, or fallback when absent.
func (a Args) Int64(key string, fallback int64) (int64, error) {
	v, ok := a[key]
	if !ok {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, NewUsageError(fmt.Sprintf("argument %q: %q is not an integer", key, n))
		}
		return parsed, nil
	default:
		return 0, NewUsageError(fmt.Sprintf("argument %q: %T is not an integer", key, v))
	}
}

// Float64 returns the floating point value for key, or fallback when absent.
func (a Args) Float64(key string, fallback float64) (float64, error) {
	v, ok := a[key]
	if !ok {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, NewUsageError(fmt.Sprintf("argument %q: %q is not a number", key, n))
		}
		return parsed, nil
	default:
		return 0, NewUsageError(fmt.Sprintf("argument %q: %T is not a number", key, v))
	}
}
