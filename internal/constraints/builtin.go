package constraints

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// NewDefaultRegistry returns a registry with the built-in constraint types
// installed: maxLength, minLength, pattern, minValue, maxValue, enum.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register("maxLength", MaxLength)
	r.Register("minLength", MinLength)
	r.Register("pattern", Pattern)
	r.Register("minValue", MinValue)
	r.Register("maxValue", MaxValue)
	r.Register("enum", Enum)
	return r
}

func subject(isRequestContext bool, name string) string {
	if isRequestContext {
		return "context attribute " + name
	}
	return "attribute " + name
}

// MaxLength rejects values longer than the argument.
func MaxLength(isRequestContext bool, name, value, arg string) []string {
	limit, err := strconv.Atoi(arg)
	if err != nil {
		return []string{fmt.Sprintf("constraint maxLength on %s has invalid argument %q", name, arg)}
	}
	if len(value) > limit {
		return []string{fmt.Sprintf("%s value %q exceeds maximum length of %d", subject(isRequestContext, name), value, limit)}
	}
	return nil
}

// MinLength rejects values shorter than the argument.
func MinLength(isRequestContext bool, name, value, arg string) []string {
	limit, err := strconv.Atoi(arg)
	if err != nil {
		return []string{fmt.Sprintf("constraint minLength on %s has invalid argument %q", name, arg)}
	}
	if len(value) < limit {
		return []string{fmt.Sprintf("%s value %q is shorter than minimum length of %d", subject(isRequestContext, name), value, limit)}
	}
	return nil
}

var patternCache sync.Map // arg string -> *regexp.Regexp

// Pattern rejects values not matching the argument regexp. Compiled patterns
// are cached; catalogs carry a small, fixed set of them.
func Pattern(isRequestContext bool, name, value, arg string) []string {
	var re *regexp.Regexp
	if cached, ok := patternCache.Load(arg); ok {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(arg)
		if err != nil {
			return []string{fmt.Sprintf("constraint pattern on %s has invalid expression %q", name, arg)}
		}
		patternCache.Store(arg, compiled)
		re = compiled
	}
	if !re.MatchString(value) {
		return []string{fmt.Sprintf("%s value %q does not match pattern %q", subject(isRequestContext, name), value, arg)}
	}
	return nil
}

// MinValue rejects numeric values below the argument.
func MinValue(isRequestContext bool, name, value, arg string) []string {
	return compareNumeric(isRequestContext, name, value, arg, "minValue", func(v, bound float64) bool { return v >= bound })
}

// MaxValue rejects numeric values above the argument.
func MaxValue(isRequestContext bool, name, value, arg string) []string {
	return compareNumeric(isRequestContext, name, value, arg, "maxValue", func(v, bound float64) bool { return v <= bound })
}

func compareNumeric(isRequestContext bool, name, value, arg, constraintType string, ok func(v, bound float64) bool) []string {
	bound, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return []string{fmt.Sprintf("constraint %s on %s has invalid argument %q", constraintType, name, arg)}
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return []string{fmt.Sprintf("%s value %q is not numeric", subject(isRequestContext, name), value)}
	}
	if !ok(v, bound) {
		return []string{fmt.Sprintf("%s value %q violates %s %s", subject(isRequestContext, name), value, constraintType, arg)}
	}
	return nil
}

// Enum rejects values outside the pipe-separated argument list.
func Enum(isRequestContext bool, name, value, arg string) []string {
	for _, allowed := range strings.Split(arg, "|") {
		if value == allowed {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s value %q is not one of %s", subject(isRequestContext, name), value, arg)}
}
