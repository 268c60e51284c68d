package frontmatter

import "fmt"

// CheckRequires evaluates a single requires-<flag> directive against the
// resolved value of that flag for the current session.
//
// Three modes, matching the directive's declared shape:
//
//   - bool:   requiredValue is true/false; gate passes iff the resolved
//     flag value, coerced to bool, equals requiredValue.
//   - list:   requiredValue is a list of acceptable values; gate passes iff
//     any of them is present in the resolved flag value (see containsAny).
//   - scalar: requiredValue is any other scalar; gate passes iff the
//     resolved flag value equals requiredValue exactly.
//
// A nil actualValue (flag unresolved) never satisfies a bool-true or
// list/equality directive, but does satisfy a bool-false directive.
func CheckRequires(requiredValue, actualValue any) bool {
	switch rv := requiredValue.(type) {
	case bool:
		av, ok := actualValue.(bool)
		if !ok {
			av = truthy(actualValue)
		}
		return av == rv
	case []string:
		return containsAny(rv, actualValue)
	case []any:
		strs := make([]string, 0, len(rv))
		for _, e := range rv {
			strs = append(strs, fmt.Sprint(e))
		}
		return containsAny(strs, actualValue)
	default:
		if actualValue == nil {
			return false
		}
		return fmt.Sprint(actualValue) == fmt.Sprint(requiredValue)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		return true
	}
}

// containsAny reports whether any element of required is "present in"
// actual, per spec.md §4.A's three shapes: element membership when actual
// is a scalar, non-empty list intersection when actual is a list, and key
// membership when actual is a mapping.
func containsAny(required []string, actual any) bool {
	switch av := actual.(type) {
	case nil:
		return false
	case []string:
		return intersects(required, av)
	case []any:
		return intersects(required, stringifyAll(av))
	case map[string]string:
		for _, r := range required {
			if _, ok := av[r]; ok {
				return true
			}
		}
		return false
	case map[string]any:
		for _, r := range required {
			if _, ok := av[r]; ok {
				return true
			}
		}
		return false
	default:
		s := fmt.Sprint(av)
		for _, v := range required {
			if v == s {
				return true
			}
		}
		return false
	}
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}

func stringifyAll(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
