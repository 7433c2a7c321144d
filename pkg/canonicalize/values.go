package canonicalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/playmap/pkg/catalog"
)

// present reports whether a raw value counts as supplied. Empty strings
// and nulls do not; zero and false do.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		return len(x) > 0
	default:
		return true
	}
}

// first returns the first present value among keys.
func first(rec *catalog.RawRecord, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec.Lookup(k); ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first key whose value stringifies to non-empty.
func firstString(rec *catalog.RawRecord, keys ...string) string {
	for _, k := range keys {
		if s := stringOf(rec.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

// firstNumber returns the first key that parses as a number.
func firstNumber(rec *catalog.RawRecord, keys ...string) *float64 {
	for _, k := range keys {
		if n := ParseNumber(rec.Get(k)); n != nil {
			return n
		}
	}
	return nil
}

// truthy is loose boolean coercion for flag fields.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1", "y":
			return true
		}
	}
	return false
}

func stringOf(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
	}
	return ""
}

// ParseNumber coerces a raw value to a number. Strings are stripped to
// digits, dots and minus signs first, so "$59.99" parses. Anything that
// does not yield a finite number is nil.
func ParseNumber(v any) *float64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return &x
	case string:
		var b strings.Builder
		for _, r := range x {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			return nil
		}
		f, err := strconv.ParseFloat(b.String(), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	}
	return nil
}

// stringList flattens a scalar, comma-joined string, or array into trimmed
// non-empty parts.
func stringList(v any, splitCommas bool) []string {
	var out []string
	var push func(any)
	push = func(x any) {
		switch t := x.(type) {
		case []any:
			for _, e := range t {
				push(e)
			}
		case *catalog.RawRecord:
			// metadata caches sometimes carry {name: ...} objects
			if s := stringOf(t.Get("name")); s != "" {
				out = append(out, s)
			}
		default:
			s := stringOf(t)
			if s == "" {
				return
			}
			if !splitCommas {
				out = append(out, s)
				return
			}
			for _, part := range strings.Split(s, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	push(v)
	return out
}

// appendUnique appends items not already in dst, comparing with fold.
func appendUnique(dst []string, fold func(string) string, items ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(items))
	for _, d := range dst {
		seen[fold(d)] = struct{}{}
	}
	for _, it := range items {
		k := fold(it)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, it)
	}
	return dst
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
