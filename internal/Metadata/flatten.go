package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// Flatten converts an arbitrarily nested metadata map into a single-level
// map of dotted/bracketed key paths to scalar values. Nested maps extend the
// key path with ".child", lists of maps with "[i].", and lists of scalars
// are joined into one comma-separated string.
func Flatten(in map[string]any) map[string]string {
	out := map[string]string{}
	flattenInto(out, "", in)
	return out
}

func flattenInto(out map[string]string, prefix string, in map[string]any) {
	for key, value := range in {
		newKey := key
		if prefix != "" {
			newKey = prefix + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenInto(out, newKey+".", v)
		case []any:
			if allMaps(v) {
				for i, item := range v {
					flattenInto(out, fmt.Sprintf("%s[%d].", newKey, i), item.(map[string]any))
				}
			} else {
				parts := make([]string, 0, len(v))
				for _, item := range v {
					parts = append(parts, renderScalar(item))
				}
				out[newKey] = strings.Join(parts, ", ")
			}
		default:
			out[newKey] = renderScalar(value)
		}
	}
}

func allMaps(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// renderScalar formats a JSON-decoded scalar without the float artifacts of
// the default formatter (5 stays "5", not "5e+00").
func renderScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
