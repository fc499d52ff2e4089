package codec

import (
	"strings"

	"github.com/stoewer/go-strcase"
)

// wireNameMatches reports whether a wire key names the given Go field. Matching ignores
// case and underscores: host_id, hostId and HostID all name HostID.
func wireNameMatches(wireKey, fieldName string) bool {
	return strings.EqualFold(strcase.LowerCamelCase(wireKey), strcase.LowerCamelCase(fieldName))
}

// renameKeys rewrites every object key in a decoded JSON tree.
func renameKeys(v any, rename func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[rename(k)] = renameKeys(val, rename)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = renameKeys(val, rename)
		}
		return out
	default:
		return v
	}
}
