// File: strata/helper.go
package strata

import (
	"fmt"
	"strings"
)

// flattenMap converts a nested map[string]any to a flat map[string]any
// with dot-notation keys.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newKey := key
		if prefix != "" {
			newKey = prefix + "." + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			for subKey, subValue := range flattenMap(nestedMap, newKey) {
				flat[subKey] = subValue
			}
		} else {
			flat[newKey] = value
		}
	}

	return flat
}

// normalizeKeys widens map[any]any keys (as produced by some YAML
// inputs) into map[string]any so flattening sees every table.
func normalizeKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = normalizeKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return value
	}
}

// setNestedValue sets a value in a nested map using a dot-notation
// path, creating intermediate maps as needed. A non-map segment in the
// way is overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}

		if nextMap, isMap := next.(map[string]any); isMap {
			current = nextMap
		} else {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
		}
	}

	current[segments[len(segments)-1]] = value
}

// navigateToPath traverses a nested map to reach the specified path.
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	segments := strings.Split(path, ".")
	current := any(nested)

	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}

// splitList splits a comma-delimited list, trimming whitespace and
// dropping empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// validProfile reports whether name is a usable profile name: non-empty,
// not whitespace-only, and not starting with the negation operator.
func validProfile(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && !strings.HasPrefix(trimmed, "!")
}
