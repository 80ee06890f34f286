// File: strata/expand.go
package strata

import "strings"

// Default placeholder delimiters.
const (
	DefaultPlaceholderPrefix    = "${"
	DefaultPlaceholderSuffix    = "}"
	DefaultPlaceholderSeparator = ":"
)

// wellKnownSimplePrefixes maps a placeholder suffix to the single
// character that opens a nested placeholder of the same shape.
var wellKnownSimplePrefixes = map[string]string{
	"}": "{",
	"]": "[",
	")": "(",
}

// LookupFunc resolves a placeholder key to its replacement value.
type LookupFunc func(key string) (string, bool)

// Expander substitutes ${key} and ${key:default} placeholders in
// strings, recursively. Keys, default values, and resolved values may
// themselves contain placeholders; scanning tracks bracket nesting so
// ${outer:${inner}} resolves the inner placeholder first.
//
// In lenient mode (ignoreUnresolvable true) a placeholder with neither
// a value nor a default passes through verbatim, delimiters included.
// In strict mode it fails with UnresolvedPlaceholderError. Cyclic
// references always fail with CircularPlaceholderError.
type Expander struct {
	prefix             string
	suffix             string
	separator          string
	simplePrefix       string
	ignoreUnresolvable bool
}

// NewExpander creates an expander with the given delimiters. An empty
// separator disables default values.
func NewExpander(prefix, suffix, separator string, ignoreUnresolvable bool) *Expander {
	e := &Expander{
		prefix:             prefix,
		suffix:             suffix,
		separator:          separator,
		simplePrefix:       prefix,
		ignoreUnresolvable: ignoreUnresolvable,
	}
	if simple, ok := wellKnownSimplePrefixes[suffix]; ok && strings.HasSuffix(prefix, simple) {
		e.simplePrefix = simple
	}
	return e
}

// Expand substitutes every placeholder in text using resolve.
func (e *Expander) Expand(text string, resolve LookupFunc) (string, error) {
	if !strings.Contains(text, e.prefix) {
		return text, nil
	}
	return e.expand(text, resolve, map[string]bool{})
}

func (e *Expander) expand(text string, resolve LookupFunc, visited map[string]bool) (string, error) {
	result := text

	start := strings.Index(result, e.prefix)
	for start != -1 {
		end := e.findEndIndex(result, start)
		if end == -1 {
			// No matching suffix; leave the dangling prefix as-is.
			break
		}

		placeholder := result[start+len(e.prefix) : end]
		original := placeholder
		if visited[original] {
			return "", &CircularPlaceholderError{Key: original}
		}
		visited[original] = true

		// The key itself may contain placeholders: ${${which}.host}.
		placeholder, err := e.expand(placeholder, resolve, visited)
		if err != nil {
			return "", err
		}

		value, ok := resolve(placeholder)
		if !ok && e.separator != "" {
			if sep := strings.Index(placeholder, e.separator); sep != -1 {
				actual := placeholder[:sep]
				fallback := placeholder[sep+len(e.separator):]
				value, ok = resolve(actual)
				if !ok {
					value, ok = fallback, true
				}
			}
		}

		switch {
		case ok:
			// The resolved value may itself be a placeholder string.
			value, err = e.expand(value, resolve, visited)
			if err != nil {
				return "", err
			}
			result = result[:start] + value + result[end+len(e.suffix):]
			start = indexFrom(result, e.prefix, start+len(value))

		case e.ignoreUnresolvable:
			start = indexFrom(result, e.prefix, end+len(e.suffix))

		default:
			return "", &UnresolvedPlaceholderError{Key: placeholder, Text: text}
		}

		delete(visited, original)
	}

	return result, nil
}

// findEndIndex locates the suffix matching the prefix at start,
// skipping over nested placeholders.
func (e *Expander) findEndIndex(text string, start int) int {
	index := start + len(e.prefix)
	nested := 0

	for index < len(text) {
		switch {
		case strings.HasPrefix(text[index:], e.suffix):
			if nested == 0 {
				return index
			}
			nested--
			index += len(e.suffix)
		case strings.HasPrefix(text[index:], e.simplePrefix):
			nested++
			index += len(e.simplePrefix)
		default:
			index++
		}
	}

	return -1
}

func indexFrom(text, substr string, from int) int {
	if from >= len(text) {
		return -1
	}
	if i := strings.Index(text[from:], substr); i != -1 {
		return from + i
	}
	return -1
}
