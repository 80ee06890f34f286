// File: strata/resolver.go
package strata

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
)

// enumerable is implemented by sources that can list their keys.
// Decode uses it to assemble a nested view of the chain.
type enumerable interface {
	Keys() []string
}

// Resolver looks keys up across a source chain, expands ${...}
// placeholders in string values, and converts results to typed values.
//
// Configuration (delimiters, the IgnoreUnresolvable flag, required
// keys, the converter) must be completed before the resolver is shared
// between goroutines; once configured, concurrent read queries are
// safe. The lazily built converter and expanders are initialized under
// a lock so first use may race freely.
type Resolver struct {
	chain *Chain

	prefix             string
	suffix             string
	separator          string
	ignoreUnresolvable bool
	required           []string

	lazy      sync.Mutex // guards the fields below
	converter Converter
	strict    *Expander
	lenient   *Expander
	nested    *Expander
}

// NewResolver creates a resolver over chain. A nil chain is permitted
// and resolves nothing.
func NewResolver(chain *Chain) *Resolver {
	return &Resolver{
		chain:     chain,
		prefix:    DefaultPlaceholderPrefix,
		suffix:    DefaultPlaceholderSuffix,
		separator: DefaultPlaceholderSeparator,
	}
}

// Chain returns the underlying source chain, which may be nil.
func (r *Resolver) Chain() *Chain { return r.chain }

// SetPlaceholderPrefix changes the string that opens a placeholder.
func (r *Resolver) SetPlaceholderPrefix(prefix string) {
	r.prefix = prefix
	r.dropExpanders()
}

// SetPlaceholderSuffix changes the string that closes a placeholder.
func (r *Resolver) SetPlaceholderSuffix(suffix string) {
	r.suffix = suffix
	r.dropExpanders()
}

// SetValueSeparator changes the separator between a placeholder key
// and its default value. Empty disables default values.
func (r *Resolver) SetValueSeparator(separator string) {
	r.separator = separator
	r.dropExpanders()
}

// SetIgnoreUnresolvable controls whether nested placeholder expansion
// during Get and the typed accessors tolerates unresolvable
// placeholders (leaving them verbatim) or fails. It has no effect on
// ResolvePlaceholders and ResolveRequiredPlaceholders, which are
// always lenient and always strict respectively.
func (r *Resolver) SetIgnoreUnresolvable(ignore bool) {
	r.ignoreUnresolvable = ignore
	r.dropExpanders()
}

// SetConverter replaces the type-conversion collaborator.
func (r *Resolver) SetConverter(conv Converter) {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	r.converter = conv
}

// Converter returns the conversion collaborator, creating the default
// mapstructure-backed one on first use.
func (r *Resolver) Converter() Converter {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	if r.converter == nil {
		r.converter = NewDefaultConverter()
	}
	return r.converter
}

// SetRequired registers keys that ValidateRequired checks. Duplicate
// registrations are collapsed.
func (r *Resolver) SetRequired(keys ...string) {
	for _, key := range keys {
		exists := false
		for _, have := range r.required {
			if have == key {
				exists = true
				break
			}
		}
		if !exists {
			r.required = append(r.required, key)
		}
	}
}

// RequiredKeys returns the registered required keys.
func (r *Resolver) RequiredKeys() []string {
	out := make([]string, len(r.required))
	copy(out, r.required)
	return out
}

// Contains reports whether any source in the chain holds key. The
// first source claiming the key wins; no further sources are scanned.
func (r *Resolver) Contains(key string) bool {
	if r.chain == nil {
		return false
	}
	for _, source := range r.chain.Snapshot() {
		if source.Contains(key) {
			return true
		}
	}
	return false
}

// Raw returns the first value found for key in chain order, without
// placeholder expansion.
func (r *Resolver) Raw(key string) (any, bool) {
	if r.chain == nil {
		return nil, false
	}
	for _, source := range r.chain.Snapshot() {
		if value, ok := source.Lookup(key); ok {
			return value, true
		}
	}
	return nil, false
}

// Get returns the first value found for key in chain order. String
// values have their placeholders expanded first, honoring the
// IgnoreUnresolvable flag. A key found in no source fails with
// ErrMissingKey.
func (r *Resolver) Get(key string) (any, error) {
	value, ok := r.Raw(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}

	if text, isString := value.(string); isString {
		expanded, err := r.nestedExpander().Expand(text, r.rawLookup)
		if err != nil {
			return nil, err
		}
		return expanded, nil
	}

	return value, nil
}

// GetOr returns the value for key, or fallback when the key is absent
// or cannot be resolved.
func (r *Resolver) GetOr(key string, fallback any) any {
	value, err := r.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

// Required returns the value for key as a string, failing with
// ErrMissingKey when no source holds it.
func (r *Resolver) Required(key string) (string, error) {
	return r.String(key)
}

// String returns the value for key converted to a string.
func (r *Resolver) String(key string) (string, error) {
	value, err := r.Get(key)
	if err != nil {
		return "", err
	}
	if text, ok := value.(string); ok {
		return text, nil
	}
	var out string
	if err := r.Converter().Convert(value, &out); err != nil {
		return "", err
	}
	return out, nil
}

// StringOr returns the string value for key, or fallback when the key
// is absent or cannot be resolved.
func (r *Resolver) StringOr(key, fallback string) string {
	value, err := r.String(key)
	if err != nil {
		return fallback
	}
	return value
}

// Int64 returns the value for key converted to an int64.
func (r *Resolver) Int64(key string) (int64, error) {
	var out int64
	err := r.as(key, &out)
	return out, err
}

// Bool returns the value for key converted to a bool.
func (r *Resolver) Bool(key string) (bool, error) {
	var out bool
	err := r.as(key, &out)
	return out, err
}

// Float64 returns the value for key converted to a float64.
func (r *Resolver) Float64(key string) (float64, error) {
	var out float64
	err := r.as(key, &out)
	return out, err
}

// Duration returns the value for key converted to a time.Duration.
func (r *Resolver) Duration(key string) (time.Duration, error) {
	var out time.Duration
	err := r.as(key, &out)
	return out, err
}

// Convert resolves key and converts the result into target, which
// must be a non-nil pointer of any type the converter understands.
func (r *Resolver) Convert(key string, target any) error {
	return r.as(key, target)
}

func (r *Resolver) as(key string, target any) error {
	value, err := r.Get(key)
	if err != nil {
		return err
	}
	return r.Converter().Convert(value, target)
}

// Decode assembles the resolved view of every enumerable source under
// basePath into target via mapstructure. Later (lower-precedence)
// sources never override earlier ones. Sources that cannot list their
// keys are skipped.
func (r *Resolver) Decode(basePath string, target any) error {
	if r.chain == nil {
		return fmt.Errorf("%w: resolver has no source chain", ErrConversion)
	}

	nested := make(map[string]any)
	seen := make(map[string]bool)
	for _, source := range r.chain.Snapshot() {
		keyed, ok := source.(enumerable)
		if !ok {
			continue
		}
		for _, key := range keyed.Keys() {
			if seen[key] {
				continue
			}
			seen[key] = true
			value, err := r.Get(key)
			if err != nil {
				return err
			}
			setNestedValue(nested, key, value)
		}
	}

	section := navigateToPath(nested, basePath)
	sectionMap, ok := section.(map[string]any)
	if !ok {
		if section == nil {
			sectionMap = make(map[string]any)
		} else {
			return fmt.Errorf("%w: path %q refers to non-map value (type %T)", ErrConversion, basePath, section)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook:       defaultDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("%w: decoder creation failed: %w", ErrConversion, err)
	}
	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("%w: decode failed for path %q: %w", ErrConversion, basePath, err)
	}
	return nil
}

// ValidateRequired checks every registered required key and reports
// all missing ones at once. It never fails fast on the first miss.
func (r *Resolver) ValidateRequired() error {
	var missing []string
	for _, key := range r.required {
		if _, err := r.Get(key); errors.Is(err, ErrMissingKey) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingRequiredError{Missing: missing}
}

// ResolvePlaceholders substitutes ${...} placeholders in text.
// Placeholders with neither a value nor a default pass through
// verbatim. The only possible error is a circular reference.
func (r *Resolver) ResolvePlaceholders(text string) (string, error) {
	return r.lenientExpander().Expand(text, r.rawLookup)
}

// ResolveRequiredPlaceholders substitutes ${...} placeholders in text,
// failing with UnresolvedPlaceholderError on any placeholder lacking
// both a value and a default.
func (r *Resolver) ResolveRequiredPlaceholders(text string) (string, error) {
	return r.strictExpander().Expand(text, r.rawLookup)
}

// rawLookup feeds the expanders: raw chain lookup, stringified,
// without nested expansion (the expander recurses on its own).
func (r *Resolver) rawLookup(key string) (string, bool) {
	value, ok := r.Raw(key)
	if !ok {
		return "", false
	}
	if text, isString := value.(string); isString {
		return text, true
	}
	return fmt.Sprintf("%v", value), true
}

func (r *Resolver) dropExpanders() {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	r.strict, r.lenient, r.nested = nil, nil, nil
}

func (r *Resolver) nestedExpander() *Expander {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	if r.nested == nil {
		r.nested = NewExpander(r.prefix, r.suffix, r.separator, r.ignoreUnresolvable)
	}
	return r.nested
}

func (r *Resolver) strictExpander() *Expander {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	if r.strict == nil {
		r.strict = NewExpander(r.prefix, r.suffix, r.separator, false)
	}
	return r.strict
}

func (r *Resolver) lenientExpander() *Expander {
	r.lazy.Lock()
	defer r.lazy.Unlock()
	if r.lenient == nil {
		r.lenient = NewExpander(r.prefix, r.suffix, r.separator, true)
	}
	return r.lenient
}
