// File: strata/source.go
package strata

import "strings"

// Source is a named read-only view over a key/value backing store.
// Identity is the name alone: two sources with the same name are
// interchangeable for chain operations even if their contents differ.
// Lookup and Contains must be pure reads over caller-owned data.
type Source interface {
	// Name returns the immutable, non-empty identity of the source.
	Name() string

	// Lookup returns the value stored under key, if any.
	Lookup(key string) (any, bool)

	// Contains reports whether the source holds a value for key.
	// Implementations over enumerable stores should answer directly
	// rather than materializing the value.
	Contains(key string) bool
}

// MapSource is a Source backed by a flat map. Nested maps supplied at
// construction are flattened into dot-notation keys.
type MapSource struct {
	name   string
	values map[string]any
}

// NewMapSource creates a Source over the given map. Nested
// map[string]any values are flattened, so
// {"server": {"port": 80}} is reachable as "server.port".
func NewMapSource(name string, values map[string]any) *MapSource {
	normalized, _ := normalizeKeys(values).(map[string]any)
	return &MapSource{
		name:   name,
		values: flattenMap(normalized, ""),
	}
}

// Name returns the source identity.
func (s *MapSource) Name() string { return s.name }

// Lookup returns the value stored under key.
func (s *MapSource) Lookup(key string) (any, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Contains reports whether key is present without touching the value.
func (s *MapSource) Contains(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns every key held by the source, in no particular order.
func (s *MapSource) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

// EnvTransformFunc converts a configuration key to the environment
// variable name to probe for it.
type EnvTransformFunc func(key string) string

// defaultEnvTransform maps "server.port" to "PREFIX_SERVER_PORT":
// dots and dashes become underscores, the result is uppercased, and
// the prefix is prepended.
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(key string) string {
		env := strings.ReplaceAll(key, ".", "_")
		env = strings.ReplaceAll(env, "-", "_")
		env = strings.ToUpper(env)
		return prefix + env
	}
}

// EnvSource is a Source over a snapshot of environment variables.
// The snapshot is taken by the caller (typically os.Environ()) so the
// engine never reads process-global state on its own.
type EnvSource struct {
	name      string
	values    map[string]string
	transform EnvTransformFunc
}

// NewEnvSource creates a Source over an environment snapshot in the
// "KEY=value" form produced by os.Environ. Lookups accept both the
// literal variable name and dotted configuration keys, which are
// mapped through the prefix transform (e.g. "server.port" probes
// "MYAPP_SERVER_PORT" for prefix "MYAPP_").
func NewEnvSource(name string, environ []string, prefix string) *EnvSource {
	return NewEnvSourceWithTransform(name, environ, defaultEnvTransform(prefix))
}

// NewEnvSourceWithTransform is NewEnvSource with a custom key
// transform. A nil transform disables dotted-key mapping.
func NewEnvSourceWithTransform(name string, environ []string, transform EnvTransformFunc) *EnvSource {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if eq := strings.IndexByte(entry, '='); eq > 0 {
			values[entry[:eq]] = entry[eq+1:]
		}
	}
	return &EnvSource{
		name:      name,
		values:    values,
		transform: transform,
	}
}

// Name returns the source identity.
func (s *EnvSource) Name() string { return s.name }

// Lookup returns the variable stored under key, trying the literal
// name first and the transformed name second.
func (s *EnvSource) Lookup(key string) (any, bool) {
	if value, ok := s.values[key]; ok {
		return value, true
	}
	if s.transform != nil {
		if value, ok := s.values[s.transform(key)]; ok {
			return value, true
		}
	}
	return nil, false
}

// Contains reports whether the snapshot holds key under either name.
func (s *EnvSource) Contains(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}
