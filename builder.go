// File: strata/builder.go
package strata

import "fmt"

// ValidatorFunc validates a fully built Environment and returns an
// error if it is unusable.
type ValidatorFunc func(env *Environment) error

// Builder provides a fluent interface for assembling an Environment:
// sources in precedence order, resolver configuration, required keys,
// and validators.
type Builder struct {
	sources    []func() (Source, error)
	prefix     string
	suffix     string
	separator  string
	ignore     bool
	required   []string
	converter  Converter
	active     []string
	validators []ValidatorFunc
}

// NewBuilder creates a new environment builder.
func NewBuilder() *Builder {
	return &Builder{
		prefix:    DefaultPlaceholderPrefix,
		suffix:    DefaultPlaceholderSuffix,
		separator: DefaultPlaceholderSeparator,
	}
}

// WithSource appends a source. Sources are added last-in-line, so the
// first call has the highest precedence.
func (b *Builder) WithSource(source Source) *Builder {
	b.sources = append(b.sources, func() (Source, error) { return source, nil })
	return b
}

// WithMap appends a map-backed source.
func (b *Builder) WithMap(name string, values map[string]any) *Builder {
	return b.WithSource(NewMapSource(name, values))
}

// WithEnviron appends a source over an environment snapshot, typically
// os.Environ(), with the given variable-name prefix.
func (b *Builder) WithEnviron(name string, environ []string, prefix string) *Builder {
	return b.WithSource(NewEnvSource(name, environ, prefix))
}

// WithFile appends a source loaded from a TOML, YAML, or JSON file.
// The file is read during Build; a missing file is a build error.
func (b *Builder) WithFile(name, path string) *Builder {
	b.sources = append(b.sources, func() (Source, error) {
		source, err := LoadFileSource(name, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %q: %w", name, err)
		}
		return source, nil
	})
	return b
}

// WithPlaceholderPrefix sets the placeholder opening delimiter.
func (b *Builder) WithPlaceholderPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithPlaceholderSuffix sets the placeholder closing delimiter.
func (b *Builder) WithPlaceholderSuffix(suffix string) *Builder {
	b.suffix = suffix
	return b
}

// WithValueSeparator sets the key/default separator inside placeholders.
func (b *Builder) WithValueSeparator(separator string) *Builder {
	b.separator = separator
	return b
}

// WithIgnoreUnresolvable makes typed retrieval tolerate unresolvable
// nested placeholders instead of failing.
func (b *Builder) WithIgnoreUnresolvable() *Builder {
	b.ignore = true
	return b
}

// WithRequired registers keys that must resolve; Build validates them.
func (b *Builder) WithRequired(keys ...string) *Builder {
	b.required = append(b.required, keys...)
	return b
}

// WithConverter sets a custom type-conversion collaborator.
func (b *Builder) WithConverter(conv Converter) *Builder {
	b.converter = conv
	return b
}

// WithActiveProfiles explicitly activates profiles, overriding the
// ActiveProfilesKey configuration key.
func (b *Builder) WithActiveProfiles(names ...string) *Builder {
	b.active = append(b.active, names...)
	return b
}

// WithValidator adds a validation function run at the end of Build.
// Multiple validators execute in the order added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build assembles the Environment: loads file sources, populates the
// chain in declaration order, configures the resolver, applies
// profiles, validates required keys, and runs validators.
func (b *Builder) Build() (*Environment, error) {
	env := NewEnvironment()

	for _, load := range b.sources {
		source, err := load()
		if err != nil {
			return nil, err
		}
		env.Chain().AddLast(source)
	}

	resolver := env.Resolver()
	resolver.SetPlaceholderPrefix(b.prefix)
	resolver.SetPlaceholderSuffix(b.suffix)
	resolver.SetValueSeparator(b.separator)
	resolver.SetIgnoreUnresolvable(b.ignore)
	if b.converter != nil {
		resolver.SetConverter(b.converter)
	}
	resolver.SetRequired(b.required...)

	if len(b.active) > 0 {
		if err := env.SetActiveProfiles(b.active...); err != nil {
			return nil, err
		}
	}

	if err := resolver.ValidateRequired(); err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(env); err != nil {
			return nil, fmt.Errorf("environment validation failed: %w", err)
		}
	}

	return env, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Environment {
	env, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("environment build failed: %v", err))
	}
	return env
}
