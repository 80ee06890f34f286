// File: strata/env.go
package strata

import (
	"fmt"
	"sync"
)

// Configuration keys the Environment consults for profile activation.
// Both accept comma-delimited lists of profile names.
const (
	// ActiveProfilesKey names the profiles explicitly activated.
	ActiveProfilesKey = "profiles.active"

	// DefaultProfilesKey names the profiles used when none are active.
	DefaultProfilesKey = "profiles.default"

	// ReservedDefaultProfile is the default-profile name in effect
	// when neither key nor setter supplies one.
	ReservedDefaultProfile = "default"
)

// Environment couples a source chain, a resolver over it, and the
// active/default profile sets. Profile sets are seeded lazily from the
// ActiveProfilesKey and DefaultProfilesKey configuration keys the
// first time they are read, unless set explicitly first.
type Environment struct {
	chain    *Chain
	resolver *Resolver

	mu       sync.Mutex
	active   []string
	defaults []string
}

// NewEnvironment creates an environment with an empty source chain.
func NewEnvironment() *Environment {
	chain := NewChain()
	return &Environment{
		chain:    chain,
		resolver: NewResolver(chain),
	}
}

// NewEnvironmentWith creates an environment over an existing chain.
func NewEnvironmentWith(chain *Chain) *Environment {
	return &Environment{
		chain:    chain,
		resolver: NewResolver(chain),
	}
}

// Chain returns the environment's source chain for mutation.
func (e *Environment) Chain() *Chain { return e.chain }

// Resolver returns the environment's resolver.
func (e *Environment) Resolver() *Resolver { return e.resolver }

// ActiveProfiles returns the explicitly activated profiles. When none
// were set, the ActiveProfilesKey configuration key is consulted once;
// names in it that violate the naming rules are dropped.
func (e *Environment) ActiveProfiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyOf(e.activeLocked())
}

// SetActiveProfiles replaces the active profile set. Every name must
// be non-empty, not whitespace-only, and must not start with "!".
func (e *Environment) SetActiveProfiles(names ...string) error {
	validated, err := validateProfiles(names)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = validated
	return nil
}

// AddActiveProfile activates one more profile, keeping existing ones.
func (e *Environment) AddActiveProfile(name string) error {
	if !validProfile(name) {
		return fmt.Errorf("%w: invalid profile name %q", ErrInvalidArgument, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.activeLocked()
	for _, have := range current {
		if have == name {
			return nil
		}
	}
	e.active = append(copyOf(current), name)
	return nil
}

// DefaultProfiles returns the profiles in effect when no profile is
// active. When none were set, the DefaultProfilesKey configuration key
// is consulted once, falling back to ReservedDefaultProfile.
func (e *Environment) DefaultProfiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyOf(e.defaultsLocked())
}

// SetDefaultProfiles replaces the default profile set.
func (e *Environment) SetDefaultProfiles(names ...string) error {
	validated, err := validateProfiles(names)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = validated
	return nil
}

// IsProfileActive reports whether name is in the active set, or in the
// default set when nothing is active.
func (e *Environment) IsProfileActive(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.activeLocked()
	if len(active) > 0 {
		return containsString(active, name)
	}
	return containsString(e.defaultsLocked(), name)
}

// AcceptsProfiles evaluates a parsed profile expression against this
// environment's activation state.
func (e *Environment) AcceptsProfiles(p Profiles) bool {
	return p.Matches(e.IsProfileActive)
}

// Accepts parses the given expressions and reports whether any one of
// them matches (OR across expressions).
func (e *Environment) Accepts(expressions ...string) (bool, error) {
	p, err := ProfilesOf(expressions...)
	if err != nil {
		return false, err
	}
	return e.AcceptsProfiles(p), nil
}

func (e *Environment) activeLocked() []string {
	if e.active == nil {
		e.active = e.profilesFromKey(ActiveProfilesKey, nil)
	}
	return e.active
}

func (e *Environment) defaultsLocked() []string {
	if e.defaults == nil {
		e.defaults = e.profilesFromKey(DefaultProfilesKey, []string{ReservedDefaultProfile})
	}
	return e.defaults
}

func (e *Environment) profilesFromKey(key string, fallback []string) []string {
	value, err := e.resolver.String(key)
	if err != nil {
		if fallback == nil {
			return []string{}
		}
		return fallback
	}

	names := make([]string, 0)
	for _, name := range splitList(value) {
		if validProfile(name) {
			names = append(names, name)
		}
	}
	return names
}

func validateProfiles(names []string) ([]string, error) {
	validated := make([]string, 0, len(names))
	for _, name := range names {
		if !validProfile(name) {
			return nil, fmt.Errorf("%w: invalid profile name %q", ErrInvalidArgument, name)
		}
		validated = append(validated, name)
	}
	return validated, nil
}

func copyOf(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, have := range haystack {
		if have == needle {
			return true
		}
	}
	return false
}
