// Package strata provides layered configuration resolution for Go
// applications: named key/value sources arranged in a precedence
// chain, a resolver with recursive ${...} placeholder substitution
// and typed conversion, and a small boolean expression language over
// named profiles.
//
// Features:
//   - Ordered source chain with add-first/last/before/after precedence
//     operations and copy-on-write snapshots for concurrent readers
//   - Recursive ${key} and ${key:default} placeholder expansion with
//     strict and lenient modes and cycle detection
//   - Typed value access with automatic conversions for common Go types
//   - Struct decoding via mapstructure with duration, time, IP, and
//     URL hooks
//   - Required-key validation reporting every missing key at once
//   - Profile expressions with &, |, ! and parentheses
//   - Sources backed by maps, environment snapshots, and TOML, YAML,
//     or JSON files
//
// Quick Start:
//
//	env, err := strata.NewBuilder().
//	    WithMap("flags", map[string]any{"server.port": 8080}).
//	    WithEnviron("env", os.Environ(), "MYAPP_").
//	    WithFile("file", "config.toml").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := env.Resolver().Int64("server.port")
//	addr, _ := env.Resolver().ResolvePlaceholders("${server.host:localhost}:${server.port}")
//
// Precedence is the chain order: the first source added has the
// highest priority, and the first source containing a key wins.
//
// Profiles:
//
//	p, err := strata.ProfilesOf("production & (eu | us)")
//	if err == nil && env.AcceptsProfiles(p) {
//	    // production with a region enabled
//	}
package strata
