// File: strata/builder_test.go
package strata_test

import (
	"errors"
	"testing"

	"github.com/strataconf/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("Sources In Declaration Order", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithMap("overrides", map[string]any{"k": "high"}).
			WithMap("defaults", map[string]any{"k": "low", "other": "x"}).
			Build()
		require.NoError(t, err)

		assert.Equal(t, 2, env.Chain().Len())
		assert.Equal(t, "high", env.Resolver().StringOr("k", "?"))
		assert.Equal(t, "x", env.Resolver().StringOr("other", "?"))
	})

	t.Run("File Source", func(t *testing.T) {
		path := writeFile(t, "app.toml", `
[server]
host = "built"
`)

		env, err := strata.NewBuilder().
			WithFile("file", path).
			Build()
		require.NoError(t, err)

		assert.Equal(t, "built", env.Resolver().StringOr("server.host", "?"))
	})

	t.Run("Missing File Fails The Build", func(t *testing.T) {
		_, err := strata.NewBuilder().
			WithFile("file", "does/not/exist.toml").
			Build()
		assert.ErrorIs(t, err, strata.ErrFileNotFound)
	})

	t.Run("Environment Snapshot Source", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithEnviron("env", []string{"APP_SERVER_PORT=1234"}, "APP_").
			Build()
		require.NoError(t, err)

		port, err := env.Resolver().Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(1234), port)
	})

	t.Run("Required Keys Checked At Build", func(t *testing.T) {
		_, err := strata.NewBuilder().
			WithMap("main", map[string]any{"present": "1"}).
			WithRequired("present", "absent.one", "absent.two").
			Build()
		require.Error(t, err)

		var missing *strata.MissingRequiredError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"absent.one", "absent.two"}, missing.Missing)
	})

	t.Run("Placeholder Configuration", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithMap("main", map[string]any{"greeting": "hi %{name|there}"}).
			WithPlaceholderPrefix("%{").
			WithValueSeparator("|").
			Build()
		require.NoError(t, err)

		value, err := env.Resolver().String("greeting")
		require.NoError(t, err)
		assert.Equal(t, "hi there", value)
	})

	t.Run("Ignore Unresolvable", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithMap("main", map[string]any{"broken": "${ghost}"}).
			WithIgnoreUnresolvable().
			Build()
		require.NoError(t, err)

		value, err := env.Resolver().String("broken")
		require.NoError(t, err)
		assert.Equal(t, "${ghost}", value)
	})

	t.Run("Active Profiles", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithActiveProfiles("production").
			Build()
		require.NoError(t, err)

		assert.True(t, env.IsProfileActive("production"))
	})

	t.Run("Invalid Active Profile Fails The Build", func(t *testing.T) {
		_, err := strata.NewBuilder().
			WithActiveProfiles("!bad").
			Build()
		assert.ErrorIs(t, err, strata.ErrInvalidArgument)
	})

	t.Run("Validators Run In Order", func(t *testing.T) {
		var ran []string
		_, err := strata.NewBuilder().
			WithMap("main", map[string]any{"k": "v"}).
			WithValidator(func(env *strata.Environment) error {
				ran = append(ran, "first")
				return nil
			}).
			WithValidator(func(env *strata.Environment) error {
				ran = append(ran, "second")
				return errors.New("rejected")
			}).
			Build()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")
		assert.Equal(t, []string{"first", "second"}, ran)
	})

	t.Run("Custom Converter", func(t *testing.T) {
		env, err := strata.NewBuilder().
			WithMap("main", map[string]any{"k": 7}).
			WithConverter(&staticConverter{value: "converted"}).
			Build()
		require.NoError(t, err)

		value, err := env.Resolver().String("k")
		require.NoError(t, err)
		assert.Equal(t, "converted", value)
	})
}

func TestMustBuild(t *testing.T) {
	t.Run("Returns On Success", func(t *testing.T) {
		env := strata.NewBuilder().
			WithMap("main", map[string]any{"k": "v"}).
			MustBuild()
		assert.Equal(t, "v", env.Resolver().StringOr("k", "?"))
	})

	t.Run("Panics On Failure", func(t *testing.T) {
		assert.Panics(t, func() {
			strata.NewBuilder().
				WithRequired("never.present").
				MustBuild()
		})
	})
}
