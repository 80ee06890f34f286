// File: strata/chain_test.go
package strata_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/strataconf/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(name string) strata.Source {
	return strata.NewMapSource(name, map[string]any{"origin": name})
}

func TestChainOrdering(t *testing.T) {
	t.Run("AddFirst Has Highest Precedence", func(t *testing.T) {
		chain := strata.NewChain()
		a := named("a")
		chain.AddLast(named("b"))
		chain.AddFirst(a)

		assert.Equal(t, a, chain.Get("a"))
		assert.Equal(t, 0, chain.PrecedenceOf(a))
		assert.Equal(t, 2, chain.Len())
	})

	t.Run("AddLast Has Lowest Precedence", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("a"))
		last := named("z")
		chain.AddLast(last)

		assert.Equal(t, 1, chain.PrecedenceOf(last))
	})

	t.Run("Duplicate Name Is Replaced Not Duplicated", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("a"))
		chain.AddLast(named("b"))

		replacement := named("a")
		chain.AddLast(replacement)

		assert.Equal(t, 2, chain.Len())
		assert.Equal(t, 1, chain.PrecedenceOf(replacement))
		assert.Equal(t, replacement, chain.Get("a"))
	})

	t.Run("AddBefore And AddAfter", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("a"))
		chain.AddLast(named("c"))

		b := named("b")
		require.NoError(t, chain.AddBefore("c", b))
		assert.Equal(t, 1, chain.PrecedenceOf(b))

		d := named("d")
		require.NoError(t, chain.AddAfter("c", d))
		assert.Equal(t, 3, chain.PrecedenceOf(d))
		assert.Equal(t, "[a, b, c, d]", chain.String())
	})

	t.Run("Relative Insert Against Missing Anchor", func(t *testing.T) {
		chain := strata.NewChain()
		err := chain.AddBefore("ghost", named("a"))
		assert.ErrorIs(t, err, strata.ErrSourceNotFound)

		err = chain.AddAfter("ghost", named("a"))
		assert.ErrorIs(t, err, strata.ErrSourceNotFound)
	})

	t.Run("Self Relative Insert Is Rejected", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("x"))

		err := chain.AddBefore("x", named("x"))
		assert.ErrorIs(t, err, strata.ErrInvalidArgument)
	})
}

func TestChainMutation(t *testing.T) {
	t.Run("Remove Returns The Source", func(t *testing.T) {
		chain := strata.NewChain()
		a := named("a")
		chain.AddLast(a)

		assert.Equal(t, a, chain.Remove("a"))
		assert.Nil(t, chain.Remove("a"))
		assert.Equal(t, 0, chain.Len())
	})

	t.Run("Replace Keeps Position", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("a"))
		chain.AddLast(named("b"))
		chain.AddLast(named("c"))

		replacement := named("b")
		require.NoError(t, chain.Replace("b", replacement))
		assert.Equal(t, 1, chain.PrecedenceOf(replacement))

		err := chain.Replace("ghost", named("ghost"))
		assert.ErrorIs(t, err, strata.ErrSourceNotFound)
	})

	t.Run("Contains And Missing Lookup", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("a"))

		assert.True(t, chain.Contains("a"))
		assert.False(t, chain.Contains("b"))
		assert.Nil(t, chain.Get("b"))
		assert.Equal(t, -1, chain.PrecedenceOf(named("b")))
		assert.Equal(t, -1, chain.PrecedenceOf(nil))
	})

	t.Run("Copy Preserves Order And Independence", func(t *testing.T) {
		original := strata.NewChain()
		original.AddLast(named("a"))
		original.AddLast(named("b"))

		clone := strata.NewChainFrom(original)
		clone.AddFirst(named("z"))

		assert.Equal(t, 2, original.Len())
		assert.Equal(t, 3, clone.Len())
		assert.Equal(t, "[a, b]", original.String())
	})
}

func TestChainConcurrency(t *testing.T) {
	t.Run("Snapshot Is Stable Under Mutation", func(t *testing.T) {
		chain := strata.NewChain()
		for i := 0; i < 10; i++ {
			chain.AddLast(named(fmt.Sprintf("s%d", i)))
		}

		snapshot := chain.Snapshot()
		require.Len(t, snapshot, 10)

		chain.Remove("s0")
		chain.AddFirst(named("intruder"))

		assert.Len(t, snapshot, 10)
		assert.Equal(t, "s0", snapshot[0].Name())
	})

	t.Run("Concurrent Readers And Writers", func(t *testing.T) {
		chain := strata.NewChain()
		chain.AddLast(named("seed"))

		stop := make(chan struct{})
		writerDone := make(chan struct{})

		go func() {
			defer close(writerDone)
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				name := fmt.Sprintf("w%d", i%5)
				chain.AddFirst(named(name))
				chain.Remove(name)
			}
		}()

		var readers sync.WaitGroup
		for r := 0; r < 4; r++ {
			readers.Add(1)
			go func() {
				defer readers.Done()
				for i := 0; i < 1000; i++ {
					count := 0
					for range chain.All() {
						count++
					}
					// The seed source is never removed, so every
					// snapshot holds at least one element.
					assert.GreaterOrEqual(t, count, 1)
				}
			}()
		}

		readers.Wait()
		close(stop)
		<-writerDone
	})
}

func TestChainIteration(t *testing.T) {
	chain := strata.NewChain()
	chain.AddLast(named("a"))
	chain.AddLast(named("b"))

	var seen []string
	for source := range chain.All() {
		seen = append(seen, source.Name())
	}
	assert.Equal(t, []string{"a", "b"}, seen)

	// Restartable: a second pass yields the same sequence.
	seen = seen[:0]
	for source := range chain.All() {
		seen = append(seen, source.Name())
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestChainErrorsAreDescriptive(t *testing.T) {
	chain := strata.NewChain()
	chain.AddLast(named("x"))

	err := chain.AddBefore("x", named("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative to itself")
	assert.True(t, errors.Is(err, strata.ErrInvalidArgument))
}
