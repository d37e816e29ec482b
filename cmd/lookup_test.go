package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitFlag(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		c := &cobra.Command{Use: "test"}
		c.Flags().IntP("limit", "n", 10, "")
		require.NoError(t, c.ParseFlags(args))
		return c
	}

	n, err := limitFlag(newCmd())
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = limitFlag(newCmd("-n", "3"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"0", "-2"} {
		_, err := limitFlag(newCmd("--limit", bad))
		assert.ErrorContains(t, err, "--limit must be positive", bad)
	}
}

func TestSearchRejectsZeroLimit(t *testing.T) {
	c := &cobra.Command{Use: "search", RunE: runSearch}
	c.Flags().IntP("limit", "n", 10, "")
	require.NoError(t, c.ParseFlags([]string{"--limit", "0"}))

	err := runSearch(c, []string{"artist", "muse"})
	assert.ErrorContains(t, err, "--limit must be positive, got 0")
}
