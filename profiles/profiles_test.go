package profiles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillscout/skillscout/config"
)

func TestLookupConfiguredEntries(t *testing.T) {
	r := NewRegistry([]config.ProfileEntry{
		{Name: "Omar", City: "Multan", UID: "u9", Topic: "DevOps"},
	})

	p, err := r.Lookup("u9")
	require.NoError(t, err)
	require.Equal(t, "Omar", p.Name)
	require.Equal(t, "Multan", p.City)
	require.Equal(t, "DevOps", p.Topic)

	// Configured entries replace the built-in set entirely.
	_, err = r.Lookup("u1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookupFallsBackToDefaults(t *testing.T) {
	r := NewRegistry(nil)

	p, err := r.Lookup("u1")
	require.NoError(t, err)
	require.Equal(t, "Ayesha", p.Name)
	require.Equal(t, "Karachi", p.City)

	_, err = r.Lookup("unknown")
	require.ErrorIs(t, err, ErrNotFound)
}
