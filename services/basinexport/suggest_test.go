package basinexport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMissingIds(t *testing.T) {
	catalog := []string{"17040201", "17040202", "17040203"}

	missing := MissingIds([]string{"17040201", "17040299", "17040210"}, catalog)
	diff := cmp.Diff([]string{"17040299", "17040210"}, missing)
	require.Empty(t, diff)

	require.Empty(t, MissingIds([]string{"17040202"}, catalog))
	require.Empty(t, MissingIds(nil, catalog))
}

func TestSuggestIds(t *testing.T) {
	catalog := []string{"17040201", "17040202", "17060101"}

	// a single transposed digit should resolve to the nearest code
	out := SuggestIds([]string{"17040210"}, catalog)
	require.Len(t, out, 1)
	require.Equal(t, "17040210", out[0].Id)
	require.Equal(t, "17040201", out[0].Suggestion)
	require.Greater(t, out[0].Similarity, 0.9)
}

func TestSuggestIdsEmptyCatalog(t *testing.T) {
	out := SuggestIds([]string{"17040201"}, nil)
	require.Len(t, out, 1)
	require.Empty(t, out[0].Suggestion)
}
