package track

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolve_IndexSelectsEntry verifies every in-range index selects its entry.
func TestResolve_IndexSelectsEntry(t *testing.T) {
	t.Parallel()

	catalog := []string{"stable", "testing", "rawhide"}
	for i, want := range catalog {
		got, err := Resolve(catalog, "", strconv.Itoa(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

// TestResolve_EmptyInputSelectsFirst verifies the default is catalog[0].
func TestResolve_EmptyInputSelectsFirst(t *testing.T) {
	t.Parallel()

	got, err := Resolve([]string{"stable", "testing"}, "testing", "")
	require.NoError(t, err)
	require.Equal(t, "stable", got)

	// Unless the first entry is already active.
	_, err = Resolve([]string{"stable", "testing"}, "stable", "")
	require.ErrorIs(t, err, ErrAlreadyActive)
}

// TestResolve_Rejections covers name misses, index misses and no-op switches.
func TestResolve_Rejections(t *testing.T) {
	t.Parallel()

	catalog := []string{"stable", "testing"}

	cases := []struct {
		name    string
		current string
		input   string
		wantErr error
	}{
		{name: "unknown name", current: "stable", input: "rawhide", wantErr: ErrNoSuchTrack},
		{name: "index out of range", current: "stable", input: "2", wantErr: ErrNoSuchTrack},
		{name: "huge index", current: "stable", input: "99999999999999999999", wantErr: ErrNoSuchTrack},
		{name: "name already active", current: "testing", input: "testing", wantErr: ErrAlreadyActive},
		{name: "index already active", current: "testing", input: "1", wantErr: ErrAlreadyActive},
		{name: "case differs", current: "stable", input: "Testing", wantErr: ErrNoSuchTrack},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(catalog, tc.current, tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// TestResolve_ExactNameMatch verifies names resolve by exact string match.
func TestResolve_ExactNameMatch(t *testing.T) {
	t.Parallel()

	got, err := Resolve([]string{"stable", "testing"}, "stable", "testing")
	require.NoError(t, err)
	require.Equal(t, "testing", got)
}

// TestResolve_EmptyCatalog verifies an empty catalog is surfaced distinctly.
func TestResolve_EmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := Resolve(nil, "stable", "")
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

// TestResolve_WhitespaceTrimmed verifies surrounding whitespace is not significant.
func TestResolve_WhitespaceTrimmed(t *testing.T) {
	t.Parallel()

	got, err := Resolve([]string{"stable", "testing"}, "stable", " testing\n")
	require.NoError(t, err)
	require.Equal(t, "testing", got)
}
