package track

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNoSuchTrack is returned when the input matches no catalog entry,
	// either as a name or as an index.
	ErrNoSuchTrack = errors.New("no such track")
	// ErrAlreadyActive is returned when the resolved track equals the
	// currently committed one; committing it would be a no-op switch.
	ErrAlreadyActive = errors.New("track is already active")
	// ErrEmptyCatalog is returned when the server publishes no tracks at all.
	ErrEmptyCatalog = errors.New("catalog has no tracks")
)

// Resolve maps raw operator input to a track name from the catalog.
//
// Resolution order: empty input selects the catalog's first entry; all-digit
// input is a zero-based index into the catalog; anything else must match an
// entry exactly. Whichever path resolves, a result equal to current is
// rejected with ErrAlreadyActive so the caller re-prompts instead of
// committing a no-op.
//
// Resolve is side-effect-free and keeps no state between calls; the
// enclosing loop owns the retry behavior.
func Resolve(catalog []string, current, input string) (string, error) {
	if len(catalog) == 0 {
		return "", ErrEmptyCatalog
	}

	input = strings.TrimSpace(input)

	var chosen string

	switch {
	case input == "":
		chosen = catalog[0]
	case isAllDigits(input):
		index, err := strconv.Atoi(input)
		if err != nil || index >= len(catalog) {
			return "", ErrNoSuchTrack
		}

		chosen = catalog[index]
	default:
		for _, name := range catalog {
			if name == input {
				chosen = name
				break
			}
		}

		if chosen == "" {
			return "", ErrNoSuchTrack
		}
	}

	if chosen == current {
		return "", ErrAlreadyActive
	}

	return chosen, nil
}

// isAllDigits reports whether s consists solely of ASCII digits.
func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
