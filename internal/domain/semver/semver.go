package semver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	modsemver "golang.org/x/mod/semver"
)

// Prefix starts tag-style versions such as v1.2.3.
const Prefix = "v"

// Bump selects which part of a version is incremented.
type Bump string

const (
	// BumpPatch increments the patch number.
	BumpPatch Bump = "patch"
	// BumpMinor increments the minor number and resets patch.
	BumpMinor Bump = "minor"
	// BumpMajor increments the major number and resets minor and patch.
	BumpMajor Bump = "major"
)

var (
	// ErrInvalidVersion is returned for strings that are not major.minor.patch.
	ErrInvalidVersion = errors.New("invalid semantic version")
	// ErrUnknownBump is returned for bump names other than patch, minor and major.
	ErrUnknownBump = errors.New("unknown bump type")
	// ErrVersionOverflow is returned when a bumped component would not fit.
	ErrVersionOverflow = errors.New("version component overflow")
)

// Version is a major.minor.patch triple.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Parse reads "1.2.3" or "v1.2.3". Surrounding whitespace is ignored.
// Short forms, leading zeros, pre-release and build suffixes are rejected.
func Parse(s string) (Version, error) {
	prefixed := Prefix + StripPrefix(strings.TrimSpace(s))

	if !modsemver.IsValid(prefixed) ||
		modsemver.Canonical(prefixed) != prefixed ||
		modsemver.Prerelease(prefixed) != "" {
		return Version{}, fmt.Errorf("%q: %w", s, ErrInvalidVersion)
	}

	var numbers [3]uint64

	for i, part := range strings.Split(prefixed[len(Prefix):], ".") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%q: %w", s, ErrInvalidVersion)
		}

		numbers[i] = n
	}

	return Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag returns the v-prefixed form used for git tags and the manifest.
func (v Version) Tag() string {
	return Prefix + v.String()
}

// Compare returns -1, 0 or +1 comparing a with b.
func Compare(a, b Version) int {
	return modsemver.Compare(a.Tag(), b.Tag())
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// ParseBump reads a bump name; the empty string means patch.
func ParseBump(s string) (Bump, error) {
	switch b := Bump(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BumpPatch, nil
	case BumpPatch, BumpMinor, BumpMajor:
		return b, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownBump)
	}
}

// Increment returns the version following v for the bump.
// An unknown bump is treated as patch. A component already at its maximum
// cannot grow and yields ErrVersionOverflow.
func Increment(v Version, bump Bump) (Version, error) {
	var component uint64

	switch bump {
	case BumpMajor:
		component = v.Major
	case BumpMinor:
		component = v.Minor
	default:
		component = v.Patch
	}

	if component == math.MaxUint64 {
		return Version{}, fmt.Errorf("%s %s: %w", v, bump, ErrVersionOverflow)
	}

	switch bump {
	case BumpMajor:
		return Version{Major: v.Major + 1}, nil
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	}
}

// StripPrefix removes one leading "v".
func StripPrefix(s string) string {
	return strings.TrimPrefix(s, Prefix)
}

// AddPrefix returns s with exactly one leading "v".
func AddPrefix(s string) string {
	return Prefix + StripPrefix(s)
}

// Normalize returns the bare and the v-prefixed form of s.
func Normalize(s string) (bare, prefixed string) {
	bare = StripPrefix(strings.TrimSpace(s))

	return bare, Prefix + bare
}
