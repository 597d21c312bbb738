package entities

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// fourPart matches NuGet versions with a revision ("3.7.400.1", "1.0.0.0-beta").
var fourPart = regexp.MustCompile(`^(v?\d+\.\d+\.\d+)\.(\d+)([-+].*)?$`)

// Version is an immutable, totally-ordered package version: semantic versions plus
// an optional fourth revision component as NuGet allows.
// The zero value is not a valid version; use ParseVersion.
type Version struct {
	raw      string
	parsed   *semver.Version
	revision uint64
}

// ParseVersion parses a declared or published version string.
// Two-component versions ("1.2"), four-component versions ("1.2.3.4") and a
// leading "v" are accepted.
func ParseVersion(raw string) (Version, error) {
	text := raw
	var revision uint64
	if m := fourPart.FindStringSubmatch(raw); m != nil {
		rev, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		text, revision = m[1]+m[3], rev
	}

	parsed, err := semver.NewVersion(text)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return Version{raw: raw, parsed: parsed, revision: revision}, nil
}

// MustParseVersion is ParseVersion for literals known to be valid.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool { return v.parsed == nil }

// IsPrerelease reports whether v carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.parsed != nil && v.parsed.Prerelease() != ""
}

// Major returns the major component.
func (v Version) Major() uint64 { return v.parsed.Major() }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.parsed.Minor() }

// Revision returns the fourth component, zero when absent.
func (v Version) Revision() uint64 { return v.revision }

// Compare returns -1, 0 or 1: major.minor.patch, then revision, then prerelease
// precedence with labels compared case-insensitively. Build metadata does not participate.
func (v Version) Compare(other Version) int {
	if c := core(v.parsed).Compare(core(other.parsed)); c != 0 {
		return c
	}
	if c := cmp.Compare(v.revision, other.revision); c != 0 {
		return c
	}
	return prerelease(v.parsed).Compare(prerelease(other.parsed))
}

func core(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

func prerelease(v *semver.Version) *semver.Version {
	return semver.New(0, 0, 0, strings.ToLower(v.Prerelease()), "")
}

// Equal reports precedence equality.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// String returns the version exactly as it was written.
func (v Version) String() string { return v.raw }

// MaxVersion returns the highest of the given versions.
func MaxVersion(first Version, rest ...Version) Version {
	highest := first
	for _, v := range rest {
		if highest.LessThan(v) {
			highest = v
		}
	}
	return highest
}
