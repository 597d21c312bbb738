package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// IgnoreConditionKind is the variant of an IgnoreCondition.
type IgnoreConditionKind int

const (
	// IgnoreUnsupported matches nothing; malformed condition names fail open.
	IgnoreUnsupported IgnoreConditionKind = iota
	// IgnoreAllVersions suppresses every version.
	IgnoreAllVersions
	// IgnoreMajorBand suppresses [M, M+1).
	IgnoreMajorBand
	// IgnoreMinorBand suppresses [M.m, M.m+1).
	IgnoreMinorBand
)

var bandPattern = regexp.MustCompile(`^(?P<major>\d+)(\.(?P<minor>\d+))?\.x$`)

// IgnoreCondition is an operator-defined version range that must never be recommended.
type IgnoreCondition struct {
	PackageName string
	Source      string
	Kind        IgnoreConditionKind
	Major       uint64
	Minor       uint64
}

// ParseIgnoreCondition interprets a condition file name.
// "all" suppresses everything, "5.x" a major band and "5.2.x" a minor band.
// Anything else yields an IgnoreUnsupported condition.
func ParseIgnoreCondition(packageName, name string) IgnoreCondition {
	cond := IgnoreCondition{PackageName: packageName, Source: name, Kind: IgnoreUnsupported}

	if strings.EqualFold(name, "all") {
		cond.Kind = IgnoreAllVersions
		return cond
	}

	match := bandPattern.FindStringSubmatch(strings.ToLower(name))
	if match == nil {
		return cond
	}

	major, err := strconv.ParseUint(match[bandPattern.SubexpIndex("major")], 10, 64)
	if err != nil {
		return cond
	}
	minorText := match[bandPattern.SubexpIndex("minor")]
	if minorText == "" {
		cond.Kind = IgnoreMajorBand
		cond.Major = major
		return cond
	}

	minor, err := strconv.ParseUint(minorText, 10, 64)
	if err != nil {
		return cond
	}
	cond.Kind = IgnoreMinorBand
	cond.Major = major
	cond.Minor = minor
	return cond
}

// Contains reports whether the condition suppresses v.
// Bands include their lower bound and exclude their upper bound under version
// precedence, so 6.0.0-beta falls inside 5.x.
func (c IgnoreCondition) Contains(v Version) bool {
	switch c.Kind {
	case IgnoreAllVersions:
		return true
	case IgnoreMajorBand:
		lower := MustParseVersion(fmt.Sprintf("%d.0.0", c.Major))
		upper := MustParseVersion(fmt.Sprintf("%d.0.0", c.Major+1))
		return !v.LessThan(lower) && v.LessThan(upper)
	case IgnoreMinorBand:
		lower := MustParseVersion(fmt.Sprintf("%d.%d.0", c.Major, c.Minor))
		upper := MustParseVersion(fmt.Sprintf("%d.%d.0", c.Major, c.Minor+1))
		return !v.LessThan(lower) && v.LessThan(upper)
	default:
		return false
	}
}

// String renders the suppressed range.
func (c IgnoreCondition) String() string {
	switch c.Kind {
	case IgnoreAllVersions:
		return "(, )"
	case IgnoreMajorBand:
		return fmt.Sprintf("[%d.0.0, %d.0.0)", c.Major, c.Major+1)
	case IgnoreMinorBand:
		return fmt.Sprintf("[%d.%d.0, %d.%d.0)", c.Major, c.Minor, c.Major, c.Minor+1)
	default:
		return "(none)"
	}
}

// IgnoreIndex is an immutable, case-insensitive lookup of conditions by dependency name.
type IgnoreIndex struct {
	byName map[string][]IgnoreCondition
}

// NewIgnoreIndex builds an index from a flat list of conditions.
func NewIgnoreIndex(conditions []IgnoreCondition) IgnoreIndex {
	byName := make(map[string][]IgnoreCondition)
	for _, c := range conditions {
		key := strings.ToLower(c.PackageName)
		byName[key] = append(byName[key], c)
	}
	return IgnoreIndex{byName: byName}
}

// For returns the conditions registered for name.
func (x IgnoreIndex) For(name string) []IgnoreCondition {
	return x.byName[strings.ToLower(name)]
}

// Suppresses reports whether any condition for name contains v.
func (x IgnoreIndex) Suppresses(name string, v Version) bool {
	for _, c := range x.For(name) {
		if c.Contains(v) {
			return true
		}
	}
	return false
}

// All returns every condition ordered by package name.
func (x IgnoreIndex) All() []IgnoreCondition {
	keys := make([]string, 0, len(x.byName))
	for k := range x.byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var all []IgnoreCondition
	for _, k := range keys {
		all = append(all, x.byName[k]...)
	}
	return all
}

// Len returns the number of conditions.
func (x IgnoreIndex) Len() int {
	n := 0
	for _, conds := range x.byName {
		n += len(conds)
	}
	return n
}
