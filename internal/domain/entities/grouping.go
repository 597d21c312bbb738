package entities

import (
	"regexp"
	"strings"
)

var refUnsafe = regexp.MustCompile(`[^a-z0-9._-]+`)

// GroupingKey identifies the update group a dependency belongs to.
type GroupingKey struct {
	GroupName string
	TitleName string
	IsGroup   bool
}

// Code is the lower-cased, ref-safe form of the group name used in branch names.
func (k GroupingKey) Code() string {
	code := refUnsafe.ReplaceAllString(strings.ToLower(k.GroupName), "-")
	return strings.Trim(code, "-.")
}

// GroupFamily is a set of packages released together.
type GroupFamily struct {
	Name     string   `yaml:"name"`
	Members  []string `yaml:"members"`
	Prefixes []string `yaml:"prefixes"`
}

func (f GroupFamily) matches(name string) bool {
	for _, m := range f.Members {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	lower := strings.ToLower(name)
	for _, p := range f.Prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Grouping maps dependency names onto update groups.
// Families are consulted in order; the first match wins.
type Grouping struct {
	families []GroupFamily
}

// NewGrouping builds a grouping over the given families.
func NewGrouping(families []GroupFamily) Grouping {
	return Grouping{families: families}
}

// DefaultGroupFamilies are the co-release families known out of the box.
func DefaultGroupFamilies() []GroupFamily {
	return []GroupFamily{
		{
			Name: "NServiceBusCore",
			Members: []string{
				"NServiceBus",
				"NServiceBus.AcceptanceTesting",
				"NServiceBus.AcceptanceTests.Sources",
				"NServiceBus.PersistenceTests.Sources",
				"NServiceBus.TransportTests.Sources",
			},
		},
		{
			Name:     "AWSSDK",
			Prefixes: []string{"AWSSDK."},
		},
	}
}

// DefaultGrouping uses DefaultGroupFamilies.
func DefaultGrouping() Grouping { return NewGrouping(DefaultGroupFamilies()) }

// GroupOf returns the grouping key for name.
func (g Grouping) GroupOf(name string) GroupingKey {
	for _, f := range g.families {
		if f.matches(name) {
			return GroupingKey{
				GroupName: f.Name,
				TitleName: "the " + f.Name + " group",
				IsGroup:   true,
			}
		}
	}
	return GroupingKey{GroupName: name, TitleName: name}
}
