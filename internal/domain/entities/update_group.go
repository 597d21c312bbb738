package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const identityBytes = 8

// UpdateGroup bundles recommendations that ship as one change set.
type UpdateGroup struct {
	Key             GroupingKey
	Recommendations []UpgradeRecommendation
}

// FoldUpdateGroups groups recommendations that carry an upgrade.
// Groups keep the order in which they are first seen.
func FoldUpdateGroups(grouping Grouping, recommendations []UpgradeRecommendation) []UpdateGroup {
	var groups []UpdateGroup
	index := make(map[GroupingKey]int)

	for _, rec := range recommendations {
		if !rec.HasUpgrade() {
			continue
		}
		key := grouping.GroupOf(rec.Dependency.Name)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, UpdateGroup{Key: key})
		}
		groups[pos].Recommendations = append(groups[pos].Recommendations, rec)
	}

	return groups
}

// ChangeSetIdentity fingerprints the group's contents.
// The digest covers "name:version" pairs sorted by lower-cased name, so
// the same contents always produce the same 16 hex characters.
func (g UpdateGroup) ChangeSetIdentity() string {
	pairs := make([]string, 0, len(g.Recommendations))
	for _, rec := range g.Recommendations {
		pairs = append(pairs, rec.Dependency.Key()+":"+rec.Recommended.Version.String())
	}
	sort.Strings(pairs)

	sum := sha256.Sum256([]byte(strings.Join(pairs, ",")))
	return hex.EncodeToString(sum[:identityBytes])
}

// BranchName is "prefix/group-code/identity".
func (g UpdateGroup) BranchName(prefix string) string {
	return prefix + "/" + g.Key.Code() + "/" + g.ChangeSetIdentity()
}
