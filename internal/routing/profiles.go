package routing

import (
	"fmt"
	"sort"
)

// categoryRank fixes the presentation order of profile groups.
var categoryRank = map[ProfileCategory]int{
	CategoryCycling: 0,
	CategoryWalking: 1,
	CategoryDriving: 2,
	CategoryOther:   3,
}

// SortProfiles returns a copy of profiles in display order: grouped by
// category (cycling, walking, driving, other), each group alphabetical by
// title. The input slice is not modified.
func SortProfiles(profiles []ProfileMetadata) []ProfileMetadata {
	sorted := make([]ProfileMetadata, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rankOf(sorted[i].Category), rankOf(sorted[j].Category)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

// rankOf treats unknown categories as "other" so a stray value sorts last
// instead of panicking.
func rankOf(c ProfileCategory) int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return categoryRank[CategoryOther]
}

// profileIDs extracts the catalog's id list, in catalog order.
func profileIDs(profiles []ProfileMetadata) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// hasProfile reports whether id appears in the catalog.
func hasProfile(profiles []ProfileMetadata, id string) bool {
	for _, p := range profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

// validateCatalog enforces the construction-time invariants every adapter
// must satisfy: a non-empty catalog, a default profile that appears in it,
// and an exhaustive mapping from every catalog id to a backend-native
// profile string. Violations are programming errors surfaced at
// construction/registration, never at request time.
func validateCatalog(name string, profiles []ProfileMetadata, defaultProfile string, backendProfiles map[string]string) error {
	if len(profiles) == 0 {
		return fmt.Errorf("routing: %s: profile catalog is empty", name)
	}
	if !hasProfile(profiles, defaultProfile) {
		return fmt.Errorf("routing: %s: default profile %q is not in the catalog", name, defaultProfile)
	}
	for _, p := range profiles {
		if _, ok := backendProfiles[p.ID]; !ok {
			return fmt.Errorf("routing: %s: profile %q has no backend mapping", name, p.ID)
		}
	}
	return nil
}
