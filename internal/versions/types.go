package versions

import "slices"

// GameVersion is one entry of the registry's version catalog. The same shape
// describes Minecraft releases, Java versions and loader markers; the type id
// tells them apart.
type GameVersion struct {
	ID                int    `json:"id"`
	GameVersionTypeID int    `json:"gameVersionTypeID"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
}

// GameVersionType names the category a GameVersion belongs to, such as
// "Minecraft 1.20".
type GameVersionType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Catalog is the full set of types and versions fetched for one run.
type Catalog struct {
	Types    []GameVersionType
	Versions []GameVersion
}

// Resolution is the outcome of resolving a catalog for one loader.
type Resolution struct {
	VersionIDs     map[int]struct{}
	DisplayVersion string
}

// Sorted returns the resolved ids in ascending order.
func (r Resolution) Sorted() []int {
	ids := make([]int, 0, len(r.VersionIDs))
	for id := range r.VersionIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Contains reports whether id was resolved.
func (r Resolution) Contains(id int) bool {
	_, ok := r.VersionIDs[id]
	return ok
}

// Empty reports whether no compatible versions were found.
func (r Resolution) Empty() bool { return len(r.VersionIDs) == 0 }
