// Package versions models the game version catalog reported by the mod
// hosting registry and resolves, for a given loader, the set of version ids
// an uploaded file declares compatibility with.
package versions
