// Package curseforge talks to the CurseForge upload API: it fetches the game
// version catalog used for version resolution and uploads files with the
// resolved version ids attached.
package curseforge
