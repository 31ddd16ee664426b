package loader

import "fmt"

// Loader identifies a mod loader or plugin platform by its canonical slug.
type Loader string

const (
	Forge    Loader = "forge"
	Fabric   Loader = "fabric"
	NeoForge Loader = "neoforge"
	Bukkit   Loader = "bukkit"
	Bungee   Loader = "bungee"
	Velocity Loader = "velocity"
)

// Kind separates mod loaders from plugin platforms.
type Kind int

const (
	Mod Kind = iota
	Plugin
)

func (k Kind) String() string {
	if k == Plugin {
		return "plugin"
	}
	return "mod"
}

// All returns every supported loader in publishing order.
func All() []Loader {
	return []Loader{Forge, Fabric, NeoForge, Bukkit, Bungee, Velocity}
}

// Parse converts a slug into a Loader.
func Parse(s string) (Loader, error) {
	for _, l := range All() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown loader %q", s)
}

// Slug returns the canonical lowercase identifier.
func (l Loader) Slug() string { return string(l) }

func (l Loader) String() string { return string(l) }

// DisplayName returns the capitalized name used in human-readable titles.
func (l Loader) DisplayName() string {
	switch l {
	case Forge:
		return "Forge"
	case Fabric:
		return "Fabric"
	case NeoForge:
		return "NeoForge"
	case Bukkit:
		return "Bukkit"
	case Bungee:
		return "BungeeCord"
	case Velocity:
		return "Velocity"
	}
	panic(fmt.Sprintf("loader: no display name for %q", string(l)))
}

// Kind reports whether l is a mod loader or a plugin platform.
func (l Loader) Kind() Kind {
	switch l {
	case Forge, Fabric, NeoForge:
		return Mod
	case Bukkit, Bungee, Velocity:
		return Plugin
	}
	panic(fmt.Sprintf("loader: no kind for %q", string(l)))
}

// DistributionLoaders returns the loader names the package registry accepts
// for files built for l. Plugins built against an API run on its forks too.
func (l Loader) DistributionLoaders() []string {
	switch l {
	case Forge:
		return []string{"forge"}
	case Fabric:
		return []string{"fabric"}
	case NeoForge:
		return []string{"neoforge"}
	case Bukkit:
		return []string{"bukkit", "spigot", "paper"}
	case Bungee:
		return []string{"bungeecord", "waterfall"}
	case Velocity:
		return []string{"velocity"}
	}
	panic(fmt.Sprintf("loader: no distribution loaders for %q", string(l)))
}
