// Package loader defines the closed set of mod loaders and plugin platforms
// that artifacts are published for, together with their display names,
// distribution-loader aliases and the release channels a file can use.
package loader
