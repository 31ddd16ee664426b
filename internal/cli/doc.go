// Package cli defines the Cobra command tree for mod-publish. Each mode
// (download, spark, luckperms, luckperms-plugin) is a subcommand; the
// commands load configuration, wire the fetch and publish clients, and
// delegate the run to internal/publish.
package cli
