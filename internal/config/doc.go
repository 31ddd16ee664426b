// Package config loads the publishing configuration. Embedded defaults are
// layered under an optional user YAML file and environment variables, and
// every YAML document is validated against an embedded JSON schema before
// it is merged.
package config
