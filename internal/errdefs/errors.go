// Package errdefs defines the error taxonomy shared by the fetch, resolve
// and publish stages. Each typed error unwraps to a sentinel so callers can
// classify failures with errors.Is and inspect details with errors.As.
package errdefs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrConfiguration marks a failure that invalidates the whole run.
	ErrConfiguration = errors.New("configuration error")

	// ErrFetch marks a failure to retrieve metadata or an artifact.
	ErrFetch = errors.New("fetch error")

	// ErrPublish marks a failed upload to a distribution platform.
	ErrPublish = errors.New("publish error")
)

type (
	// ConfigurationError reports an ambiguous or missing mapping, a missing
	// credential or an invalid configuration value.
	ConfigurationError struct {
		What   string
		Reason string
	}

	// FetchError reports a failed metadata request or artifact download.
	FetchError struct {
		Source string
		URL    string
		Err    error
	}

	// PublishError carries the upstream response of a failed upload. Status
	// is zero when the request never produced a response.
	PublishError struct {
		Publisher string
		Status    int
		Body      string
		Header    http.Header
		Err       error
	}
)

// Configuration builds a ConfigurationError.
func Configuration(what, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{What: what, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.What, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetching %s from %s: %v", e.Source, e.URL, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

func (e *PublishError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("publishing to %s: %v", e.Publisher, e.Err)
	}
	return fmt.Sprintf("publishing to %s: status %d: %s", e.Publisher, e.Status, strings.TrimSpace(e.Body))
}

// Unwrap returns both the sentinel and the underlying cause, if any.
func (e *PublishError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPublish}
	}
	return []error{ErrPublish, e.Err}
}

// HeaderLines renders the response headers as sorted "Key: value" lines for
// diagnostics.
func (e *PublishError) HeaderLines() []string {
	lines := make([]string, 0, len(e.Header))
	for k, v := range e.Header {
		lines = append(lines, k+": "+strings.Join(v, ", "))
	}
	sort.Strings(lines)
	return lines
}

// IsFatal reports whether err must abort the entire run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
