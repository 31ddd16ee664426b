package publish

import (
	"errors"
	"fmt"

	"github.com/lucko/mod-publish/internal/loader"
)

// Outcome records the result of one step of a run. Publisher is empty when
// the variant failed before publishing.
type Outcome struct {
	Loader    loader.Loader
	Publisher string
	Version   string
	RemoteID  string
	Err       error
}

// Report collects the outcomes of a run in execution order.
type Report struct {
	Project  string
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Failed returns the outcomes that carry an error.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins every failure of the run, or returns nil if all steps succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		if o.Publisher == "" {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.Project, o.Loader, o.Err))
			continue
		}
		errs = append(errs, fmt.Errorf("%s %s on %s: %w", r.Project, o.Loader, o.Publisher, o.Err))
	}
	return errors.Join(errs...)
}
