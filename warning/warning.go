// Package warning collects the non-fatal discrepancies found while
// merging locales. One sink per build, passed explicitly through the
// merge engine; it is append-only and assumes single-threaded use.
package warning

import (
	"fmt"

	"github.com/lokalc/lokalc/key"
)

// Kind categorizes a warning.
type Kind int

const (
	// MissingKey: a non-default locale lacks a key the default locale
	// defines; generation falls back to the default locale's value.
	MissingKey Kind = iota
	// SurplusKey: a non-default locale defines a key absent from the
	// default locale; the key is discarded.
	SurplusKey
)

func (k Kind) String() string {
	switch k {
	case MissingKey:
		return "missing-key"
	case SurplusKey:
		return "surplus-key"
	default:
		return "unknown"
	}
}

// Warning is one recorded discrepancy, carrying enough structure for
// the consumer to reformat it.
type Warning struct {
	Kind   Kind
	Path   key.Path
	Locale string
}

func (w Warning) String() string {
	switch w.Kind {
	case MissingKey:
		return fmt.Sprintf("locale %q is missing key %q, the default locale value will be used", w.Locale, w.Path.String())
	case SurplusKey:
		return fmt.Sprintf("locale %q defines key %q which is absent from the default locale, it will be ignored", w.Locale, w.Path.String())
	default:
		return fmt.Sprintf("locale %q: key %q", w.Locale, w.Path.String())
	}
}

// Sink accumulates warnings during one build.
type Sink struct {
	warnings []Warning
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Missing records a missing-key warning. The path is cloned, so callers
// may keep mutating it.
func (s *Sink) Missing(path *key.Path, locale string) {
	s.warnings = append(s.warnings, Warning{Kind: MissingKey, Path: path.Clone(), Locale: locale})
}

// Surplus records a surplus-key warning.
func (s *Sink) Surplus(path *key.Path, locale string) {
	s.warnings = append(s.warnings, Warning{Kind: SurplusKey, Path: path.Clone(), Locale: locale})
}

// Warnings returns a copy of everything recorded so far.
func (s *Sink) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Len reports the number of recorded warnings.
func (s *Sink) Len() int {
	return len(s.warnings)
}
