package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lokalc/lokalc/key"
)

// SelectorKind identifies the shape of one plural arm selector.
type SelectorKind int

const (
	// SelectorExact matches one non-negative integer ("4").
	SelectorExact SelectorKind = iota
	// SelectorRange matches an inclusive range ("1..=4").
	SelectorRange
	// SelectorFallback is the catch-all arm ("_").
	SelectorFallback
)

// Selector decides which numeric values an arm covers.
type Selector struct {
	Kind SelectorKind
	// Exact is the matched value for SelectorExact.
	Exact int64
	// From and To bound a SelectorRange, both inclusive.
	From, To int64
}

// fallbackMarker is the authored form of the catch-all selector.
const fallbackMarker = "_"

// pluralKeyMarker is the reserved mapping entry that renames the count
// argument of a plural construct.
const pluralKeyMarker = "$key"

// defaultCountName is the count argument name when "$key" is absent.
const defaultCountName = "count"

// ParseSelector parses an authored selector. ok is false when the text
// is not selector-shaped at all (the mapping is then an ordinary
// nested object, not a plural).
func ParseSelector(text string) (Selector, bool) {
	text = strings.TrimSpace(text)
	if text == fallbackMarker {
		return Selector{Kind: SelectorFallback}, true
	}
	if from, to, ok := strings.Cut(text, "..="); ok {
		lo, err1 := strconv.ParseInt(strings.TrimSpace(from), 10, 64)
		hi, err2 := strconv.ParseInt(strings.TrimSpace(to), 10, 64)
		if err1 != nil || err2 != nil || lo < 0 || hi < lo {
			return Selector{}, false
		}
		return Selector{Kind: SelectorRange, From: lo, To: hi}, true
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n < 0 {
		return Selector{}, false
	}
	return Selector{Kind: SelectorExact, Exact: n}, true
}

// Matches reports whether the selector covers n.
func (s Selector) Matches(n int64) bool {
	switch s.Kind {
	case SelectorExact:
		return n == s.Exact
	case SelectorRange:
		return n >= s.From && n <= s.To
	default:
		return true
	}
}

// Overlaps reports whether two selectors can both match some value.
// Fallback arms never count as overlapping: exactly one must exist and
// it is the remainder by definition.
func (s Selector) Overlaps(o Selector) bool {
	if s.Kind == SelectorFallback || o.Kind == SelectorFallback {
		return false
	}
	lo1, hi1 := s.bounds()
	lo2, hi2 := o.bounds()
	return lo1 <= hi2 && lo2 <= hi1
}

func (s Selector) bounds() (int64, int64) {
	if s.Kind == SelectorExact {
		return s.Exact, s.Exact
	}
	return s.From, s.To
}

// String renders the selector in its authored form.
func (s Selector) String() string {
	switch s.Kind {
	case SelectorExact:
		return strconv.FormatInt(s.Exact, 10)
	case SelectorRange:
		return fmt.Sprintf("%d..=%d", s.From, s.To)
	default:
		return fallbackMarker
	}
}

// PluralArm is one (selector, value) pair of a plural construct.
type PluralArm struct {
	Selector Selector
	Value    Value
}

// Match returns the value of the first arm covering n. The second
// return is false only for an unvalidated plural with no matching arm.
func (p *Plural) Match(n int64) (Value, bool) {
	for _, arm := range p.Arms {
		if arm.Selector.Matches(n) {
			return arm.Value, true
		}
	}
	return nil, false
}

// CheckOverlap reports the first pair of arms, in authored order, that
// can both match the same value.
func (p *Plural) CheckOverlap(path key.Path, locale string) error {
	for i := range p.Arms {
		for j := i + 1; j < len(p.Arms); j++ {
			if p.Arms[i].Selector.Overlaps(p.Arms[j].Selector) {
				return &OverlappingPluralSelectorsError{
					Path:   path,
					Locale: locale,
					First:  p.Arms[i].Selector,
					Second: p.Arms[j].Selector,
				}
			}
		}
	}
	return nil
}

// CheckExhaustive verifies that exactly one fallback arm exists.
func (p *Plural) CheckExhaustive(path key.Path, locale string) error {
	fallbacks := 0
	for _, arm := range p.Arms {
		if arm.Selector.Kind == SelectorFallback {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		return &NonExhaustivePluralError{Path: path, Locale: locale, Fallbacks: fallbacks}
	}
	return nil
}

// Validate runs both plural invariants; overlap is checked first so it
// is reported deterministically even when exhaustiveness also fails.
func (p *Plural) Validate(path key.Path, locale string) error {
	if err := p.CheckOverlap(path, locale); err != nil {
		return err
	}
	return p.CheckExhaustive(path, locale)
}

// NonExhaustivePluralError reports a plural construct without exactly
// one catch-all arm.
type NonExhaustivePluralError struct {
	Path      key.Path
	Locale    string
	Fallbacks int
}

func (e *NonExhaustivePluralError) Error() string {
	if e.Fallbacks == 0 {
		return fmt.Sprintf("non-exhaustive plural at %q (locale %s): missing fallback arm %q", e.Path.String(), e.Locale, fallbackMarker)
	}
	return fmt.Sprintf("plural at %q (locale %s) has %d fallback arms, want exactly one", e.Path.String(), e.Locale, e.Fallbacks)
}

// OverlappingPluralSelectorsError reports two arms of one plural
// construct that can both match the same value.
type OverlappingPluralSelectorsError struct {
	Path          key.Path
	Locale        string
	First, Second Selector
}

func (e *OverlappingPluralSelectorsError) Error() string {
	return fmt.Sprintf("overlapping plural selectors %q and %q at %q (locale %s)",
		e.First.String(), e.Second.String(), e.Path.String(), e.Locale)
}
