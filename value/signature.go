package value

import (
	"fmt"
	"sort"

	"github.com/lokalc/lokalc/key"
)

// CountType is the inferred type of a plural count argument. Selectors
// are non-negative integers, so only an integer type exists today; the
// enum leaves room for ordinal or float counts.
type CountType int

const (
	// CountInt is a signed 64-bit integer count.
	CountInt CountType = iota
)

func (t CountType) String() string {
	return "int64"
}

// Signature is the interpolation argument set of one key, accumulated
// as a union across every locale that defines the key: an accessor must
// accept every argument any locale might need, even when a particular
// locale's phrasing ignores some of them.
type Signature struct {
	vars   map[key.Key]struct{}
	comps  map[key.Key]struct{}
	counts map[key.Key]CountType
}

// NewSignature returns an empty signature.
func NewSignature() *Signature {
	return &Signature{
		vars:   make(map[key.Key]struct{}),
		comps:  make(map[key.Key]struct{}),
		counts: make(map[key.Key]CountType),
	}
}

// Scan folds one locale's reduced value into the signature. A name used
// both as a component and as a variable or count, in any combination of
// locales, is a TypeMismatchError.
func (s *Signature) Scan(v Value, path *key.Path, locale string) error {
	switch v := v.(type) {
	case *String, nil:
		return nil
	case *Variable:
		s.vars[v.Key] = struct{}{}
		return s.checkConflict(v.Key, path, locale)
	case *Component:
		s.comps[v.Key] = struct{}{}
		if err := s.checkConflict(v.Key, path, locale); err != nil {
			return err
		}
		return s.Scan(v.Inner, path, locale)
	case *Seq:
		for _, p := range v.Parts {
			if err := s.Scan(p, path, locale); err != nil {
				return err
			}
		}
		return nil
	case *Plural:
		s.counts[v.Count] = CountInt
		if err := s.checkConflict(v.Count, path, locale); err != nil {
			return err
		}
		for _, arm := range v.Arms {
			if err := s.Scan(arm.Value, path, locale); err != nil {
				return err
			}
		}
		return nil
	case *ForeignKey:
		return s.Scan(v.Resolved, path, locale)
	case *Subkeys:
		// Subkeys never reach signature scanning: the merge engine
		// classifies them structurally before reducing leaves.
		return fmt.Errorf("value: subkeys inside an interpolated value at %q", path.String())
	default:
		return fmt.Errorf("value: unknown node type %T", v)
	}
}

func (s *Signature) checkConflict(k key.Key, path *key.Path, locale string) error {
	if _, isComp := s.comps[k]; !isComp {
		return nil
	}
	_, isVar := s.vars[k]
	_, isCount := s.counts[k]
	if isVar || isCount {
		return &TypeMismatchError{
			Path:   path.Clone(),
			Locale: locale,
			Reason: fmt.Sprintf("conflicting variable types: %q used both as a component and as a variable", k.Name),
		}
	}
	return nil
}

// IsEmpty reports whether the value needs no arguments at all.
func (s *Signature) IsEmpty() bool {
	return len(s.vars) == 0 && len(s.comps) == 0 && len(s.counts) == 0
}

// Variables returns the required variable keys in a stable order.
func (s *Signature) Variables() []key.Key {
	return sortedKeys(s.vars)
}

// Components returns the required component keys in a stable order.
func (s *Signature) Components() []key.Key {
	return sortedKeys(s.comps)
}

// Counts returns the plural count keys in a stable order.
func (s *Signature) Counts() []key.Key {
	keys := make([]key.Key, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// CountTypeOf returns the inferred type of one count argument.
func (s *Signature) CountTypeOf(k key.Key) (CountType, bool) {
	t, ok := s.counts[k]
	return t, ok
}

func sortedKeys(set map[key.Key]struct{}) []key.Key {
	keys := make([]key.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}
