// Package value implements the intermediate representation of parsed
// translation entries: the Value union, the placeholder micro-grammar,
// the plural model, foreign-key resolution, and interpolation
// signatures.
//
// A translation document arrives as a generic Raw tree (mapping /
// scalar nodes) and is parsed into Value nodes. Parsing is purely
// structural; foreign keys are resolved and plurals validated by
// later passes, so documents may reference keys in any order.
package value

import (
	"fmt"

	"github.com/lokalc/lokalc/key"
)

// Value is one parsed translation entry. It is a closed union: every
// implementation lives in this package and consumers switch
// exhaustively over the concrete types.
type Value interface {
	value()
}

// String is a literal text leaf.
type String struct {
	Text string
}

// Variable is a typed placeholder supplied at render time, authored as
// "{{ name }}".
type Variable struct {
	Key key.Key
}

// Component is a placeholder wrapping nested content, authored as
// "<name>...</name>".
type Component struct {
	Key   key.Key
	Inner Value
}

// Seq is a run of fragments inside one entry, produced when a scalar
// mixes literal text with placeholders.
type Seq struct {
	Parts []Value
}

// Plural maps numeric selectors to values. Count names the numeric
// argument; Arms keep authored order.
type Plural struct {
	Count key.Key
	Arms  []PluralArm
}

// ForeignKey is a reference to another key's value, authored as
// "$t(path)". Locale and Namespace record the context the reference
// was authored in and seed the lookup when Target leaves them
// implicit. Resolved is nil until the resolver pass runs.
type ForeignKey struct {
	Target    ForeignPath
	Locale    key.Key
	Namespace *key.Key
	Resolved  Value
}

// Subkeys is a nested object of keys. Order preserves the authored
// entry order.
type Subkeys struct {
	Order []key.Key
	Keys  map[key.Key]Value
}

func (*String) value()     {}
func (*Variable) value()   {}
func (*Component) value()  {}
func (*Seq) value()        {}
func (*Plural) value()     {}
func (*ForeignKey) value() {}
func (*Subkeys) value()    {}

// NewSubkeys returns an empty nested object.
func NewSubkeys() *Subkeys {
	return &Subkeys{Keys: make(map[key.Key]Value)}
}

// Set inserts or replaces an entry, keeping first-insertion order.
func (s *Subkeys) Set(k key.Key, v Value) {
	if _, ok := s.Keys[k]; !ok {
		s.Order = append(s.Order, k)
	}
	s.Keys[k] = v
}

// Get looks up an entry.
func (s *Subkeys) Get(k key.Key) (Value, bool) {
	v, ok := s.Keys[k]
	return v, ok
}

// DeepCopy returns a structurally independent copy of v. Resolved
// foreign keys are substituted by copy, so mutating the origin tree
// afterwards cannot leak into the copy.
func DeepCopy(v Value) Value {
	switch v := v.(type) {
	case nil:
		return nil
	case *String:
		cp := *v
		return &cp
	case *Variable:
		cp := *v
		return &cp
	case *Component:
		return &Component{Key: v.Key, Inner: DeepCopy(v.Inner)}
	case *Seq:
		parts := make([]Value, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = DeepCopy(p)
		}
		return &Seq{Parts: parts}
	case *Plural:
		arms := make([]PluralArm, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = PluralArm{Selector: a.Selector, Value: DeepCopy(a.Value)}
		}
		return &Plural{Count: v.Count, Arms: arms}
	case *ForeignKey:
		return &ForeignKey{
			Target:    v.Target,
			Locale:    v.Locale,
			Namespace: v.Namespace,
			Resolved:  DeepCopy(v.Resolved),
		}
	case *Subkeys:
		cp := NewSubkeys()
		for _, k := range v.Order {
			cp.Set(k, DeepCopy(v.Keys[k]))
		}
		return cp
	default:
		panic(fmt.Sprintf("value: unknown node type %T", v))
	}
}

// IsEmpty reports whether a reduced value carries no translation at
// all. Empty strings mean untranslated.
func IsEmpty(v Value) bool {
	switch v := v.(type) {
	case *String:
		return v.Text == ""
	case *Subkeys:
		return len(v.Order) == 0
	default:
		return false
	}
}

// InvalidValueError reports a structurally unusable entry: a sequence
// where a mapping or scalar is required, or misuse of the placeholder
// grammar.
type InvalidValueError struct {
	Path   key.Path
	Locale string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value at %q (locale %s): %s", e.Path.String(), e.Locale, e.Reason)
}

// TypeMismatchError reports a key or argument used with conflicting
// shapes: plain string in one locale and subkeys/parameterized in
// another, or one name used both as a variable and as a component.
type TypeMismatchError struct {
	Path   key.Path
	Locale string
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("locale key mismatch at %q (locale %s): %s", e.Path.String(), e.Locale, e.Reason)
}
