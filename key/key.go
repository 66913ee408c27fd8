// Package key implements validated translation key identifiers and the
// key paths used for diagnostics.
//
// A Key pairs the raw name authored in a resource document with the
// identifier it becomes in generated code. Raw names may contain
// hyphens ("sign-in"); the identifier form replaces them with
// underscores ("sign_in"). Construction fails when the result is not a
// valid bare Go identifier.
package key

import (
	"fmt"
	"go/token"
	"strings"
)

// Key is a validated translation identifier. Two Keys are equal iff
// their Name fields are equal; Ident is derived deterministically from
// Name, so plain struct comparison gives name-only semantics and Keys
// built from different locale trees can index the same map.
type Key struct {
	// Name is the raw key text as authored, trimmed.
	Name string
	// Ident is the identifier the key maps to in generated code.
	Ident string
}

// New builds a Key from raw text. It trims surrounding whitespace and
// replaces '-' with '_'; ok is false when the result is not a valid
// bare identifier (empty, starts with a digit, contains other
// punctuation, or is a keyword).
func New(name string) (Key, bool) {
	name = strings.TrimSpace(name)
	ident := strings.ReplaceAll(name, "-", "_")
	if !token.IsIdentifier(ident) {
		return Key{}, false
	}
	return Key{Name: name, Ident: ident}, true
}

// TryNew is the fallible surface used by deserialization. It turns a
// failed construction into an *InvalidKeyError carrying the raw input.
func TryNew(name string) (Key, error) {
	k, ok := New(name)
	if !ok {
		return Key{}, &InvalidKeyError{Raw: name}
	}
	return k, nil
}

// MustNew is for static tables and tests; it panics on invalid input.
func MustNew(name string) Key {
	k, ok := New(name)
	if !ok {
		panic(fmt.Sprintf("key: invalid key %q", name))
	}
	return k
}

// InvalidKeyError reports a raw key string that cannot become a valid
// identifier.
type InvalidKeyError struct {
	Raw string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: cannot be used as an identifier", e.Raw)
}

// Path is the nesting path to a value: an optional namespace followed
// by the keys walked to reach it. Paths are used for diagnostics and
// for the keys-only debug mode that replaces leaf values with their own
// path string.
type Path struct {
	Namespace *Key
	Keys      []Key
}

// NewPath returns a path rooted at the given namespace (nil for flat
// locale mode).
func NewPath(namespace *Key) *Path {
	return &Path{Namespace: namespace}
}

// PushKey appends a key to the path.
func (p *Path) PushKey(k Key) {
	p.Keys = append(p.Keys, k)
}

// PopKey removes the last pushed key.
func (p *Path) PopKey() {
	if len(p.Keys) > 0 {
		p.Keys = p.Keys[:len(p.Keys)-1]
	}
}

// Clone returns an independent copy, safe to retain after the walk that
// produced p moves on.
func (p *Path) Clone() Path {
	cp := Path{Namespace: p.Namespace}
	cp.Keys = append(cp.Keys, p.Keys...)
	return cp
}

// String renders the path as "ns:a.b.c" ("a.b.c" without a namespace).
func (p *Path) String() string {
	var b strings.Builder
	if p.Namespace != nil {
		b.WriteString(p.Namespace.Name)
		b.WriteByte(':')
	}
	for i, k := range p.Keys {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k.Name)
	}
	return b.String()
}

// WithKey renders the path extended by one key without mutating p.
func (p *Path) WithKey(k Key) string {
	cp := p.Clone()
	cp.PushKey(k)
	return cp.String()
}
