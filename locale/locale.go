// Package locale implements the per-locale translation trees and the
// merge engine that unifies them into a single key schema.
//
// The default locale's tree is authoritative for structure: every other
// locale is merged against it key by key. Locales may be incomplete
// (missing keys fall back to the default value and produce warnings)
// but never structurally divergent (a shape conflict aborts the build).
package locale

import (
	"fmt"

	"github.com/lokalc/lokalc/key"
	"github.com/lokalc/lokalc/value"
)

// Locale is one locale's (or one (locale, namespace)'s) parsed tree.
// The tree is mutated in place by foreign-key resolution and value
// reduction, then read by the merge engine and schema emission.
type Locale struct {
	// Name is the top locale identifier ("en", "fr").
	Name key.Key
	// Namespace is set in namespace mode.
	Namespace *key.Key
	// Top is the top-level key mapping.
	Top *value.Subkeys
}

// New parses one raw resource document into a locale tree. A nil raw
// stands for a missing document and yields an empty tree.
func New(name key.Key, namespace *key.Key, raw *value.Raw) (*Locale, error) {
	top, err := value.ParseTop(raw, value.Seed{Locale: name, Namespace: namespace})
	if err != nil {
		return nil, err
	}
	return &Locale{Name: name, Namespace: namespace, Top: top}, nil
}

// scope returns a view of the same locale rooted at a nested mapping,
// used while walking subkeys.
func (l *Locale) scope(sub *value.Subkeys) *Locale {
	return &Locale{Name: l.Name, Namespace: l.Namespace, Top: sub}
}

// Namespace groups the per-locale trees of one namespace, in configured
// locale order with the default locale first.
type Namespace struct {
	Key     key.Key
	Locales []*Locale
}

// LocalesOrNamespaces is the full set of parsed trees for one build:
// either a flat list of locales or a list of namespaces each carrying
// its locales. The default locale is always first in every list.
type LocalesOrNamespaces struct {
	Default    key.Key
	LocaleKeys []key.Key
	Locales    []*Locale
	Namespaces []*Namespace
}

// NewLocales builds the flat-mode set. locales must be in configured
// order with the default locale first.
func NewLocales(def key.Key, localeKeys []key.Key, locales []*Locale) (*LocalesOrNamespaces, error) {
	if len(locales) == 0 || locales[0].Name != def {
		return nil, fmt.Errorf("locale: default locale %q must be present and first", def.Name)
	}
	return &LocalesOrNamespaces{Default: def, LocaleKeys: localeKeys, Locales: locales}, nil
}

// NewNamespaces builds the namespace-mode set. Every namespace must
// carry its locales in configured order with the default locale first.
func NewNamespaces(def key.Key, localeKeys []key.Key, namespaces []*Namespace) (*LocalesOrNamespaces, error) {
	if len(namespaces) == 0 {
		return nil, fmt.Errorf("locale: namespace mode requires at least one namespace")
	}
	for _, ns := range namespaces {
		if len(ns.Locales) == 0 || ns.Locales[0].Name != def {
			return nil, fmt.Errorf("locale: namespace %q: default locale %q must be present and first", ns.Key.Name, def.Name)
		}
	}
	return &LocalesOrNamespaces{Default: def, LocaleKeys: localeKeys, Namespaces: namespaces}, nil
}

// IsNamespaced reports whether the set is in namespace mode.
func (l *LocalesOrNamespaces) IsNamespaced() bool {
	return len(l.Namespaces) > 0
}

// ResolveForeignKeys runs the global foreign-key resolution pass over
// every tree. It must run after parsing and before CheckLocales.
func (l *LocalesOrNamespaces) ResolveForeignKeys() error {
	return value.ResolveForeignKeys(l, l.Default)
}

// Roots implements value.Lookup.
func (l *LocalesOrNamespaces) Roots() []value.Root {
	var roots []value.Root
	for _, loc := range l.Locales {
		roots = append(roots, value.Root{Locale: loc.Name, Namespace: loc.Namespace, Tree: loc.Top})
	}
	for _, ns := range l.Namespaces {
		for _, loc := range ns.Locales {
			roots = append(roots, value.Root{Locale: loc.Name, Namespace: loc.Namespace, Tree: loc.Top})
		}
	}
	return roots
}

// Root implements value.Lookup. namespace is empty in flat mode.
func (l *LocalesOrNamespaces) Root(locale, namespace string) (*value.Subkeys, bool) {
	if namespace == "" {
		for _, loc := range l.Locales {
			if loc.Name.Name == locale {
				return loc.Top, true
			}
		}
		return nil, false
	}
	for _, ns := range l.Namespaces {
		if ns.Key.Name != namespace {
			continue
		}
		for _, loc := range ns.Locales {
			if loc.Name.Name == locale {
				return loc.Top, true
			}
		}
	}
	return nil, false
}
