// Package schema flattens the merged key schema into a serializable
// document for a downstream code generator. The document carries no
// target-language syntax: plain keys come with their per-locale
// strings (default fallback already applied), parameterized keys with
// their union argument signature and per-locale value trees.
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lokalc/lokalc/key"
	"github.com/lokalc/lokalc/locale"
	"github.com/lokalc/lokalc/value"
	"github.com/lokalc/lokalc/warning"
)

// Document is the unified schema of one build.
type Document struct {
	Default    string    `json:"default" yaml:"default"`
	Locales    []string  `json:"locales" yaml:"locales"`
	Namespaces []string  `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Keys       []Entry   `json:"keys" yaml:"keys"`
	Warnings   []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Entry is one leaf key of the schema. Nesting is encoded in Path
// ("ns:nav.home").
type Entry struct {
	Path string `json:"path" yaml:"path"`
	// Kind is "string" for plain keys, "builder" for parameterized
	// ones.
	Kind string `json:"kind" yaml:"kind"`

	// Values holds the final per-locale strings of a plain key, in
	// configured locale order, with the default locale's value filled
	// in wherever a locale has none.
	Values []LocaleString `json:"values,omitempty" yaml:"values,omitempty"`

	// Builder signature: the union argument set across all locales.
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Components []string `json:"components,omitempty" yaml:"components,omitempty"`
	Counts     []Count  `json:"counts,omitempty" yaml:"counts,omitempty"`

	// Templates holds the per-locale value trees of a builder key, only
	// for locales that define it with a usable value; consumers fall
	// back to the default locale's template for the rest.
	Templates []LocaleNode `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// LocaleString pairs a locale with a final string value.
type LocaleString struct {
	Locale string `json:"locale" yaml:"locale"`
	Value  string `json:"value" yaml:"value"`
}

// Count is one plural count argument with its inferred type.
type Count struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// LocaleNode pairs a locale with a value tree.
type LocaleNode struct {
	Locale string `json:"locale" yaml:"locale"`
	Value  *Node  `json:"value" yaml:"value"`
}

// Node is a serialized value tree node.
type Node struct {
	Type  string  `json:"type" yaml:"type"`
	Text  string  `json:"text,omitempty" yaml:"text,omitempty"`
	Name  string  `json:"name,omitempty" yaml:"name,omitempty"`
	Inner *Node   `json:"inner,omitempty" yaml:"inner,omitempty"`
	Parts []*Node `json:"parts,omitempty" yaml:"parts,omitempty"`
	Arms  []Arm   `json:"arms,omitempty" yaml:"arms,omitempty"`
}

// Arm is one serialized plural arm.
type Arm struct {
	Selector string `json:"selector" yaml:"selector"`
	Value    *Node  `json:"value" yaml:"value"`
}

// Warning is one serialized build warning.
type Warning struct {
	Kind   string `json:"kind" yaml:"kind"`
	Path   string `json:"path" yaml:"path"`
	Locale string `json:"locale" yaml:"locale"`
}

// Options tune the emission.
type Options struct {
	// KeysOnly replaces every plain value with its own key path, used
	// to verify wiring without authored content.
	KeysOnly bool
}

// Build flattens a merged schema and its warnings into a Document.
// Output order is deterministic: namespaces and keys in default-locale
// authored order, locales in configured order.
func Build(bk *locale.BuildersKeys, warns []warning.Warning, opts Options) *Document {
	doc := &Document{Default: bk.Default.Name}
	for _, lk := range bk.LocaleKeys {
		doc.Locales = append(doc.Locales, lk.Name)
	}

	if len(bk.Namespaces) > 0 {
		for _, ns := range bk.Namespaces {
			doc.Namespaces = append(doc.Namespaces, ns.Key.Name)
			path := key.NewPath(&ns.Key)
			walkInner(doc, bk.NamespaceKeys[ns.Key], ns.Locales, doc.Locales, path, opts)
		}
	} else {
		walkInner(doc, bk.Keys, bk.Locales, doc.Locales, key.NewPath(nil), opts)
	}

	for _, w := range warns {
		doc.Warnings = append(doc.Warnings, Warning{
			Kind:   w.Kind.String(),
			Path:   w.Path.String(),
			Locale: w.Locale,
		})
	}
	return doc
}

// walkInner emits one scope. scopeLocales holds the per-locale views of
// the scope, default first; names is the full configured locale list,
// so locales missing the whole scope still get default-fallback values.
func walkInner(doc *Document, inner *locale.BuildersKeysInner, scopeLocales []*locale.Locale, names []string, path *key.Path, opts Options) {
	def := scopeLocales[0]
	for _, k := range inner.Order {
		lv := inner.Keys[k]
		path.PushKey(k)

		switch lv.Kind {
		case locale.KindSubkeys:
			walkInner(doc, lv.Keys, lv.Locales, names, path, opts)

		case locale.KindPlain:
			entry := Entry{Path: path.String(), Kind: "string"}
			fallback, _ := plainString(def, k)
			for _, name := range names {
				text := fallback
				if opts.KeysOnly {
					text = path.String()
				} else if loc := scopeLocale(scopeLocales, name); loc != nil {
					if s, ok := plainString(loc, k); ok {
						text = s
					}
				}
				entry.Values = append(entry.Values, LocaleString{Locale: name, Value: text})
			}
			doc.Keys = append(doc.Keys, entry)

		case locale.KindBuilder:
			entry := Entry{Path: path.String(), Kind: "builder"}
			for _, vk := range lv.Signature.Variables() {
				entry.Variables = append(entry.Variables, vk.Name)
			}
			for _, ck := range lv.Signature.Components() {
				entry.Components = append(entry.Components, ck.Name)
			}
			for _, ck := range lv.Signature.Counts() {
				t, _ := lv.Signature.CountTypeOf(ck)
				entry.Counts = append(entry.Counts, Count{Name: ck.Name, Type: t.String()})
			}
			for _, loc := range scopeLocales {
				v, ok := loc.Top.Get(k)
				if !ok || value.IsEmpty(v) {
					// Untranslated in this locale; consumers fall back to
					// the default template.
					continue
				}
				entry.Templates = append(entry.Templates, LocaleNode{Locale: loc.Name.Name, Value: encodeNode(v)})
			}
			doc.Keys = append(doc.Keys, entry)
		}
		path.PopKey()
	}
}

// scopeLocale returns the scope view of one locale, nil when the locale
// does not define this scope.
func scopeLocale(scopeLocales []*locale.Locale, name string) *locale.Locale {
	for _, loc := range scopeLocales {
		if loc.Name.Name == name {
			return loc
		}
	}
	return nil
}

// plainString returns a locale's usable plain value for a key. Empty
// strings mean untranslated and do not count.
func plainString(loc *locale.Locale, k key.Key) (string, bool) {
	v, ok := loc.Top.Get(k)
	if !ok {
		return "", false
	}
	s, ok := v.(*value.String)
	if !ok || s.Text == "" {
		return "", false
	}
	return s.Text, true
}

func encodeNode(v value.Value) *Node {
	switch v := v.(type) {
	case nil:
		return nil
	case *value.String:
		return &Node{Type: "literal", Text: v.Text}
	case *value.Variable:
		return &Node{Type: "variable", Name: v.Key.Name}
	case *value.Component:
		return &Node{Type: "component", Name: v.Key.Name, Inner: encodeNode(v.Inner)}
	case *value.Seq:
		n := &Node{Type: "sequence"}
		for _, p := range v.Parts {
			n.Parts = append(n.Parts, encodeNode(p))
		}
		return n
	case *value.Plural:
		n := &Node{Type: "plural", Name: v.Count.Name}
		for _, arm := range v.Arms {
			n.Arms = append(n.Arms, Arm{Selector: arm.Selector.String(), Value: encodeNode(arm.Value)})
		}
		return n
	case *value.ForeignKey:
		return encodeNode(v.Resolved)
	default:
		// Subkeys never appear in a leaf template.
		return &Node{Type: fmt.Sprintf("unknown:%T", v)}
	}
}

// EncodeJSON writes the document as indented JSON.
func EncodeJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding schema JSON: %w", err)
	}
	return nil
}

// EncodeYAML writes the document as YAML.
func EncodeYAML(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding schema YAML: %w", err)
	}
	return enc.Close()
}
