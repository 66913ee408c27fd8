package locale

import (
	"fmt"

	"github.com/lokalc/lokalc/key"
	"github.com/lokalc/lokalc/value"
	"github.com/lokalc/lokalc/warning"
)

// LocaleValueKind classifies the merged, cross-locale shape of one key.
type LocaleValueKind int

const (
	// KindPlain: a plain string in every locale that defines the key.
	KindPlain LocaleValueKind = iota
	// KindBuilder: at least one locale uses variables, components or
	// plurals; Signature carries the union argument set.
	KindBuilder
	// KindSubkeys: a nested mapping.
	KindSubkeys
)

// LocaleValue is the authoritative per-key shape handed to the code
// generator. It is derived by the merge engine, never authored.
type LocaleValue struct {
	Kind      LocaleValueKind
	Signature *value.Signature
	// Locales holds the per-locale views of a KindSubkeys scope, the
	// default locale first, then each merged locale that defines it.
	Locales []*Locale
	// Keys is the nested schema of a KindSubkeys scope.
	Keys *BuildersKeysInner
}

// BuildersKeysInner is the key schema of one nesting scope, in the
// default locale's authored order.
type BuildersKeysInner struct {
	Order []key.Key
	Keys  map[key.Key]*LocaleValue
}

func newBuildersKeysInner() *BuildersKeysInner {
	return &BuildersKeysInner{Keys: make(map[key.Key]*LocaleValue)}
}

func (b *BuildersKeysInner) set(k key.Key, lv *LocaleValue) {
	if _, ok := b.Keys[k]; !ok {
		b.Order = append(b.Order, k)
	}
	b.Keys[k] = lv
}

// BuildersKeys is the unified schema of a whole build: flat locales or
// namespaces, each with its key schema.
type BuildersKeys struct {
	Default key.Key
	// LocaleKeys is the full configured locale list, the default locale
	// first, independent of which locales define any particular scope.
	LocaleKeys []key.Key
	// Flat mode.
	Locales []*Locale
	Keys    *BuildersKeysInner
	// Namespace mode.
	Namespaces     []*Namespace
	NamespaceKeys  map[key.Key]*BuildersKeysInner
	NamespaceOrder []key.Key
}

// MissingDefaultValueError reports a key the default locale defines
// structurally but gives no usable value for.
type MissingDefaultValueError struct {
	Path   key.Path
	Locale string
}

func (e *MissingDefaultValueError) Error() string {
	return fmt.Sprintf("missing default value for key %q: the default locale %q gives no usable translation", e.Path.String(), e.Locale)
}

// CheckLocales reduces the default locale, establishes the canonical
// key schema, and merges every other locale against it. Warnings go to
// sink; the first error aborts.
func CheckLocales(l *LocalesOrNamespaces, sink *warning.Sink) (*BuildersKeys, error) {
	if l.IsNamespaced() {
		bk := &BuildersKeys{
			Default:       l.Default,
			LocaleKeys:    l.LocaleKeys,
			Namespaces:    l.Namespaces,
			NamespaceKeys: make(map[key.Key]*BuildersKeysInner, len(l.Namespaces)),
		}
		for _, ns := range l.Namespaces {
			path := key.NewPath(&ns.Key)
			inner, err := checkScope(ns.Locales, path, sink)
			if err != nil {
				return nil, err
			}
			bk.NamespaceKeys[ns.Key] = inner
			bk.NamespaceOrder = append(bk.NamespaceOrder, ns.Key)
		}
		return bk, nil
	}

	inner, err := checkScope(l.Locales, key.NewPath(nil), sink)
	if err != nil {
		return nil, err
	}
	return &BuildersKeys{Default: l.Default, LocaleKeys: l.LocaleKeys, Locales: l.Locales, Keys: inner}, nil
}

// checkScope runs steps 2 and 3 of the merge for one list of locale
// trees (the default locale first).
func checkScope(locales []*Locale, path *key.Path, sink *warning.Sink) (*BuildersKeysInner, error) {
	def := locales[0]
	inner, err := makeBuilderKeys(def, path)
	if err != nil {
		return nil, err
	}
	for _, loc := range locales[1:] {
		if err := mergeScope(loc, inner, path, sink); err != nil {
			return nil, err
		}
	}
	return inner, nil
}

// makeBuilderKeys walks the default locale's scope, reduces every
// value, and classifies each key into its canonical LocaleValue.
func makeBuilderKeys(def *Locale, path *key.Path) (*BuildersKeysInner, error) {
	inner := newBuildersKeysInner()
	for _, k := range def.Top.Order {
		path.PushKey(k)
		v, err := reduce(def.Top.Keys[k], path, def.Name.Name)
		if err != nil {
			return nil, err
		}
		if value.IsEmpty(v) {
			return nil, &MissingDefaultValueError{Path: path.Clone(), Locale: def.Name.Name}
		}
		def.Top.Keys[k] = v

		lv, err := classify(v, def, path)
		if err != nil {
			return nil, err
		}
		inner.set(k, lv)
		path.PopKey()
	}
	return inner, nil
}

func classify(v value.Value, def *Locale, path *key.Path) (*LocaleValue, error) {
	switch v := v.(type) {
	case *value.String:
		return &LocaleValue{Kind: KindPlain}, nil
	case *value.Subkeys:
		scope := def.scope(v)
		keys, err := makeBuilderKeys(scope, path)
		if err != nil {
			return nil, err
		}
		return &LocaleValue{Kind: KindSubkeys, Locales: []*Locale{scope}, Keys: keys}, nil
	default:
		sig := value.NewSignature()
		if err := sig.Scan(v, path, def.Name.Name); err != nil {
			return nil, err
		}
		return &LocaleValue{Kind: KindBuilder, Signature: sig}, nil
	}
}

// mergeScope merges one non-default locale's scope against the
// canonical schema: reducing values, folding interpolation usage into
// the union signatures, and recording missing and surplus keys.
func mergeScope(loc *Locale, inner *BuildersKeysInner, path *key.Path, sink *warning.Sink) error {
	for _, k := range inner.Order {
		lv := inner.Keys[k]
		raw, ok := loc.Top.Get(k)
		if !ok {
			path.PushKey(k)
			sink.Missing(path, loc.Name.Name)
			path.PopKey()
			continue
		}

		path.PushKey(k)
		v, err := reduce(raw, path, loc.Name.Name)
		if err != nil {
			return err
		}
		if value.IsEmpty(v) {
			// Empty means untranslated: fall back like a missing key.
			sink.Missing(path, loc.Name.Name)
			path.PopKey()
			continue
		}
		loc.Top.Keys[k] = v

		switch lv.Kind {
		case KindSubkeys:
			sub, ok := v.(*value.Subkeys)
			if !ok {
				return &value.TypeMismatchError{
					Path:   path.Clone(),
					Locale: loc.Name.Name,
					Reason: "default locale has nested keys here, this locale provides a value",
				}
			}
			scope := loc.scope(sub)
			lv.Locales = append(lv.Locales, scope)
			if err := mergeScope(scope, lv.Keys, path, sink); err != nil {
				return err
			}

		case KindPlain:
			switch v.(type) {
			case *value.String:
				// Still plain everywhere.
			case *value.Subkeys:
				return &value.TypeMismatchError{
					Path:   path.Clone(),
					Locale: loc.Name.Name,
					Reason: "default locale has a plain string here, this locale provides nested keys",
				}
			default:
				// First locale to use arguments for this key upgrades
				// it; the default's plain string contributes none.
				lv.Kind = KindBuilder
				lv.Signature = value.NewSignature()
				if err := lv.Signature.Scan(v, path, loc.Name.Name); err != nil {
					return err
				}
			}

		case KindBuilder:
			if _, bad := v.(*value.Subkeys); bad {
				return &value.TypeMismatchError{
					Path:   path.Clone(),
					Locale: loc.Name.Name,
					Reason: "default locale has a value here, this locale provides nested keys",
				}
			}
			if err := lv.Signature.Scan(v, path, loc.Name.Name); err != nil {
				return err
			}
		}
		path.PopKey()
	}

	// The default locale's key set is authoritative: anything else is
	// surplus and discarded.
	for _, k := range loc.Top.Order {
		if _, ok := inner.Keys[k]; !ok {
			path.PushKey(k)
			sink.Surplus(path, loc.Name.Name)
			path.PopKey()
		}
	}
	return nil
}

// reduce normalizes one parsed value for merging: resolved foreign keys
// are inlined, sequences flattened with adjacent literals joined, and
// plural constructs validated.
func reduce(v value.Value, path *key.Path, locale string) (value.Value, error) {
	switch v := v.(type) {
	case *value.String, *value.Variable:
		return v, nil
	case *value.Component:
		inner, err := reduce(v.Inner, path, locale)
		if err != nil {
			return nil, err
		}
		return &value.Component{Key: v.Key, Inner: inner}, nil
	case *value.ForeignKey:
		if v.Resolved == nil {
			return nil, fmt.Errorf("locale: unresolved foreign key %q at %q: resolution pass did not run", v.Target.String(), path.String())
		}
		return reduce(v.Resolved, path, locale)
	case *value.Seq:
		return reduceSeq(v, path, locale)
	case *value.Plural:
		if err := v.Validate(path.Clone(), locale); err != nil {
			return nil, err
		}
		arms := make([]value.PluralArm, len(v.Arms))
		for i, arm := range v.Arms {
			rv, err := reduce(arm.Value, path, locale)
			if err != nil {
				return nil, err
			}
			arms[i] = value.PluralArm{Selector: arm.Selector, Value: rv}
		}
		return &value.Plural{Count: v.Count, Arms: arms}, nil
	case *value.Subkeys:
		out := value.NewSubkeys()
		for _, k := range v.Order {
			path.PushKey(k)
			rv, err := reduce(v.Keys[k], path, locale)
			path.PopKey()
			if err != nil {
				return nil, err
			}
			out.Set(k, rv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("locale: unknown value node %T at %q", v, path.String())
	}
}

func reduceSeq(seq *value.Seq, path *key.Path, locale string) (value.Value, error) {
	var parts []value.Value
	appendPart := func(p value.Value) {
		if s, ok := p.(*value.String); ok {
			if s.Text == "" {
				return
			}
			if n := len(parts); n > 0 {
				if prev, ok := parts[n-1].(*value.String); ok {
					parts[n-1] = &value.String{Text: prev.Text + s.Text}
					return
				}
			}
		}
		parts = append(parts, p)
	}

	for _, p := range seq.Parts {
		rp, err := reduce(p, path, locale)
		if err != nil {
			return nil, err
		}
		if flat, ok := rp.(*value.Seq); ok {
			for _, fp := range flat.Parts {
				appendPart(fp)
			}
			continue
		}
		appendPart(rp)
	}

	switch len(parts) {
	case 0:
		return &value.String{}, nil
	case 1:
		return parts[0], nil
	default:
		return &value.Seq{Parts: parts}, nil
	}
}
