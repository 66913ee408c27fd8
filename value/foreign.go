package value

import (
	"fmt"
	"strings"

	"github.com/lokalc/lokalc/key"
)

// ForeignPath addresses another key's value: an optional namespace
// followed by the key segments walked from the top of that namespace's
// tree. The locale is never part of the path: a reference resolves in
// the locale it was authored in, falling back to the default locale.
type ForeignPath struct {
	Namespace *key.Key
	Keys      []key.Key
}

// ParseForeignPath parses "[ns:]seg(.seg)*".
func ParseForeignPath(text string) (ForeignPath, error) {
	var fp ForeignPath
	text = strings.TrimSpace(text)
	if ns, rest, ok := strings.Cut(text, ":"); ok {
		k, err := key.TryNew(ns)
		if err != nil {
			return ForeignPath{}, err
		}
		fp.Namespace = &k
		text = rest
	}
	if strings.TrimSpace(text) == "" {
		return ForeignPath{}, fmt.Errorf("empty key path")
	}
	for _, seg := range strings.Split(text, ".") {
		k, err := key.TryNew(seg)
		if err != nil {
			return ForeignPath{}, err
		}
		fp.Keys = append(fp.Keys, k)
	}
	return fp, nil
}

// String renders the path in its authored form.
func (p ForeignPath) String() string {
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

// Lookup gives the resolver access to every parsed tree without this
// package depending on the locale package. Namespace is empty in flat
// locale mode.
type Lookup interface {
	// Roots enumerates every (locale, namespace, tree) triple.
	Roots() []Root
	// Root returns the tree for one (locale, namespace) pair.
	Root(locale, namespace string) (*Subkeys, bool)
}

// Root is one top-level parsed tree.
type Root struct {
	Locale    key.Key
	Namespace *key.Key
	Tree      *Subkeys
}

// UndefinedForeignKeyError reports a reference whose target path does
// not exist in any applicable tree.
type UndefinedForeignKeyError struct {
	Target ForeignPath
	Path   key.Path
	Locale string
}

func (e *UndefinedForeignKeyError) Error() string {
	return fmt.Sprintf("undefined foreign key %q referenced at %q (locale %s)",
		e.Target.String(), e.Path.String(), e.Locale)
}

// ForeignKeyCycleError reports a reference chain that revisits a key
// already being resolved.
type ForeignKeyCycleError struct {
	Cycle []string
}

func (e *ForeignKeyCycleError) Error() string {
	return fmt.Sprintf("foreign key cycle: %s", strings.Join(e.Cycle, " -> "))
}

// ResolveForeignKeys walks every tree reachable through l and resolves
// each foreign key in place by structural copy. The pass is idempotent:
// already-resolved nodes are left alone. It must run exactly once
// between parsing and merging.
func ResolveForeignKeys(l Lookup, defaultLocale key.Key) error {
	r := &resolver{lookup: l, defaultLocale: defaultLocale, active: make(map[string]bool)}
	for _, root := range l.Roots() {
		path := key.NewPath(root.Namespace)
		if err := r.walkSubkeys(root.Tree, path); err != nil {
			return err
		}
	}
	return nil
}

type resolver struct {
	lookup        Lookup
	defaultLocale key.Key

	// active marks reference targets currently being resolved; stack
	// keeps their order for cycle reporting.
	active map[string]bool
	stack  []string
}

func (r *resolver) walkSubkeys(tree *Subkeys, path *key.Path) error {
	for _, k := range tree.Order {
		path.PushKey(k)
		err := r.walk(tree.Keys[k], path)
		path.PopKey()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) walk(v Value, path *key.Path) error {
	switch v := v.(type) {
	case *String, *Variable, nil:
		return nil
	case *Component:
		return r.walk(v.Inner, path)
	case *Seq:
		for _, p := range v.Parts {
			if err := r.walk(p, path); err != nil {
				return err
			}
		}
		return nil
	case *Plural:
		for _, arm := range v.Arms {
			if err := r.walk(arm.Value, path); err != nil {
				return err
			}
		}
		return nil
	case *Subkeys:
		return r.walkSubkeys(v, path)
	case *ForeignKey:
		return r.resolve(v, path)
	default:
		return fmt.Errorf("value: unknown node type %T", v)
	}
}

func (r *resolver) resolve(fk *ForeignKey, path *key.Path) error {
	if fk.Resolved != nil {
		return nil
	}

	target, locale, err := r.find(fk, path)
	if err != nil {
		return err
	}

	id := targetID(locale, fk.effectiveNamespace(), fk.Target.Keys)
	if r.active[id] {
		cycle := append(append([]string{}, r.stack...), id)
		return &ForeignKeyCycleError{Cycle: cycle}
	}
	r.active[id] = true
	r.stack = append(r.stack, id)

	// The target may itself contain references; resolve them in its own
	// tree first so the copy below is fully resolved.
	err = r.walk(target, path)

	r.stack = r.stack[:len(r.stack)-1]
	delete(r.active, id)
	if err != nil {
		return err
	}

	fk.Resolved = DeepCopy(target)
	return nil
}

// find locates the referenced value: in the referencing locale first,
// then in the default locale. It returns the node and the locale it was
// found in.
func (r *resolver) find(fk *ForeignKey, path *key.Path) (Value, key.Key, error) {
	ns := fk.effectiveNamespace()
	if v, ok := r.lookupIn(fk.Locale, ns, fk.Target.Keys); ok {
		return v, fk.Locale, nil
	}
	if fk.Locale != r.defaultLocale {
		if v, ok := r.lookupIn(r.defaultLocale, ns, fk.Target.Keys); ok {
			return v, r.defaultLocale, nil
		}
	}
	return nil, key.Key{}, &UndefinedForeignKeyError{
		Target: fk.Target,
		Path:   path.Clone(),
		Locale: fk.Locale.Name,
	}
}

func (r *resolver) lookupIn(locale key.Key, namespace string, keys []key.Key) (Value, bool) {
	tree, ok := r.lookup.Root(locale.Name, namespace)
	if !ok {
		return nil, false
	}
	var current Value = tree
	for _, k := range keys {
		sub, ok := current.(*Subkeys)
		if !ok {
			return nil, false
		}
		current, ok = sub.Get(k)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// effectiveNamespace is the explicit target namespace, else the
// namespace the reference was authored in ("" in flat mode).
func (fk *ForeignKey) effectiveNamespace() string {
	if fk.Target.Namespace != nil {
		return fk.Target.Namespace.Name
	}
	if fk.Namespace != nil {
		return fk.Namespace.Name
	}
	return ""
}

func targetID(locale key.Key, namespace string, keys []key.Key) string {
	var b strings.Builder
	b.WriteString(locale.Name)
	b.WriteByte('/')
	if namespace != "" {
		b.WriteString(namespace)
		b.WriteByte(':')
	}
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k.Name)
	}
	return b.String()
}
