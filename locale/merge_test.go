package locale

import (
	"sort"
	"testing"

	"github.com/lokalc/lokalc/key"
	"github.com/lokalc/lokalc/value"
	"github.com/lokalc/lokalc/warning"
)

func buildLocale(t *testing.T, name string, namespace *key.Key, raw *value.Raw) *Locale {
	t.Helper()
	loc, err := New(key.MustNew(name), namespace, raw)
	if err != nil {
		t.Fatalf("locale %s: %v", name, err)
	}
	return loc
}

// flatSet builds a resolved flat-mode set from (name, raw) pairs, the
// default locale first.
func flatSet(t *testing.T, locales ...*Locale) *LocalesOrNamespaces {
	t.Helper()
	keys := make([]key.Key, len(locales))
	for i, loc := range locales {
		keys[i] = loc.Name
	}
	set, err := NewLocales(locales[0].Name, keys, locales)
	if err != nil {
		t.Fatalf("NewLocales: %v", err)
	}
	if err := set.ResolveForeignKeys(); err != nil {
		t.Fatalf("ResolveForeignKeys: %v", err)
	}
	return set
}

func check(t *testing.T, set *LocalesOrNamespaces) (*BuildersKeys, *warning.Sink) {
	t.Helper()
	sink := warning.NewSink()
	bk, err := CheckLocales(set, sink)
	if err != nil {
		t.Fatalf("CheckLocales: %v", err)
	}
	return bk, sink
}

func TestMergeClassifiesKinds(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Hello")),
		value.Pair("welcome", value.NewScalar("Welcome {{ name }}")),
		value.Pair("nav", value.NewMapping(
			value.Pair("home", value.NewScalar("Home")),
		)),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Bonjour")),
		value.Pair("welcome", value.NewScalar("Bienvenue {{ name }}")),
		value.Pair("nav", value.NewMapping(
			value.Pair("home", value.NewScalar("Accueil")),
		)),
	))

	bk, sink := check(t, flatSet(t, en, fr))
	if sink.Len() != 0 {
		t.Fatalf("warnings = %v, want none", sink.Warnings())
	}
	if got := len(bk.Keys.Order); got != 3 {
		t.Fatalf("top keys = %d, want 3", got)
	}

	if bk.Keys.Keys[key.MustNew("greeting")].Kind != KindPlain {
		t.Fatal("greeting should be plain")
	}
	welcome := bk.Keys.Keys[key.MustNew("welcome")]
	if welcome.Kind != KindBuilder {
		t.Fatal("welcome should be a builder")
	}
	if vars := welcome.Signature.Variables(); len(vars) != 1 || vars[0].Name != "name" {
		t.Fatalf("welcome variables = %v", vars)
	}
	nav := bk.Keys.Keys[key.MustNew("nav")]
	if nav.Kind != KindSubkeys {
		t.Fatal("nav should be subkeys")
	}
	if len(nav.Locales) != 2 {
		t.Fatalf("nav locales = %d, want default + fr", len(nav.Locales))
	}
	if nav.Keys.Keys[key.MustNew("home")].Kind != KindPlain {
		t.Fatal("nav.home should be plain")
	}
}

func TestMissingKeyYieldsOneWarningAndFallback(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Hello")),
		value.Pair("farewell", value.NewScalar("Bye")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Bonjour")),
	))

	bk, sink := check(t, flatSet(t, en, fr))

	warns := sink.Warnings()
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warns)
	}
	w := warns[0]
	if w.Kind != warning.MissingKey || w.Locale != "fr" || w.Path.String() != "farewell" {
		t.Fatalf("warning = %+v", w)
	}

	// The key keeps its canonical shape; fr simply has no value for it.
	if bk.Keys.Keys[key.MustNew("farewell")].Kind != KindPlain {
		t.Fatal("farewell must stay in the schema with the default shape")
	}
	if _, ok := fr.Top.Get(key.MustNew("farewell")); ok {
		t.Fatal("fr must not grow a farewell entry")
	}
}

func TestSurplusKeyYieldsOneWarningAndIsDiscarded(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Hello")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Bonjour")),
		value.Pair("extra", value.NewScalar("Rien")),
	))

	bk, sink := check(t, flatSet(t, en, fr))

	warns := sink.Warnings()
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warns)
	}
	w := warns[0]
	if w.Kind != warning.SurplusKey || w.Locale != "fr" || w.Path.String() != "extra" {
		t.Fatalf("warning = %+v", w)
	}
	if _, ok := bk.Keys.Keys[key.MustNew("extra")]; ok {
		t.Fatal("surplus key must not appear in the schema")
	}
}

func TestEmptyStringCountsAsUntranslated(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Hello")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("")),
	))

	_, sink := check(t, flatSet(t, en, fr))
	warns := sink.Warnings()
	if len(warns) != 1 || warns[0].Kind != warning.MissingKey {
		t.Fatalf("warnings = %v, want one missing-key", warns)
	}
}

func TestShapeMismatchIsHardError(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("Hello")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("greeting", value.NewMapping(
			value.Pair("formal", value.NewScalar("Bonjour")),
		)),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en, fr), sink)
	if _, ok := err.(*value.TypeMismatchError); !ok {
		t.Fatalf("err = %T (%v), want *value.TypeMismatchError", err, err)
	}
}

func TestSubkeysVsValueMismatch(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("nav", value.NewMapping(
			value.Pair("home", value.NewScalar("Home")),
		)),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("nav", value.NewScalar("Navigation")),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en, fr), sink)
	if _, ok := err.(*value.TypeMismatchError); !ok {
		t.Fatalf("err = %T (%v), want *value.TypeMismatchError", err, err)
	}
}

func TestPlainUpgradesToBuilderWhenALocaleNeedsArguments(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("inbox", value.NewScalar("Inbox")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("inbox", value.NewScalar("Boîte de {{ owner }}")),
	))

	bk, sink := check(t, flatSet(t, en, fr))
	if sink.Len() != 0 {
		t.Fatalf("warnings = %v", sink.Warnings())
	}
	inbox := bk.Keys.Keys[key.MustNew("inbox")]
	if inbox.Kind != KindBuilder {
		t.Fatal("inbox must upgrade to a builder")
	}
	if vars := inbox.Signature.Variables(); len(vars) != 1 || vars[0].Name != "owner" {
		t.Fatalf("inbox variables = %v, want [owner]", vars)
	}
}

func TestSignatureIsUnionAcrossLocales(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("status", value.NewScalar("{{ count }} items for {{ user }}")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("status", value.NewScalar("{{ count }} éléments")),
	))
	de := buildLocale(t, "de", nil, value.NewMapping(
		value.Pair("status", value.NewScalar("{{ count }} Einträge, {{ extra }}")),
	))

	bk, _ := check(t, flatSet(t, en, fr, de))
	vars := bk.Keys.Keys[key.MustNew("status")].Signature.Variables()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	want := []string{"count", "extra", "user"}
	if len(names) != len(want) {
		t.Fatalf("variables = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("variables = %v, want %v", names, want)
		}
	}
}

func TestVariableComponentConflictAcrossLocales(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("terms", value.NewScalar("See {{ link }}")),
	))
	fr := buildLocale(t, "fr", nil, value.NewMapping(
		value.Pair("terms", value.NewScalar("Voir <link>ici</link>")),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en, fr), sink)
	if _, ok := err.(*value.TypeMismatchError); !ok {
		t.Fatalf("err = %T (%v), want *value.TypeMismatchError", err, err)
	}
}

func TestMissingDefaultValueIsHardError(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("greeting", value.NewScalar("")),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en), sink)
	missing, ok := err.(*MissingDefaultValueError)
	if !ok {
		t.Fatalf("err = %T (%v), want *MissingDefaultValueError", err, err)
	}
	if missing.Path.String() != "greeting" || missing.Locale != "en" {
		t.Fatalf("error = %+v", missing)
	}
}

func TestPluralValidatedAtMergeTime(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("apples", value.NewMapping(
			value.Pair("0", value.NewScalar("none")),
			value.Pair("1..=4", value.NewScalar("a few")),
		)),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en), sink)
	if _, ok := err.(*value.NonExhaustivePluralError); !ok {
		t.Fatalf("err = %T (%v), want *value.NonExhaustivePluralError", err, err)
	}
}

func TestOverlappingPluralReportedBeforeExhaustiveness(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("apples", value.NewMapping(
			value.Pair("1..=3", value.NewScalar("a")),
			value.Pair("2..=4", value.NewScalar("b")),
		)),
	))

	sink := warning.NewSink()
	_, err := CheckLocales(flatSet(t, en), sink)
	if _, ok := err.(*value.OverlappingPluralSelectorsError); !ok {
		t.Fatalf("err = %T (%v), want overlap reported first", err, err)
	}
}

func TestForeignKeysInlinedByReduction(t *testing.T) {
	en := buildLocale(t, "en", nil, value.NewMapping(
		value.Pair("hello", value.NewScalar("Hi")),
		value.Pair("greet", value.NewScalar("$t(hello)!")),
	))

	bk, _ := check(t, flatSet(t, en))
	if bk.Keys.Keys[key.MustNew("greet")].Kind != KindPlain {
		t.Fatal("greet should reduce to a plain string")
	}
	v, _ := en.Top.Get(key.MustNew("greet"))
	s, ok := v.(*value.String)
	if !ok || s.Text != "Hi!" {
		t.Fatalf("greet reduced to %#v, want String(Hi!)", v)
	}
}

// mergeFingerprint summarizes everything that must be identical across
// merge orders: key structure, kinds, and signatures.
func mergeFingerprint(t *testing.T, inner *BuildersKeysInner, prefix string, out map[string]string) {
	t.Helper()
	for _, k := range inner.Order {
		lv := inner.Keys[k]
		path := prefix + k.Name
		switch lv.Kind {
		case KindPlain:
			out[path] = "plain"
		case KindSubkeys:
			out[path] = "subkeys"
			mergeFingerprint(t, lv.Keys, path+".", out)
		case KindBuilder:
			sig := "builder:"
			for _, v := range lv.Signature.Variables() {
				sig += " var " + v.Name
			}
			for _, c := range lv.Signature.Components() {
				sig += " comp " + c.Name
			}
			for _, c := range lv.Signature.Counts() {
				sig += " count " + c.Name
			}
			out[path] = sig
		}
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	makeLocales := func() (*Locale, *Locale, *Locale) {
		en := buildLocale(t, "en", nil, value.NewMapping(
			value.Pair("greeting", value.NewScalar("Hello")),
			value.Pair("status", value.NewScalar("{{ count }} items")),
			value.Pair("nav", value.NewMapping(
				value.Pair("home", value.NewScalar("Home")),
				value.Pair("about", value.NewScalar("About")),
			)),
		))
		fr := buildLocale(t, "fr", nil, value.NewMapping(
			value.Pair("greeting", value.NewScalar("Bonjour {{ name }}")),
			value.Pair("nav", value.NewMapping(
				value.Pair("home", value.NewScalar("Accueil")),
			)),
			value.Pair("extra", value.NewScalar("Rien")),
		))
		de := buildLocale(t, "de", nil, value.NewMapping(
			value.Pair("greeting", value.NewScalar("Hallo")),
			value.Pair("status", value.NewScalar("{{ count }} Einträge für {{ user }}")),
		))
		return en, fr, de
	}

	run := func(order func(en, fr, de *Locale) []*Locale) (map[string]string, []string) {
		en, fr, de := makeLocales()
		set := flatSet(t, order(en, fr, de)...)
		bk, sink := check(t, set)
		fp := make(map[string]string)
		mergeFingerprint(t, bk.Keys, "", fp)
		var warns []string
		for _, w := range sink.Warnings() {
			warns = append(warns, w.String())
		}
		sort.Strings(warns)
		return fp, warns
	}

	fp1, warns1 := run(func(en, fr, de *Locale) []*Locale { return []*Locale{en, fr, de} })
	fp2, warns2 := run(func(en, fr, de *Locale) []*Locale { return []*Locale{en, de, fr} })

	if len(fp1) != len(fp2) {
		t.Fatalf("fingerprints differ in size: %v vs %v", fp1, fp2)
	}
	for path, v := range fp1 {
		if fp2[path] != v {
			t.Fatalf("schema differs at %q: %q vs %q", path, v, fp2[path])
		}
	}

	if len(warns1) != len(warns2) {
		t.Fatalf("warning sets differ: %v vs %v", warns1, warns2)
	}
	for i := range warns1 {
		if warns1[i] != warns2[i] {
			t.Fatalf("warning sets differ: %v vs %v", warns1, warns2)
		}
	}
}

func TestNamespacedMerge(t *testing.T) {
	common := key.MustNew("common")
	app := key.MustNew("app")

	commonEn := buildLocale(t, "en", &common, value.NewMapping(
		value.Pair("save", value.NewScalar("Save")),
	))
	commonFr := buildLocale(t, "fr", &common, value.NewMapping(
		value.Pair("save", value.NewScalar("Enregistrer")),
	))
	appEn := buildLocale(t, "en", &app, value.NewMapping(
		value.Pair("title", value.NewScalar("My App")),
	))
	appFr := buildLocale(t, "fr", &app, value.NewMapping())

	set, err := NewNamespaces(key.MustNew("en"), []key.Key{key.MustNew("en"), key.MustNew("fr")}, []*Namespace{
		{Key: common, Locales: []*Locale{commonEn, commonFr}},
		{Key: app, Locales: []*Locale{appEn, appFr}},
	})
	if err != nil {
		t.Fatalf("NewNamespaces: %v", err)
	}
	if err := set.ResolveForeignKeys(); err != nil {
		t.Fatalf("ResolveForeignKeys: %v", err)
	}

	bk, sink := check(t, set)
	if len(bk.NamespaceOrder) != 2 {
		t.Fatalf("namespaces = %v", bk.NamespaceOrder)
	}
	commonKeys := bk.NamespaceKeys[common]
	if commonKeys.Keys[key.MustNew("save")].Kind != KindPlain {
		t.Fatal("common:save should be plain")
	}

	warns := sink.Warnings()
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want one (app:title missing in fr)", warns)
	}
	if warns[0].Path.String() != "app:title" || warns[0].Locale != "fr" {
		t.Fatalf("warning = %+v", warns[0])
	}
}
