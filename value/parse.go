package value

import (
	"fmt"

	"github.com/lokalc/lokalc/key"
)

// Parse converts one raw resource document node into the value IR.
// Parsing is structural only: foreign keys stay unresolved and plurals
// unvalidated; those are later, global passes.
func Parse(raw *Raw, sd Seed, path *key.Path) (Value, error) {
	switch raw.Kind {
	case RawScalar:
		return parseScalar(raw.Scalar, sd, path)
	case RawSequence:
		return nil, &InvalidValueError{
			Path:   path.Clone(),
			Locale: sd.Locale.Name,
			Reason: "sequences are not allowed in translation documents",
		}
	case RawMapping:
		if isPluralMapping(raw) {
			return parsePlural(raw, sd, path)
		}
		return parseSubkeys(raw, sd, path)
	default:
		return nil, fmt.Errorf("value: unknown raw node kind %d", raw.Kind)
	}
}

// ParseTop parses a whole document. The top level must be a mapping of
// keys; a nil raw stands for a missing document and yields an empty
// tree.
func ParseTop(raw *Raw, sd Seed) (*Subkeys, error) {
	if raw == nil {
		return NewSubkeys(), nil
	}
	path := key.NewPath(sd.Namespace)
	v, err := Parse(raw, sd, path)
	if err != nil {
		return nil, err
	}
	top, ok := v.(*Subkeys)
	if !ok {
		return nil, &InvalidValueError{
			Path:   path.Clone(),
			Locale: sd.Locale.Name,
			Reason: "top level of a translation document must be a mapping of keys",
		}
	}
	return top, nil
}

// isPluralMapping reports whether every entry key (ignoring the
// reserved "$key" entry) parses as a plural selector. Such a mapping is
// a plural construct; any other mapping is a nested object.
func isPluralMapping(raw *Raw) bool {
	arms := 0
	for _, pair := range raw.Pairs {
		if pair.Key == pluralKeyMarker {
			continue
		}
		if _, ok := ParseSelector(pair.Key); !ok {
			return false
		}
		arms++
	}
	return arms > 0
}

func parsePlural(raw *Raw, sd Seed, path *key.Path) (Value, error) {
	count := key.MustNew(defaultCountName)
	p := &Plural{Count: count}
	for _, pair := range raw.Pairs {
		if pair.Key == pluralKeyMarker {
			if pair.Value.Kind != RawScalar {
				return nil, &InvalidValueError{
					Path:   path.Clone(),
					Locale: sd.Locale.Name,
					Reason: `"$key" must be a string naming the count argument`,
				}
			}
			name, err := key.TryNew(pair.Value.Scalar)
			if err != nil {
				return nil, err
			}
			p.Count = name
			continue
		}
		sel, _ := ParseSelector(pair.Key) // shape pre-checked by isPluralMapping
		armValue, err := Parse(pair.Value, sd, path)
		if err != nil {
			return nil, err
		}
		p.Arms = append(p.Arms, PluralArm{Selector: sel, Value: armValue})
	}
	return p, nil
}

func parseSubkeys(raw *Raw, sd Seed, path *key.Path) (Value, error) {
	sub := NewSubkeys()
	for _, pair := range raw.Pairs {
		k, err := key.TryNew(pair.Key)
		if err != nil {
			return nil, err
		}
		path.PushKey(k)
		v, err := Parse(pair.Value, sd, path)
		path.PopKey()
		if err != nil {
			return nil, err
		}
		sub.Set(k, v)
	}
	return sub, nil
}
