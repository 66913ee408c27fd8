package value

// RawKind identifies a raw resource document node.
type RawKind int

const (
	// RawScalar is a leaf text node.
	RawScalar RawKind = iota
	// RawMapping is an ordered key/value object.
	RawMapping
	// RawSequence is an array node. Sequences are rejected by the
	// parser; the kind exists so loaders can hand them over and get a
	// positioned error back.
	RawSequence
)

// Raw is a syntax-neutral resource document node. Loaders produce it
// from YAML or JSON; Parse consumes it. Mapping entries keep authored
// order, which the plural model depends on.
type Raw struct {
	Kind   RawKind
	Scalar string
	Pairs  []RawPair
	Items  []*Raw
}

// RawPair is one mapping entry.
type RawPair struct {
	Key   string
	Value *Raw
}

// NewScalar returns a scalar raw node.
func NewScalar(text string) *Raw {
	return &Raw{Kind: RawScalar, Scalar: text}
}

// NewMapping returns a mapping raw node with the given entries.
func NewMapping(pairs ...RawPair) *Raw {
	return &Raw{Kind: RawMapping, Pairs: pairs}
}

// NewSequence returns a sequence raw node.
func NewSequence(items ...*Raw) *Raw {
	return &Raw{Kind: RawSequence, Items: items}
}

// Pair is a convenience constructor for mapping entries.
func Pair(k string, v *Raw) RawPair {
	return RawPair{Key: k, Value: v}
}
