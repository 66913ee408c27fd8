package value

import (
	"fmt"
	"strings"

	"github.com/lokalc/lokalc/key"
)

// Placeholder micro-grammar, version 1. Inside a scalar leaf:
//
//	{{ name }}          variable
//	<name>...</name>    component; nests, <name/> is an empty component
//	$t(path)            foreign key, path = [ns:]seg(.seg)*
//
// A marker that does not complete ("{{" without "}}", "$t(" without
// ")", "<" not followed by a tag) stays literal text. Component tags
// must nest properly: an unclosed open tag or a close tag that does not
// match the innermost open tag is an InvalidValueError.

// Seed carries the locale and namespace context a document is parsed
// under, so foreign keys know where relative paths resolve.
type Seed struct {
	Locale    key.Key
	Namespace *key.Key
}

// parseScalar parses one string leaf into the value IR.
func parseScalar(text string, sd Seed, path *key.Path) (Value, error) {
	parts, rest, closed, err := parseFragments(text, "", sd, path)
	if err != nil {
		return nil, err
	}
	if closed || rest != "" {
		// Unreachable: with no stop tag, a stray close tag errors out
		// inside parseFragments.
		return nil, &InvalidValueError{Path: path.Clone(), Locale: sd.Locale.Name, Reason: "unbalanced component tag"}
	}
	return joinFragments(parts), nil
}

// joinFragments collapses a fragment list to a single node.
func joinFragments(parts []Value) Value {
	switch len(parts) {
	case 0:
		return &String{}
	case 1:
		return parts[0]
	default:
		return &Seq{Parts: parts}
	}
}

// parseFragments scans text until the close tag named stopTag, or to
// the end of input when stopTag is empty. It returns the parsed
// fragments, the unconsumed remainder after the close tag, and whether
// the close tag was found.
func parseFragments(text, stopTag string, sd Seed, path *key.Path) ([]Value, string, bool, error) {
	var parts []Value
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, &String{Text: lit.String()})
			lit.Reset()
		}
	}
	fail := func(reason string) error {
		return &InvalidValueError{Path: path.Clone(), Locale: sd.Locale.Name, Reason: reason}
	}

	for len(text) > 0 {
		switch {
		case strings.HasPrefix(text, "{{"):
			end := strings.Index(text, "}}")
			if end < 0 {
				lit.WriteString("{{")
				text = text[2:]
				continue
			}
			name := text[2:end]
			k, err := key.TryNew(name)
			if err != nil {
				return nil, "", false, fail(fmt.Sprintf("bad variable name %q", strings.TrimSpace(name)))
			}
			flush()
			parts = append(parts, &Variable{Key: k})
			text = text[end+2:]

		case strings.HasPrefix(text, "$t("):
			end := strings.Index(text, ")")
			if end < 0 {
				lit.WriteString("$t(")
				text = text[3:]
				continue
			}
			target, err := ParseForeignPath(text[3:end])
			if err != nil {
				return nil, "", false, fail(fmt.Sprintf("bad foreign key path %q: %v", text[3:end], err))
			}
			flush()
			parts = append(parts, &ForeignKey{Target: target, Locale: sd.Locale, Namespace: sd.Namespace})
			text = text[end+1:]

		case strings.HasPrefix(text, "</"):
			end := strings.Index(text, ">")
			if end < 0 {
				lit.WriteByte('<')
				text = text[1:]
				continue
			}
			name := strings.TrimSpace(text[2:end])
			if stopTag != "" && name == stopTag {
				flush()
				return parts, text[end+1:], true, nil
			}
			return nil, "", false, fail(fmt.Sprintf("close tag </%s> does not match any open component", name))

		case text[0] == '<':
			end := strings.Index(text, ">")
			if end < 0 {
				lit.WriteByte('<')
				text = text[1:]
				continue
			}
			body := strings.TrimSpace(text[1:end])
			selfClosing := strings.HasSuffix(body, "/")
			name := strings.TrimSpace(strings.TrimSuffix(body, "/"))
			k, ok := key.New(name)
			if !ok {
				// Not a tag, e.g. "a < b". Keep the '<' literal.
				lit.WriteByte('<')
				text = text[1:]
				continue
			}
			flush()
			if selfClosing {
				parts = append(parts, &Component{Key: k, Inner: &String{}})
				text = text[end+1:]
				continue
			}
			inner, rest, closed, err := parseFragments(text[end+1:], name, sd, path)
			if err != nil {
				return nil, "", false, err
			}
			if !closed {
				return nil, "", false, fail(fmt.Sprintf("component <%s> is never closed", name))
			}
			parts = append(parts, &Component{Key: k, Inner: joinFragments(inner)})
			text = rest

		default:
			lit.WriteByte(text[0])
			text = text[1:]
		}
	}

	if stopTag != "" {
		return nil, "", false, fail(fmt.Sprintf("component <%s> is never closed", stopTag))
	}
	flush()
	return parts, "", false, nil
}
