package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lokalc/lokalc/locale"
	"github.com/lokalc/lokalc/value"
)

// extensions are the resource document formats, tried in order.
var extensions = []string{".yaml", ".yml", ".json"}

// LoadLocales reads every (locale, namespace) resource document under
// cfg.Dir and parses the locale trees. Flat mode expects
// dir/{locale}.{ext}; namespace mode expects dir/{locale}/{ns}.{ext}.
// A missing document for the default locale is an error; for any other
// locale it yields an empty tree and the merge pass reports the missing
// keys.
func LoadLocales(cfg *Config) (*locale.LocalesOrNamespaces, error) {
	if len(cfg.Namespaces) == 0 {
		locales := make([]*locale.Locale, 0, len(cfg.Locales))
		for i, lk := range cfg.Locales {
			raw, err := loadDocument(cfg.Dir, lk.Name, i == 0)
			if err != nil {
				return nil, err
			}
			loc, err := locale.New(lk, nil, raw)
			if err != nil {
				return nil, err
			}
			locales = append(locales, loc)
		}
		return locale.NewLocales(cfg.Default, cfg.Locales, locales)
	}

	namespaces := make([]*locale.Namespace, 0, len(cfg.Namespaces))
	for _, nk := range cfg.Namespaces {
		ns := &locale.Namespace{Key: nk}
		for i, lk := range cfg.Locales {
			raw, err := loadDocument(filepath.Join(cfg.Dir, lk.Name), nk.Name, i == 0)
			if err != nil {
				return nil, err
			}
			loc, err := locale.New(lk, &nk, raw)
			if err != nil {
				return nil, err
			}
			ns.Locales = append(ns.Locales, loc)
		}
		namespaces = append(namespaces, ns)
	}
	return locale.NewNamespaces(cfg.Default, cfg.Locales, namespaces)
}

// loadDocument finds and parses one resource document. A nil Raw means
// the document does not exist and required was false.
func loadDocument(dir, name string, required bool) (*value.Raw, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		raw, err := parseDocument(path, data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return raw, nil
	}
	if required {
		return nil, fmt.Errorf("no resource document for %q in %s (tried %v)", name, dir, extensions)
	}
	return nil, nil
}

func parseDocument(path string, data []byte) (*value.Raw, error) {
	if filepath.Ext(path) == ".json" {
		return parseJSONDocument(data)
	}
	return parseYAMLDocument(data)
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

func parseYAMLDocument(data []byte) (*value.Raw, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty file.
		return nil, nil
	}
	return rawFromYAML(doc.Content[0])
}

func rawFromYAML(n *yaml.Node) (*value.Raw, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return rawFromYAML(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return value.NewScalar(""), nil
		}
		return value.NewScalar(n.Value), nil
	case yaml.MappingNode:
		raw := &value.Raw{Kind: value.RawMapping}
		for i := 0; i+1 < len(n.Content); i += 2 {
			child, err := rawFromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			raw.Pairs = append(raw.Pairs, value.Pair(n.Content[i].Value, child))
		}
		return raw, nil
	case yaml.SequenceNode:
		raw := &value.Raw{Kind: value.RawSequence}
		for _, c := range n.Content {
			child, err := rawFromYAML(c)
			if err != nil {
				return nil, err
			}
			raw.Items = append(raw.Items, child)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// parseJSONDocument decodes JSON through the token stream so that
// mapping entries keep their authored order, which encoding/json's map
// decoding would lose.
func parseJSONDocument(data []byte) (*value.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	raw, err := rawFromJSONToken(dec, tok)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parsing JSON: trailing data after document")
	}
	return raw, nil
}

func rawFromJSONToken(dec *json.Decoder, tok json.Token) (*value.Raw, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			raw := &value.Raw{Kind: value.RawMapping}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", kt)
				}
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				child, err := rawFromJSONToken(dec, vt)
				if err != nil {
					return nil, err
				}
				raw.Pairs = append(raw.Pairs, value.Pair(k, child))
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return raw, nil
		case '[':
			raw := &value.Raw{Kind: value.RawSequence}
			for dec.More() {
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				child, err := rawFromJSONToken(dec, vt)
				if err != nil {
					return nil, err
				}
				raw.Items = append(raw.Items, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return raw, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return value.NewScalar(t), nil
	case json.Number:
		return value.NewScalar(t.String()), nil
	case bool:
		return value.NewScalar(strconv.FormatBool(t)), nil
	case nil:
		return value.NewScalar(""), nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}
