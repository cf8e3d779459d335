package titles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// flatEntry is one element of the flat list form. Title may be null.
type flatEntry struct {
	App   string  `json:"app" yaml:"app"`
	Title *string `json:"title" yaml:"title"`
}

// Load reads a mapping source file. Both the flat list form
// ([{app, title}, ...]) and the nested {platform: {category: {app: title}}}
// form are accepted, as JSON or YAML depending on the file extension.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read title mapping: %w", err)
	}

	var groups []Group
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		groups, err = decodeYAML(data)
	default:
		groups, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse title mapping %s: %w", path, err)
	}
	return Entries(groups), nil
}

func decodeJSON(data []byte) ([]Group, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok {
	case json.Delim('['):
		var flat []flatEntry
		if err := json.Unmarshal(data, &flat); err != nil {
			return nil, err
		}
		return flatGroups(flat)
	case json.Delim('{'):
		return decodeNestedJSON(dec)
	default:
		return nil, errors.New("mapping must be a list or an object")
	}
}

// decodeNestedJSON walks the token stream so that source key order, and
// with it "later definition wins", is preserved.
func decodeNestedJSON(dec *json.Decoder) ([]Group, error) {
	var groups []Group
	for dec.More() {
		platform, err := keyToken(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("platform %q: %w", platform, err)
		}

		for dec.More() {
			category, err := keyToken(dec)
			if err != nil {
				return nil, err
			}
			if err := expectDelim(dec, '{'); err != nil {
				return nil, fmt.Errorf("category %q: %w", category, err)
			}

			g := Group{Platform: platform, Category: category}
			for dec.More() {
				app, err := keyToken(dec)
				if err != nil {
					return nil, err
				}
				var title *string
				if err := dec.Decode(&title); err != nil {
					return nil, fmt.Errorf("%s/%s/%s: %w", platform, category, app, err)
				}
				g.Entries = append(g.Entries, Entry{App: app, Title: deref(title)})
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
			groups = append(groups, g)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return groups, nil
}

func keyToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func decodeYAML(data []byte) ([]Group, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("empty mapping document")
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var flat []flatEntry
		if err := node.Decode(&flat); err != nil {
			return nil, err
		}
		return flatGroups(flat)
	case yaml.MappingNode:
		return decodeNestedYAML(node)
	default:
		return nil, errors.New("mapping must be a list or a mapping")
	}
}

func decodeNestedYAML(node *yaml.Node) ([]Group, error) {
	var groups []Group
	for i := 0; i+1 < len(node.Content); i += 2 {
		platform, categories := node.Content[i].Value, node.Content[i+1]
		if categories.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("platform %q: line %d: expected a mapping", platform, categories.Line)
		}

		for j := 0; j+1 < len(categories.Content); j += 2 {
			category, apps := categories.Content[j].Value, categories.Content[j+1]
			if apps.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("category %q: line %d: expected a mapping", category, apps.Line)
			}

			g := Group{Platform: platform, Category: category}
			for k := 0; k+1 < len(apps.Content); k += 2 {
				app := apps.Content[k].Value
				var title *string
				if err := apps.Content[k+1].Decode(&title); err != nil {
					return nil, fmt.Errorf("%s/%s/%s: %w", platform, category, app, err)
				}
				g.Entries = append(g.Entries, Entry{App: app, Title: deref(title)})
			}
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func flatGroups(flat []flatEntry) ([]Group, error) {
	g := Group{Entries: make([]Entry, 0, len(flat))}
	for i, fe := range flat {
		if fe.App == "" {
			return nil, fmt.Errorf("entry %d has no app", i)
		}
		g.Entries = append(g.Entries, Entry{App: fe.App, Title: deref(fe.Title)})
	}
	return []Group{g}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
