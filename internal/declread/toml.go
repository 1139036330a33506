package declread

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOMLReader reads list values from a TOML document. Dotted keys walk
// nested tables.
type TOMLReader struct{}

func (TOMLReader) Values(content []byte, key string) ([]string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return listAt(doc, key)
}

// listAt walks a decoded document along a dotted key and returns the
// string elements of the list found there.
func listAt(doc map[string]any, key string) ([]string, error) {
	var node any = doc
	for _, part := range strings.Split(key, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("key %q does not lead to a table", key)
		}
		node, ok = table[part]
		if !ok {
			return nil, fmt.Errorf("key %q not present", key)
		}
	}
	items, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("value of %q is not a list", key)
	}
	vals := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("value of %q holds a non-string element", key)
		}
		vals = append(vals, s)
	}
	return vals, nil
}
