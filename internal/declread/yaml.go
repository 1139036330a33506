package declread

import "gopkg.in/yaml.v3"

// YAMLReader reads list values from a YAML document with the same
// dotted-key traversal as TOML.
type YAMLReader struct{}

func (YAMLReader) Values(content []byte, key string) ([]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return listAt(doc, key)
}
