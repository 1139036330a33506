// Package declread extracts declared package attributes from
// configuration sources. Each supported format has a reader; sources
// with an unknown extension are treated as Nix expressions since that
// is what system configurations overwhelmingly are.
package declread

import (
	"path/filepath"
	"strings"
)

// Reader extracts the list of values assigned to key in one
// configuration document.
type Reader interface {
	Values(content []byte, key string) ([]string, error)
}

// ForPath selects the reader for a source by its file extension.
func ForPath(path string) Reader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOMLReader{}
	case ".yaml", ".yml":
		return YAMLReader{}
	default:
		return NixReader{}
	}
}
