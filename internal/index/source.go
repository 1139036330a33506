package index

import "strings"

// Schema identifies the document variant an index source serves
type Schema int

const (
	// SchemaPlain is the name/version-only variant used by the flake and
	// legacy channel indexes
	SchemaPlain Schema = iota

	// SchemaSystem is the extended variant carrying per-package metadata
	SchemaSystem

	// SchemaRaw marks documents cached verbatim without a relational store
	SchemaRaw
)

// String returns the string representation of Schema
func (s Schema) String() string {
	switch s {
	case SchemaPlain:
		return "plain"
	case SchemaSystem:
		return "system"
	case SchemaRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// rollingRelease is the in-development release identifier that the
// channels server publishes under the "unstable" name.
const rollingRelease = "22.11"

// NormalizeRelease maps a raw OS release identifier to its channel
// version component: the first five characters, with the rolling release
// mapped to the literal "unstable".
func NormalizeRelease(raw string) string {
	r := strings.TrimSpace(raw)
	if len(r) > 5 {
		r = r[:5]
	}
	if r == rollingRelease {
		return "unstable"
	}
	return r
}

// Source describes one remote index: where its version redirect and
// document live, which artifact key it caches under, and which schema its
// document follows.
type Source struct {
	// Key is the artifact basename inside the cache directory
	Key string

	// Channel is the channel path component on the channels server
	Channel string

	// Prefix is the tag prefix stripped from resolved version strings
	Prefix string

	// Document is the document filename requested from the channel
	Document string

	// Schema is the document variant
	Schema Schema
}

// SystemSource returns the extended system index for an OS release
func SystemSource(release string) Source {
	return Source{
		Key:      "nixospkgs",
		Channel:  "nixos-" + NormalizeRelease(release),
		Prefix:   "nixos-",
		Document: "packages.json.br",
		Schema:   SchemaSystem,
	}
}

// FlakeSource returns the plain index of the nixpkgs-unstable channel
// that the flake registry tracks
func FlakeSource() Source {
	return Source{
		Key:      "flakepkgs",
		Channel:  "nixpkgs-unstable",
		Prefix:   "nixpkgs-",
		Document: "packages.json.br",
		Schema:   SchemaPlain,
	}
}

// ChannelSource returns the plain index of a named legacy channel
func ChannelSource(channel string) Source {
	return Source{
		Key:      "chanpkgs",
		Channel:  channel,
		Prefix:   "nixos-",
		Document: "packages.json.br",
		Schema:   SchemaPlain,
	}
}

// OptionsSource returns the raw options document for an OS release
func OptionsSource(release string) Source {
	return Source{
		Key:      "nixosoptions",
		Channel:  "nixos-" + NormalizeRelease(release),
		Prefix:   "nixos-",
		Document: "options.json.br",
		Schema:   SchemaRaw,
	}
}

// VersionURL returns the redirect URL whose final location carries the
// canonical version tag
func (s Source) VersionURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/" + s.Channel
}

// DocumentURL returns the compressed document URL
func (s Source) DocumentURL(base string) string {
	return s.VersionURL(base) + "/" + s.Document
}
