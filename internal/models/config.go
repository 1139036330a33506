package models

import "time"

// Loader selection for the bulk-import stage
const (
	LoaderInsert  = "insert"  // in-process batched insert
	LoaderSqlite3 = "sqlite3" // external sqlite3 .import subprocess
)

// Defaults applied by Config.ApplyDefaults
const (
	DefaultChannelsURL = "https://channels.nixos.org"
	DefaultChannel     = "nixos-unstable"
	DefaultDeclKey     = "environment.systemPackages"
	DefaultSqlite3Path = "sqlite3"
	DefaultHTTPTimeout = 5 * time.Minute
)

// Config contains the settings threaded into every pipeline component.
// There is no package-level cache directory or client: callers build one
// Config and pass it down.
type Config struct {
	// CacheDir is the directory holding artifact, marker and lock files
	CacheDir string

	// ChannelsURL is the base URL for version redirects and index documents
	ChannelsURL string

	// HTTPTimeout bounds version resolution and index fetches
	HTTPTimeout time.Duration

	// Channel is the legacy channel name, e.g. "nixos-23.05"
	Channel string

	// Release is the OS release identifier used by the system index; when
	// empty it is probed from the running system
	Release string

	// Loader selects the bulk-import implementation
	Loader string

	// Sqlite3Path is the sqlite3 binary used by the external loader
	Sqlite3Path string

	// DeclKey is the declaration key package lists are read from
	DeclKey string
}

// ApplyDefaults fills zero-valued fields with the package defaults
func (c *Config) ApplyDefaults() {
	if c.ChannelsURL == "" {
		c.ChannelsURL = DefaultChannelsURL
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Channel == "" {
		c.Channel = DefaultChannel
	}
	if c.Loader == "" {
		c.Loader = LoaderInsert
	}
	if c.Sqlite3Path == "" {
		c.Sqlite3Path = DefaultSqlite3Path
	}
	if c.DeclKey == "" {
		c.DeclKey = DefaultDeclKey
	}
}
