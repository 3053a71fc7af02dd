// Package config provides centralized, environment-driven configuration
// for the commit graph core, mirroring the process-wide knobs named in
// commit.c: whether to retain a commit's raw buffer after parsing, which
// character encoding to render commit messages in, and whether to track
// a reverse object-refs index during parsing.
package config

import (
	"os"
	"strconv"
)

// Config holds process-wide settings consumed by the parser and the
// pretty-printer.
type Config struct {
	// SaveCommitBuffer controls whether ParseCommit retains the raw
	// commit bytes on a Node after parsing it.
	SaveCommitBuffer bool

	// LogOutputEncoding and CommitEncoding are output-encoding
	// preferences; OutputEncoding resolves them in priority order.
	LogOutputEncoding string
	CommitEncoding    string

	// TrackObjectRefs requests that the parser populate a reverse
	// object-refs side table in a surrounding store; this package only
	// carries the flag, it does not build the index itself.
	TrackObjectRefs bool

	// Abbrev is the hash abbreviation length the pretty-printer and
	// interpolator use when no uniqueness search is performed.
	Abbrev int
}

// DefaultConfig builds a Config from the environment, falling back to
// the documented defaults when a variable is unset or unparsable.
func DefaultConfig() *Config {
	return &Config{
		SaveCommitBuffer:  getBool("GITGRAPH_SAVE_COMMIT_BUFFER", true),
		LogOutputEncoding: os.Getenv("GITGRAPH_LOG_OUTPUT_ENCODING"),
		CommitEncoding:    os.Getenv("GITGRAPH_COMMIT_ENCODING"),
		TrackObjectRefs:   getBool("GITGRAPH_TRACK_OBJECT_REFS", false),
		Abbrev:            getInt("GITGRAPH_ABBREV", 7),
	}
}

// OutputEncoding returns the encoding commit messages should be
// rendered in: GITGRAPH_LOG_OUTPUT_ENCODING if set, else
// GITGRAPH_COMMIT_ENCODING if set, else "utf-8".
func (c *Config) OutputEncoding() string {
	if c.LogOutputEncoding != "" {
		return c.LogOutputEncoding
	}
	if c.CommitEncoding != "" {
		return c.CommitEncoding
	}
	return "utf-8"
}

func getBool(name string, def bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Global is the application-wide configuration instance.
var Global = DefaultConfig()
