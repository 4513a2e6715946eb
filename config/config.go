// Package config reads MDDL's environment-variable overrides using a
// plain os.Getenv-with-default pattern.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/mddl-lang/mddl/util"
)

const (
	defaultLibDir     = "./lib"
	defaultHumanizeMs = 50
	maxHumanizeMs     = 250
	defaultPPQ        = 960
	defaultTempo      = 120
)

// LibPath returns the directory MDDL's library lookup searches after
// the current directory, overridable so a performance rig can point
// at a shared library location.
func LibPath() string {
	if v := os.Getenv("MDDL_LIB_PATH"); v != "" {
		return v
	}
	return defaultLibDir
}

// HumanizeWindow returns the humanization debounce window, clamped to
// maxHumanizeMs so a misconfigured override can't stall phrase
// recognition indefinitely.
func HumanizeWindow() time.Duration {
	ms := defaultHumanizeMs
	if v := os.Getenv("MDDL_HUMANIZE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			ms = n
		}
	}
	ms = int(util.Min(int64(ms), int64(maxHumanizeMs)))
	return time.Duration(ms) * time.Millisecond
}

// PPQ returns the pulses-per-quarter-note the syntax parser and
// scheduler convert ticks against.
func PPQ() int {
	if v := os.Getenv("MDDL_PPQ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultPPQ
}

// Tempo returns the interpreter's default tempo in beats per minute.
func Tempo() int {
	if v := os.Getenv("MDDL_TEMPO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultTempo
}
