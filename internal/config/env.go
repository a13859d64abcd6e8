package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by the CLI. Flags take precedence over them.
const (
	EnvConfig   = "SGLINT_CONFIG"
	EnvJobs     = "SGLINT_JOBS"
	EnvCacheDir = "SGLINT_CACHE_DIR"
)

// Env holds the defaults taken from the environment.
type Env struct {
	ConfigPath string
	Jobs       int
	CacheDir   string
}

// LoadEnv reads the SGLINT_* variables through lookup (os.LookupEnv when nil).
func LoadEnv(lookup func(string) (string, bool)) (Env, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var env Env
	if v, ok := lookup(EnvConfig); ok {
		env.ConfigPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvJobs); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return Env{}, fmt.Errorf("%s: expected a non-negative integer, got %q", EnvJobs, v)
		}
		env.Jobs = n
	}
	if v, ok := lookup(EnvCacheDir); ok {
		env.CacheDir = strings.TrimSpace(v)
	}
	return env, nil
}
