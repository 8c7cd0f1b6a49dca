// Package config builds process configuration from command-line flags whose
// defaults come from BARKCARD_* environment variables. A .env file in the
// working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "BARKCARD_"

// LoadDotEnv loads files into the environment without overriding variables
// that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// env reads typed defaults and collects parse errors.
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func newEnv() *env { return &env{lookup: os.LookupEnv} }

func (e *env) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *env) String(name, def string) string {
	if v, ok := e.get(name); ok {
		return v
	}
	return def
}

func (e *env) Bool(name string, def bool) bool {
	v, ok := e.get(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return def
	}
	return b
}

func (e *env) Int(name string, def int) int {
	v, ok := e.get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return def
	}
	return n
}

func (e *env) Duration(name string, def time.Duration) time.Duration {
	v, ok := e.get(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return def
	}
	return d
}

func (e *env) err() error { return errors.Join(e.errs...) }
