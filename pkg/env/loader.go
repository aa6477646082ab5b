// Package env reads LIVECHECK_* settings from the process
// environment and optional .env files.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Prefix scopes every key resolved by the default loader.
const Prefix = "LIVECHECK_"

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads variables from a .env file.
	Load(path string) error
	// Lookup resolves a key and reports whether it is set.
	Lookup(key string) (string, bool)
	// Get retrieves a value, empty when unset.
	Get(key string) string
	// GetWithDefault retrieves a value with a fallback.
	GetWithDefault(key, defaultValue string) string
	// Set sets a variable for this loader and the process.
	Set(key, value string) error
	// All returns the variables read from .env files.
	All() map[string]string
}

// DefaultLoader implements Loader. Keys are scoped by a prefix
// and the process environment takes precedence over file values.
type DefaultLoader struct {
	mu     sync.RWMutex
	prefix string
	vars   map[string]string
	loaded bool
}

// NewLoader creates a loader scoped to Prefix.
func NewLoader() *DefaultLoader {
	return NewLoaderWithPrefix(Prefix)
}

// NewLoaderWithPrefix creates a loader scoped to a custom prefix.
// An empty prefix resolves keys verbatim.
func NewLoaderWithPrefix(prefix string) *DefaultLoader {
	return &DefaultLoader{
		prefix: prefix,
		vars:   make(map[string]string),
	}
}

// Load reads KEY=value lines. Keys are stored as written, so a
// file meant for this loader carries the prefix too.
func (l *DefaultLoader) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		l.vars[strings.TrimSpace(key)] = strings.Trim(
			strings.TrimSpace(value), `"'`,
		)
	}

	l.loaded = true
	return scanner.Err()
}

func (l *DefaultLoader) name(key string) string {
	if strings.HasPrefix(key, l.prefix) {
		return key
	}
	return l.prefix + key
}

func (l *DefaultLoader) Lookup(key string) (string, bool) {
	name := l.name(key)
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[name]
	return v, ok
}

func (l *DefaultLoader) Get(key string) string {
	v, _ := l.Lookup(key)
	return v
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

func (l *DefaultLoader) Set(key, value string) error {
	name := l.name(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[name] = value
	return os.Setenv(name, value)
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
