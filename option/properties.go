// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package option

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errors "golang.org/x/xerrors"
)

// LoadProperties parses a ".properties"-style file ("key=value" lines, "#"
// or "!" starting a comment, blank lines skipped) into a flat map, the way
// persisted connection_properties are read before being overlaid into a
// block's effective config (spec §4.3, SPEC_FULL.md "Persisted config &
// credentials").
func LoadProperties(fileName string) (map[string]string, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Errorf("open %s: %w", fileName, err)
	}
	defer f.Close()
	return ParseProperties(f)
}

// ParseProperties reads ".properties" syntax from r.
func ParseProperties(r io.Reader) (map[string]string, error) {
	props := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		val := strings.TrimSpace(line[i+1:])
		props[key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("scan properties: %w", err)
	}
	return props, nil
}

// CredentialStore resolves per-datasource credential files from a
// directory, one ".properties" file per datasource name, lazily loaded and
// cached the way dbcsv.Config resolves its derived fields on first use.
// Guarded by a mutex: spec §6's "tasks" option runs multiple queries
// concurrently, each potentially resolving credentials for the same
// datasource (spec §5 "no shared mutable state except the process-scope
// variable store and the extension registry" extends, in practice, to any
// other shared cache a component introduces).
type CredentialStore struct {
	dir string

	mu    sync.Mutex
	cache map[string]map[string]string
}

// NewCredentialStore builds a CredentialStore rooted at dir.
func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{dir: dir, cache: make(map[string]map[string]string)}
}

// Get loads and caches the credential properties for the named datasource
// from "<dir>/<name>.properties".
func (s *CredentialStore) Get(name string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if props, ok := s.cache[name]; ok {
		return props, nil
	}
	props, err := LoadProperties(filepath.Join(s.dir, name+".properties"))
	if err != nil {
		return nil, err
	}
	s.cache[name] = props
	return props, nil
}
