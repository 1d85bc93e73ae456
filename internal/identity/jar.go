// Package identity holds the process-wide cookie jar written by the sign-in
// flow and exposes the identity key read from it.
package identity

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"gopkg.in/yaml.v3"
)

// CookieFile is the jar's file name inside the state directory.
const CookieFile = "cookies.yaml"

// Cookie is one jar entry. A zero Expires never expires.
type Cookie struct {
	Value   string    `yaml:"value"`
	Expires time.Time `yaml:"expires,omitempty"`
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

type jarFile struct {
	Cookies map[string]Cookie `yaml:"cookies"`
}

// CookieJar is a name/value mapping with per-entry expiry. When it has a
// path, every change is written back to that YAML file.
type CookieJar struct {
	mu      sync.Mutex
	path    string
	now     func() time.Time
	cookies map[string]Cookie
}

// NewMemoryJar creates a jar that is never written to disk.
func NewMemoryJar() *CookieJar {
	return &CookieJar{now: time.Now, cookies: make(map[string]Cookie)}
}

// OpenJar loads the jar stored at path. A missing file is an empty jar.
func OpenJar(path string) (*CookieJar, error) {
	jar := NewMemoryJar()
	jar.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return jar, nil
	}
	if err != nil {
		return nil, &internal.StorageError{Backend: "file", Key: path, Op: "open", Err: err}
	}

	var file jarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &internal.ParseError{Source: "cookies", Key: path, Err: err}
	}
	for name, c := range file.Cookies {
		jar.cookies[name] = c
	}
	return jar, nil
}

// Path returns the backing file, or "" for an in-memory jar
func (j *CookieJar) Path() string {
	return j.path
}

// Get returns the value of a live cookie.
func (j *CookieJar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok || c.expired(j.now()) {
		return "", false
	}
	return c.Value, true
}

// Set stores a cookie that lives for maxAge. Zero maxAge never expires.
func (j *CookieJar) Set(name, value string, maxAge time.Duration) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	c := Cookie{Value: value}
	if maxAge > 0 {
		c.Expires = j.now().Add(maxAge).UTC()
	}
	j.cookies[name] = c
	return j.saveLocked()
}

// Delete removes a cookie.
func (j *CookieJar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	delete(j.cookies, name)
	return j.saveLocked()
}

// Clear removes every cookie.
func (j *CookieJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cookies = make(map[string]Cookie)
	return j.saveLocked()
}

// Names lists live cookie names in sorted order.
func (j *CookieJar) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	names := make([]string, 0, len(j.cookies))
	for name, c := range j.cookies {
		if !c.expired(now) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// saveLocked drops expired entries and writes the jar. Caller holds j.mu.
func (j *CookieJar) saveLocked() error {
	now := j.now()
	for name, c := range j.cookies {
		if c.expired(now) {
			delete(j.cookies, name)
		}
	}
	if j.path == "" {
		return nil
	}

	data, err := yaml.Marshal(jarFile{Cookies: j.cookies})
	if err != nil {
		return &internal.ParseError{Source: "cookies", Key: j.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0700); err != nil {
		return &internal.StorageError{Backend: "file", Key: j.path, Op: "set", Err: err}
	}
	// Cookies hold access tokens.
	if err := os.WriteFile(j.path, data, 0600); err != nil {
		return &internal.StorageError{Backend: "file", Key: j.path, Op: "set", Err: err}
	}
	return nil
}
