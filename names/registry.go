// Package names provides the domain registry: the set of domain names the
// box answers to, grouped by domain type.
//
// The registry is read from a YAML file of the form
//
//	domains:
//	  domainname:
//	    - example.org
//	  tor:
//	    - abcdefghijklmnop.onion
//
// and can be kept up to date with Watch, which reloads the file whenever it
// changes on disk.
package names

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"
)

const reloadDebounce = 250 * time.Millisecond

type fileFormat struct {
	Domains map[string][]string `yaml:"domains"`
}

// Registry implements interfaces.DomainRegistry.
type Registry struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	domains map[string][]string
}

// NewStatic creates a registry that is never reloaded.
func NewStatic(domains map[string][]string, log *slog.Logger) *Registry {
	return &Registry{
		log:     log,
		domains: sanitize(domains, log),
	}
}

// Load reads the registry file at path.
func Load(path string, log *slog.Logger) (*Registry, error) {
	r := &Registry{path: path, log: log}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the registry file. On error the previous contents are kept.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read domain registry %s: %w", r.path, err)
	}

	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse domain registry %s: %w", r.path, err)
	}

	domains := sanitize(parsed.Domains, r.log)

	r.mu.Lock()
	r.domains = domains
	r.mu.Unlock()

	r.log.Info("Domain registry loaded", slog.String("path", r.path), slog.Int("types", len(domains)))
	return nil
}

// sanitize drops trailing dots and skips anything that is not a syntactically
// valid domain name. Names are otherwise kept verbatim; lookups and the status
// join compare them exactly.
func sanitize(in map[string][]string, log *slog.Logger) map[string][]string {
	out := make(map[string][]string, len(in))
	for domainType, names := range in {
		clean := make([]string, 0, len(names))
		for _, name := range names {
			name = strings.TrimSuffix(strings.TrimSpace(name), ".")
			if !ValidDomainName(name) {
				log.Warn("Skipping invalid domain name", slog.String("type", domainType), slog.String("name", name))
				continue
			}
			if !slices.Contains(clean, name) {
				clean = append(clean, name)
			}
		}
		out[domainType] = clean
	}
	return out
}

// ValidDomainName reports whether name is a non-empty, relative host name made
// of letters, digits, hyphens and underscores. Letters and digits may be
// non-ASCII so internationalized names are accepted as written.
func ValidDomainName(name string) bool {
	if name == "" || strings.HasSuffix(name, ".") {
		return false
	}
	for _, c := range name {
		switch {
		case unicode.IsLetter(c), unicode.IsDigit(c):
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	labels, ok := dns.IsDomainName(name)
	return ok && labels > 0
}

// Domains returns a copy of the registry contents.
func (r *Registry) Domains() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.domains))
	for domainType, names := range r.domains {
		out[domainType] = slices.Clone(names)
	}
	return out
}

// Contains reports whether domain is registered under any type.
func (r *Registry) Contains(domain string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, names := range r.domains {
		if slices.Contains(names, domain) {
			return true
		}
	}
	return false
}

// All flattens a registry snapshot into a list ordered by domain type name,
// keeping the file order within a type. A name listed under several types
// appears once.
func All(domains map[string][]string) []string {
	types := make([]string, 0, len(domains))
	for domainType := range domains {
		types = append(types, domainType)
	}
	sort.Strings(types)

	var all []string
	for _, domainType := range types {
		for _, name := range domains[domainType] {
			if !slices.Contains(all, name) {
				all = append(all, name)
			}
		}
	}
	return all
}

// Watch reloads the registry whenever its file changes, until ctx is done.
// The parent directory is watched so that editors replacing the file by
// rename are picked up.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return fmt.Errorf("domain registry has no backing file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(r.path)
	go func() {
		defer func() { _ = watcher.Close() }()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}

				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if err := r.Reload(); err != nil {
						r.log.Error("Failed to reload domain registry", "err", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Warn("Domain registry watcher error", "err", err)
			}
		}
	}()

	return nil
}
