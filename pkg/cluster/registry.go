package cluster

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
	"github.com/quiver-mcp/quiver/pkg/logger"
	"github.com/quiver-mcp/quiver/pkg/qdrant"
)

// Config is the base configuration a registry is constructed from. It
// describes the fallback backend used when no declared profile is named
// "default".
type Config struct {
	// URL is the default backend base address.
	URL string

	// APIKey is the default credential. Empty means unauthenticated.
	APIKey string

	// DefaultCluster optionally names the profile that should start active.
	DefaultCluster string
}

// Registry maps profile names to backend connection profiles and caches one
// client per profile. All methods are safe for concurrent use; no lock is
// held across a network call (client construction does not dial).
type Registry struct {
	mu sync.Mutex

	// profiles and order are insert-only for the process lifetime.
	profiles map[string]Profile
	order    []string

	// clients is the lazy client cache: at most one client per profile
	// name, so connection pooling accumulates rather than resetting per
	// call.
	clients map[string]*qdrant.Client

	// activeName is the profile used when a caller omits a selector.
	// Always present in profiles.
	activeName string
}

// NewRegistry builds a registry from a base configuration and declared
// candidate profiles. Invalid candidates are dropped and duplicates resolved
// first-wins; if the result lacks a profile named "default", one is
// synthesized from the base configuration, so Resolve("") can never fail.
func NewRegistry(cfg Config, candidates []Profile) *Registry {
	profiles := normalizeProfiles(cfg, candidates)

	hasDefault := false
	for _, p := range profiles {
		if p.Name == DefaultClusterName {
			hasDefault = true
			break
		}
	}
	if len(profiles) == 0 || !hasDefault {
		profiles = append(profiles, Profile{
			Name:        DefaultClusterName,
			URL:         cfg.URL,
			APIKey:      cfg.APIKey,
			Description: "Default cluster",
			Labels:      map[string]string{},
		})
	}

	r := &Registry{
		profiles: make(map[string]Profile, len(profiles)),
		order:    make([]string, 0, len(profiles)),
		clients:  make(map[string]*qdrant.Client),
	}
	for _, p := range profiles {
		r.profiles[p.Name] = p
		r.order = append(r.order, p.Name)
	}

	// Requested default if declared, else the reserved name, else the first
	// profile. The fallback synthesis above makes the last arm unreachable,
	// but it keeps the invariant local.
	r.activeName = DefaultClusterName
	if cfg.DefaultCluster != "" {
		if _, ok := r.profiles[cfg.DefaultCluster]; ok {
			r.activeName = cfg.DefaultCluster
		}
	}
	if _, ok := r.profiles[r.activeName]; !ok {
		r.activeName = r.order[0]
	}

	return r
}

// Resolve returns the profile for name, or for the active profile when name
// is empty. An unknown non-empty name is a caller error and must not be
// retried.
func (r *Registry) Resolve(name string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(name)
}

func (r *Registry) resolveLocked(name string) (Profile, error) {
	if name == "" {
		name = r.activeName
	}
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, r.unknownClusterLocked(name)
	}
	return p, nil
}

// unknownClusterLocked builds the caller-facing error for a missing name,
// listing every valid name to minimize round-trips.
func (r *Registry) unknownClusterLocked(name string) error {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return qerr.NewUnknownClusterError(
		fmt.Sprintf("unknown cluster %q, valid clusters: %s", name, strings.Join(names, ", ")), nil)
}

// Client resolves the profile for name (or the active profile when name is
// empty) and returns its cached client, constructing it on first use. For
// the lifetime of the registry at most one client exists per profile name.
func (r *Registry) Client(name string) (*qdrant.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.resolveLocked(name)
	if err != nil {
		return nil, err
	}

	if c, ok := r.clients[p.Name]; ok {
		return c, nil
	}

	c := qdrant.New(p.URL, p.APIKey)
	r.clients[p.Name] = c
	return c, nil
}

// SetActive changes the default profile. Fails with the same unknown-cluster
// error as Resolve when name is not registered.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return r.unknownClusterLocked(name)
	}
	r.activeName = name
	return nil
}

// Active returns the name of the current default profile.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeName
}

// RegisterDynamic registers a backend supplied as a bare URL at call time and
// returns its stable synthetic name. Registration is idempotent: the same
// URL (up to normalization) always maps to the same name, and the first
// registration's credential wins for the process lifetime. This trades
// "always use the freshest credential" for stable identity and client-cache
// reuse; that is a policy choice, not an oversight.
func (r *Registry) RegisterDynamic(rawURL, apiKey string) (string, error) {
	if rawURL == "" {
		return "", qerr.NewInvalidURLError("cluster URL must not be empty", nil)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", qerr.NewInvalidURLError(fmt.Sprintf("cluster URL %q is not parsable", rawURL), err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", qerr.NewInvalidURLError(
			fmt.Sprintf("cluster URL %q must be an absolute http(s) URL", rawURL), nil)
	}

	normalized := NormalizeURL(rawURL)
	name := DeriveStableName(normalized)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; ok {
		return name, nil
	}

	r.profiles[name] = Profile{
		Name:        name,
		URL:         rawURL,
		APIKey:      apiKey,
		Description: "Dynamically registered cluster",
		Labels:      map[string]string{"dynamic": "true"},
	}
	r.order = append(r.order, name)

	logger.Infow("registered dynamic cluster", "name", name, "url", normalized)
	return name, nil
}

// List returns all profiles in registration order. The returned slice is a
// snapshot; callers exposing it externally must not include credentials.
func (r *Registry) List() []Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles := make([]Profile, 0, len(r.order))
	for _, name := range r.order {
		profiles = append(profiles, r.profiles[name])
	}
	return profiles
}
