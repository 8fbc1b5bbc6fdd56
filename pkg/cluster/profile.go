// Package cluster implements the registry of named backend connection
// profiles. It owns profile normalization, the always-present default
// profile, a lazy per-profile client cache, and idempotent dynamic
// registration of ad-hoc backends supplied at call time.
package cluster

// DefaultClusterName is the reserved name of the fallback profile. A registry
// always contains a profile with this name.
const DefaultClusterName = "default"

// Profile is a named backend connection descriptor.
//
// Profiles are immutable once inserted into a registry and are never deleted
// during the process lifetime.
type Profile struct {
	// Name is the registry's primary key.
	Name string `json:"name" yaml:"name"`

	// URL is the backend base address.
	URL string `json:"url" yaml:"url"`

	// APIKey is an optional opaque credential. Empty means unauthenticated
	// calls.
	APIKey string `json:"-" yaml:"apiKey"`

	// Description, ReadOnly and Labels are advisory metadata and never
	// affect routing.
	Description string            `json:"description,omitempty" yaml:"description"`
	ReadOnly    bool              `json:"readOnly,omitempty" yaml:"readOnly"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels"`
}

// normalizeProfiles validates and de-duplicates candidate profiles.
// Candidates missing a name or URL are dropped, absent fields are filled from
// base, and duplicates by name are resolved first-occurrence-wins. Order is
// preserved.
func normalizeProfiles(base Config, candidates []Profile) []Profile {
	seen := make(map[string]bool, len(candidates))
	profiles := make([]Profile, 0, len(candidates))

	for _, p := range candidates {
		if p.Name == "" || p.URL == "" {
			continue
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true

		if p.APIKey == "" {
			p.APIKey = base.APIKey
		}
		if p.Description == "" {
			p.Description = "Qdrant cluster " + p.Name
		}
		if p.Labels == nil {
			p.Labels = map[string]string{}
		}

		profiles = append(profiles, p)
	}

	return profiles
}
