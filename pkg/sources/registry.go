package sources

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
)

// Factory builds an adapter for a fully resolved descriptor.
type Factory func(d Descriptor, deps Deps) (Adapter, error)

type registration struct {
	defaults Descriptor
	factory  Factory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// Register makes an adapter kind available to New. Profiles register their
// site defaults, generic kinds register a zero Descriptor.
func Register(kind string, defaults Descriptor, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic("sources: Register called twice for kind " + kind)
	}
	defaults.Kind = kind
	registry[kind] = registration{defaults: defaults, factory: f}
}

// Kinds lists registered adapter kinds, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Config is the user-facing source entry. Pointer fields distinguish "unset"
// from false so profile defaults survive partial overrides.
type Config struct {
	ID       string        `mapstructure:"id"`
	Name     string        `mapstructure:"name"`
	URL      string        `mapstructure:"url"`
	Kind     string        `mapstructure:"kind"`
	Enabled  *bool         `mapstructure:"enabled"`
	Official *bool         `mapstructure:"official"`
	Limit    int           `mapstructure:"limit"`
	Gate     string        `mapstructure:"gate"`
	Hints    extract.Hints `mapstructure:"hints"`
}

// Apply overlays the set fields of c on base.
func (c Config) Apply(base Descriptor) (Descriptor, error) {
	d := base
	if c.ID != "" {
		d.ID = c.ID
	}
	if c.Name != "" {
		d.Name = c.Name
	}
	if c.URL != "" {
		d.URL = c.URL
	}
	if c.Enabled != nil {
		d.Enabled = *c.Enabled
	}
	if c.Official != nil {
		d.Official = *c.Official
	}
	if c.Limit != 0 {
		d.Limit = c.Limit
	}
	if c.Gate != "" {
		g, err := classify.ParseGate(c.Gate)
		if err != nil {
			return d, fmt.Errorf("source %s: %w", d.ID, err)
		}
		d.Gate = g
	} else if d.Gate == "" {
		d.Gate = classify.GateCrime
		if d.Official {
			d.Gate = classify.GateOfficial
		}
	}
	if len(c.Hints.Containers) > 0 {
		d.Hints.Containers = c.Hints.Containers
	}
	if len(c.Hints.Titles) > 0 {
		d.Hints.Titles = c.Hints.Titles
	}
	if len(c.Hints.Dates) > 0 {
		d.Hints.Dates = c.Hints.Dates
	}
	if len(c.Hints.Descriptions) > 0 {
		d.Hints.Descriptions = c.Hints.Descriptions
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	return d, d.Validate()
}

// New resolves a config entry against its registered kind and builds the
// adapter. An empty kind falls back to the id, so `- id: sknis` is enough to
// enable a built-in profile.
func New(c Config, deps Deps) (Adapter, error) {
	kind := c.Kind
	if kind == "" {
		kind = c.ID
	}
	registryMu.RLock()
	reg, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source %q: unknown kind %q", c.ID, kind)
	}

	base := reg.defaults
	if c.ID == "" && base.ID == "" {
		return nil, errors.New("source id is required")
	}
	d, err := c.Apply(base)
	if err != nil {
		return nil, err
	}
	deps, err = deps.withDefaults()
	if err != nil {
		return nil, err
	}
	return reg.factory(d, deps)
}

// Build creates adapters for every entry. Bad entries are reported together
// and skipped; duplicate ids are rejected.
func Build(configs []Config, deps Deps) ([]Adapter, error) {
	var (
		out  []Adapter
		errs []error
		seen = map[string]bool{}
	)
	for _, c := range configs {
		a, err := New(c, deps)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		id := a.Descriptor().ID
		if seen[id] {
			errs = append(errs, fmt.Errorf("duplicate source id %q", id))
			continue
		}
		seen[id] = true
		out = append(out, a)
	}
	return out, errors.Join(errs...)
}

// DefaultConfigs returns one entry per registered profile that carries its
// own URL, in id order.
func DefaultConfigs() []Config {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var out []Config
	for kind, reg := range registry {
		if reg.defaults.URL == "" {
			continue
		}
		enabled := reg.defaults.Enabled
		out = append(out, Config{ID: reg.defaults.ID, Kind: kind, Enabled: &enabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
