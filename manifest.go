package panels

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Manifest is the static panel table authored as TOML:
//
//	[manager]
//	debug = true
//	max_concurrent_loads = 8
//	load_timeout = "10s"
//
//	[[panel]]
//	id = 0
//	name = "Inventory"
//	layer = "normal"
//	address = "ui/inventory"
//	permanent = false
type Manifest struct {
	Manager ManagerConfig `toml:"manager"`
	Panels  []PanelConfig `toml:"panel"`
}

// ManagerConfig holds the [manager] table.
type ManagerConfig struct {
	Debug              bool     `toml:"debug"`
	MaxConcurrentLoads int      `toml:"max_concurrent_loads"`
	LoadTimeout        Duration `toml:"load_timeout"`
}

// PanelConfig is one [[panel]] entry.
type PanelConfig struct {
	ID        PanelID   `toml:"id"`
	Name      string    `toml:"name"`
	Layer     LayerKind `toml:"layer"`
	Address   string    `toml:"address"`
	Permanent bool      `toml:"permanent"`
}

// Duration decodes TOML strings such as "1.5s" with time.ParseDuration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DecodeManifest parses TOML manifest data. Unknown keys are rejected so
// typos in panel tables surface at startup.
func DecodeManifest(data []byte) (*Manifest, error) {
	var mf Manifest
	md, err := toml.Decode(string(data), &mf)
	if err != nil {
		return nil, fmt.Errorf("panels: decode manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("panels: decode manifest: unknown keys %s", strings.Join(keys, ", "))
	}
	return &mf, nil
}

// LoadManifest reads and decodes the manifest file name from fsys.
func LoadManifest(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("panels: read manifest: %w", err)
	}
	return DecodeManifest(data)
}

// Apply copies the [manager] settings onto opts. Unset values leave opts
// unchanged.
func (mf *Manifest) Apply(opts Options) Options {
	if mf.Manager.Debug {
		opts.Debug = true
	}
	if mf.Manager.MaxConcurrentLoads > 0 {
		opts.MaxConcurrentLoads = mf.Manager.MaxConcurrentLoads
	}
	if mf.Manager.LoadTimeout.Duration > 0 {
		opts.LoadTimeout = mf.Manager.LoadTimeout.Duration
	}
	return opts
}

// RegisterManifest registers every manifest panel, taking each behavior
// factory from factories by panel name. All problems are reported together.
func (m *Manager) RegisterManifest(mf *Manifest, factories map[string]func() Behavior) error {
	var errs []error
	for _, pc := range mf.Panels {
		newBehavior, ok := factories[pc.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s: no behavior factory", ErrInvalidDefinition, pc.Name))
			continue
		}
		err := m.Register(Definition{
			ID:        pc.ID,
			Name:      pc.Name,
			Layer:     pc.Layer,
			Address:   pc.Address,
			Permanent: pc.Permanent,
			New:       newBehavior,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
